package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"
)

const (
	screenshotsDir = "screenshots"
	reportFile     = "run-report.json"
)

type artifactStore struct {
	screenshotPath string
	reportPath     string
}

// NewArtifactStore - creates a file store rooted at resultsDir (e.g. "test-results").
// Directories are created lazily on first write.
func NewArtifactStore(resultsDir string) interfaces.ArtifactStore {
	return &artifactStore{
		screenshotPath: filepath.Join(resultsDir, screenshotsDir),
		reportPath:     filepath.Join(resultsDir, reportFile),
	}
}

// SaveScreenshot - writes <dir>/screenshots/<label>.png
func (s *artifactStore) SaveScreenshot(label string, png []byte) (string, error) {
	if label == "" {
		return "", fmt.Errorf("screenshot label is empty")
	}
	if err := os.MkdirAll(s.screenshotPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(s.screenshotPath, filepath.Base(label)+".png")
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

// SaveReport - saves the run summary as indented json
func (s *artifactStore) SaveReport(report *entities.RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(s.reportPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := os.WriteFile(s.reportPath, data, 0644); err != nil {
		return "", err
	}
	return s.reportPath, nil
}

// LoadReport - loads the last run summary
func (s *artifactStore) LoadReport() (*entities.RunReport, error) {
	data, err := os.ReadFile(s.reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no run report at %s: %w", s.reportPath, err)
		}
		return nil, err
	}

	var report entities.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	return &report, nil
}
