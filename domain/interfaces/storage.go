package interfaces

import "quote_automation/domain/entities"

// ArtifactStore persists run artifacts under the results directory
type ArtifactStore interface {
	// SaveScreenshot writes png bytes as <label>.png and returns the file path
	SaveScreenshot(label string, png []byte) (string, error)

	// SaveReport writes the run summary
	SaveReport(report *entities.RunReport) (string, error)

	// LoadReport reads the last run summary
	LoadReport() (*entities.RunReport, error)
}
