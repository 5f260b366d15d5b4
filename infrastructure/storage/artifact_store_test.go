package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"quote_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveScreenshot_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "test-results")
	store := NewArtifactStore(dir)

	path, err := store.SaveScreenshot("click-1700000000000", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "screenshots", "click-1700000000000.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	// idempotent directory creation
	_, err = store.SaveScreenshot("click-1700000000001", []byte("png"))
	require.NoError(t, err)
}

func TestSaveScreenshot_RejectsEmptyLabel(t *testing.T) {
	_, err := NewArtifactStore(t.TempDir()).SaveScreenshot("", nil)
	assert.Error(t, err)
}

func TestSaveScreenshot_UnwritableDirectory(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewArtifactStore(blocker).SaveScreenshot("x", []byte("png"))
	assert.Error(t, err)
}

func TestReportRoundTrip(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	_, err := store.LoadReport()
	require.Error(t, err)

	started := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	report := &entities.RunReport{
		RunID:     "run-1",
		Scenario:  "quote",
		Status:    entities.StatusFailed,
		StartedAt: started,
		Steps: []entities.StepResult{
			{Name: "SelectCountry", Status: entities.StatusCompleted, Duration: time.Second},
			{Name: "SelectTravelStartDate", Status: entities.StatusFailed, Error: "timeout"},
		},
	}
	path, err := store.SaveReport(report)
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded, err := store.LoadReport()
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)
	assert.Equal(t, report.Steps, loaded.Steps)
	assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
}
