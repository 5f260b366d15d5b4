package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quote_automation/application/interactor"
	"quote_automation/domain/entities"
	"quote_automation/infrastructure/browser/fakebrowser"
	"quote_automation/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) (*Runner, *fakebrowser.Page, *logtest.Hook, string) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	page := fakebrowser.New()
	dir := t.TempDir()
	store := storage.NewArtifactStore(dir)
	ui := interactor.NewElementInteractor(page, store, logger, interactor.Options{DefaultDelay: time.Millisecond})
	return NewRunner(ui, store, logger), page, hook, dir
}

func recorder(trace *[]string, name string, err error) Step {
	return Step{Name: name, Run: func(context.Context) error {
		*trace = append(*trace, name)
		return err
	}}
}

func TestRun_ExecutesStepsInOrder(t *testing.T) {
	r, page, hook, dir := newRunner(t)
	var trace []string

	report, err := r.Run(context.Background(), Scenario{
		Name:     "ordered",
		StartURL: "https://example.test/",
		Steps:    []Step{recorder(&trace, "a", nil), recorder(&trace, "b", nil), recorder(&trace, "c", nil)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, trace)
	assert.Equal(t, []string{"navigate https://example.test/"}, page.Events())
	assert.Equal(t, entities.StatusCompleted, report.Status)
	assert.Equal(t, "fake", report.Engine)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)

	for _, s := range report.Steps {
		assert.Equal(t, entities.StatusCompleted, s.Status)
	}

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
		assert.Equal(t, report.RunID, e.Data["run"])
	}
	assert.Contains(t, messages, "Starting ordered")
	assert.Contains(t, messages, "Step 2/3: b")
	assert.Contains(t, messages, "ordered completed successfully")

	saved, err := storage.NewArtifactStore(dir).LoadReport()
	require.NoError(t, err)
	assert.Equal(t, report.RunID, saved.RunID)
	assert.Len(t, saved.Steps, 3)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	r, page, hook, _ := newRunner(t)
	boom := &entities.AssertionError{Selector: "#x", Expected: "Car", Actual: "Van", Contains: true}
	var trace []string

	report, err := r.Run(context.Background(), Scenario{
		Name:  "failing",
		Steps: []Step{recorder(&trace, "a", nil), recorder(&trace, "b", boom), recorder(&trace, "c", nil)},
	})

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"a", "b"}, trace)
	assert.Equal(t, entities.StatusFailed, report.Status)
	assert.Equal(t, boom.Error(), report.Error)
	assert.Equal(t, []entities.StepStatus{entities.StatusCompleted, entities.StatusFailed, entities.StatusSkipped},
		[]entities.StepStatus{report.Steps[0].Status, report.Steps[1].Status, report.Steps[2].Status})
	assert.Equal(t, boom.Error(), report.Steps[1].Error)

	assert.Equal(t, 1, page.Screenshots())
	assert.Empty(t, page.Events(), "no start URL means no navigation")

	var failed bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && strings.HasPrefix(e.Message, "Test failed: ") {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestRun_NavigationFailureSkipsEverything(t *testing.T) {
	r, _, _, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var trace []string

	report, err := r.Run(ctx, Scenario{
		Name:     "offline",
		StartURL: "https://example.test/",
		Steps:    []Step{recorder(&trace, "a", nil), recorder(&trace, "b", nil)},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trace)
	for _, s := range report.Steps {
		assert.Equal(t, entities.StatusSkipped, s.Status)
	}
}

func TestRun_CancelledBetweenSteps(t *testing.T) {
	r, _, _, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	var trace []string

	report, err := r.Run(ctx, Scenario{
		Name: "cancelled",
		Steps: []Step{
			{Name: "a", Run: func(context.Context) error { trace = append(trace, "a"); cancel(); return nil }},
			recorder(&trace, "b", nil),
		},
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"a"}, trace)
	assert.Equal(t, entities.StatusCompleted, report.Steps[0].Status)
	assert.Equal(t, entities.StatusSkipped, report.Steps[1].Status)
}

type brokenStore struct{}

func (brokenStore) SaveScreenshot(string, []byte) (string, error) { return "", errors.New("disk full") }
func (brokenStore) SaveReport(*entities.RunReport) (string, error) {
	return "", errors.New("disk full")
}
func (brokenStore) LoadReport() (*entities.RunReport, error) { return nil, errors.New("disk full") }

func TestRun_ReportSaveFailureIsNotFatal(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	page := fakebrowser.New()
	ui := interactor.NewElementInteractor(page, brokenStore{}, logger, interactor.Options{})
	r := NewRunner(ui, brokenStore{}, logger)

	report, err := r.Run(context.Background(), Scenario{Name: "unsaved"})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, report.Status)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Contains(t, last.Message, "disk full")
}
