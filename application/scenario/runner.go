package scenario

import (
	"context"
	"fmt"
	"time"

	"quote_automation/application/interactor"
	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Step is one named unit of interaction plus assertion
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scenario is an ordered list of steps run against a start URL
type Scenario struct {
	Name     string
	StartURL string
	Steps    []Step
}

// Runner executes scenarios strictly in order. The first failing step aborts
// the scenario; later steps are reported as skipped.
type Runner struct {
	ui     *interactor.ElementInteractor
	store  interfaces.ArtifactStore
	logger *logrus.Logger
	now    func() time.Time
	newID  func() string
}

// NewRunner - creates a runner driving the interactor's page
func NewRunner(ui *interactor.ElementInteractor, store interfaces.ArtifactStore, logger *logrus.Logger) *Runner {
	return &Runner{
		ui:     ui,
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run navigates to the start URL and executes every step. It returns the run
// report and the first failure unchanged.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*entities.RunReport, error) {
	report := &entities.RunReport{
		RunID:     r.newID(),
		Scenario:  sc.Name,
		StartURL:  sc.StartURL,
		Engine:    r.ui.Page().Engine(),
		Status:    entities.StatusInProgress,
		StartedAt: r.now(),
		Steps:     make([]entities.StepResult, len(sc.Steps)),
	}
	for i, s := range sc.Steps {
		report.Steps[i] = entities.StepResult{Name: s.Name, Status: entities.StatusPending}
	}

	log := r.logger.WithField("run", report.RunID)
	log.Infof("Starting %s", sc.Name)

	runErr := r.execute(ctx, sc, report, log)

	report.FinishedAt = r.now()
	if runErr != nil {
		report.Status = entities.StatusFailed
		report.Error = runErr.Error()
		log.Errorf("Test failed: %v", runErr)
	} else {
		report.Status = entities.StatusCompleted
		log.Infof("%s completed successfully", sc.Name)
	}

	if path, err := r.store.SaveReport(report); err != nil {
		log.Warnf("Run report not saved: %v", err)
	} else {
		log.Debugf("Run report saved: %s", path)
	}

	return report, runErr
}

func (r *Runner) execute(ctx context.Context, sc Scenario, report *entities.RunReport, log *logrus.Entry) error {
	if sc.StartURL != "" {
		log.Infof("Navigating to: %s", sc.StartURL)
		if err := r.ui.Page().Navigate(ctx, sc.StartURL); err != nil {
			skipFrom(report, 0)
			return err
		}
	}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			skipFrom(report, i)
			return fmt.Errorf("scenario cancelled before %s: %w", step.Name, err)
		}

		result := &report.Steps[i]
		result.Status = entities.StatusInProgress
		log.Infof("Step %d/%d: %s", i+1, len(sc.Steps), step.Name)

		started := r.now()
		err := step.Run(ctx)
		result.Duration = r.now().Sub(started)

		if err != nil {
			result.Status = entities.StatusFailed
			result.Error = err.Error()
			log.WithField("step", step.Name).Errorf("Step failed: %v", err)
			r.ui.TakeScreenshot(ctx, entities.ScreenshotLabel(entities.ActionError, step.Name, r.now()))
			skipFrom(report, i+1)
			return err
		}
		result.Status = entities.StatusCompleted
	}
	return nil
}

func skipFrom(report *entities.RunReport, i int) {
	for ; i < len(report.Steps); i++ {
		report.Steps[i].Status = entities.StatusSkipped
	}
}
