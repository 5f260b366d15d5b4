package entities

import "time"

// StepStatus represents the status of a flow step or a whole scenario run
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in_progress"
	StatusCompleted  StepStatus = "completed"
	StatusFailed     StepStatus = "failed"
	StatusSkipped    StepStatus = "skipped"
)

// StepResult records the outcome of one flow step
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// RunReport summarises one scenario execution
type RunReport struct {
	RunID      string       `json:"run_id"`
	Scenario   string       `json:"scenario"`
	StartURL   string       `json:"start_url"`
	Engine     string       `json:"engine"`
	Status     StepStatus   `json:"status"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
}

// Failed returns the first failed step, if any
func (r *RunReport) Failed() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return s, true
		}
	}
	return StepResult{}, false
}
