package model

import (
	"fmt"
	"time"
)

// Run records one provision-and-launch cycle of the workflow.
type Run struct {
	ID            string     `json:"id"`
	ExecutionName string     `json:"execution_name,omitempty"`
	Volume        string     `json:"volume,omitempty"`
	State         RunState   `json:"state"`
	Argv          []string   `json:"argv,omitempty"`
	ExitCode      *int       `json:"exit_code,omitempty"`
	Error         string     `json:"error,omitempty"`
	LogLocation   string     `json:"log_location,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// InvalidTransitionError is returned when a state transition is invalid.
type InvalidTransitionError struct {
	ID   string
	From RunState
	To   RunState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid run state transition: %s → %s (run %s)", e.From, e.To, e.ID)
}

// Transition moves the run to next, stamping CompletedAt on terminal states.
func (r *Run) Transition(next RunState, now time.Time) error {
	if !r.State.CanTransitionTo(next) {
		return &InvalidTransitionError{ID: r.ID, From: r.State, To: next}
	}
	r.State = next
	if next.IsTerminal() {
		r.CompletedAt = &now
	}
	return nil
}
