package model

// RunState represents the lifecycle state of a workflow run.
type RunState string

const (
	RunStatePending      RunState = "PENDING"
	RunStateProvisioning RunState = "PROVISIONING"
	RunStateRunning      RunState = "RUNNING"
	RunStateSuccess      RunState = "SUCCESS"
	RunStateFailed       RunState = "FAILED"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the run is in a final state.
func (s RunState) IsTerminal() bool {
	return s == RunStateSuccess || s == RunStateFailed
}

// ValidRunTransitions defines the allowed state transitions for runs.
// A run may fail from any non-terminal state.
var ValidRunTransitions = map[RunState][]RunState{
	RunStatePending:      {RunStateProvisioning, RunStateFailed},
	RunStateProvisioning: {RunStateRunning, RunStateFailed},
	RunStateRunning:      {RunStateSuccess, RunStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range ValidRunTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
