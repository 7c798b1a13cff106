package model

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify a returned error.
var (
	// ErrMissingCredential means the execution token is absent from the environment.
	ErrMissingCredential = errors.New("missing execution credential")

	// ErrProvisioningFailed means the platform rejected or could not serve the storage request.
	ErrProvisioningFailed = errors.New("storage provisioning failed")

	// ErrPipelineExecutionFailed means the pipeline runner did not exit successfully.
	ErrPipelineExecutionFailed = errors.New("pipeline execution failed")

	// ErrLogUploadFailed is logged, never returned to the orchestrator.
	ErrLogUploadFailed = errors.New("log upload failed")

	// ErrUnknownParameter means a value was supplied for a name not in the schema.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrMissingParameter means a required parameter has no value and no default.
	ErrMissingParameter = errors.New("missing required parameter")
)

// Workflow stages.
const (
	StageProvision = "provision"
	StageStage     = "stage"
	StageRun       = "run"
	StageLogUpload = "log_upload"
)

// StageError wraps an error with the stage that produced it.
type StageError struct {
	Stage    string
	Err      error
	ExitCode int
}

func (e *StageError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s: %v (exit code %d)", e.Stage, e.Err, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}
