package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// ErrEmptyCommand is returned when a RunSpec has no command.
var ErrEmptyCommand = errors.New("empty command")

// Runtime runs one child process to completion.
type Runtime interface {
	Run(ctx context.Context, spec RunSpec) (*RunResult, error)
}

// RunSpec describes the process to start.
type RunSpec struct {
	Command []string  // executable and arguments
	WorkDir string    // working directory
	Env     []string  // complete environment in KEY=VALUE form
	Stdout  io.Writer // optional; discarded when nil
	Stderr  io.Writer // optional; discarded when nil
}

// RunResult holds the outcome of a process that ran.
type RunResult struct {
	ExitCode int
	Duration time.Duration
}

// LocalRuntime executes commands as host processes.
type LocalRuntime struct{}

// Run starts the command and blocks until it exits.
// A non-zero exit is reported in RunResult, not as an error; errors mean
// the process could not be started or waited on.
func (LocalRuntime) Run(ctx context.Context, spec RunSpec) (*RunResult, error) {
	if len(spec.Command) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.WorkDir
	cmd.Env = spec.Env
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	start := time.Now()
	err := cmd.Run()
	result := &RunResult{Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run command: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}
