// Package workflow composes storage provisioning and the pipeline launch
// into one recorded run.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/me/createtaxdb/internal/execution"
	"github.com/me/createtaxdb/internal/logging"
	"github.com/me/createtaxdb/internal/store"
	"github.com/me/createtaxdb/pkg/model"
)

// Provisioner obtains a shared volume for the run.
type Provisioner interface {
	ProvisionStorage(ctx context.Context, gib int) (string, error)
}

// Launcher runs the pipeline against a provisioned volume.
type Launcher interface {
	Run(ctx context.Context, volume string, values model.Values) (*execution.RunContext, error)
}

// Workflow runs provisioning followed by the pipeline launch.
type Workflow struct {
	provisioner Provisioner
	launcher    Launcher
	store       store.Store
	storageGiB  int
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a Workflow. st may be nil, in which case runs are not recorded.
func New(p Provisioner, l Launcher, st store.Store, storageGiB int, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Workflow{
		provisioner: p,
		launcher:    l,
		store:       st,
		storageGiB:  storageGiB,
		logger:      logger.With("component", "workflow"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute provisions storage and then launches the pipeline with the
// resulting volume. A provisioning failure aborts before the launch.
// The returned Run reflects the final state even when err is non-nil.
func (w *Workflow) Execute(ctx context.Context, values model.Values) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		State:     model.RunStatePending,
		CreatedAt: w.now(),
	}
	logger := logging.ForRun(w.logger, run.ID)

	if w.store != nil {
		if err := w.store.CreateRun(ctx, run); err != nil {
			logger.Warn("record run", "error", err)
		}
	}

	w.transition(ctx, logger, run, model.RunStateProvisioning)
	volume, err := w.provisioner.ProvisionStorage(ctx, w.storageGiB)
	if err != nil {
		logger.Error("provisioning failed", "error", err)
		return run, w.fail(ctx, logger, run, err)
	}
	run.Volume = volume
	logger.Info("storage provisioned", "volume", volume, "storage_gib", w.storageGiB)

	w.transition(ctx, logger, run, model.RunStateRunning)
	rc, err := w.launcher.Run(ctx, volume, values)
	if rc != nil {
		run.ExecutionName = rc.ExecutionName
		run.LogLocation = rc.LogLocation
		if rc.Invocation != nil {
			run.Argv = rc.Invocation.Argv
			exitCode := rc.ExitCode
			run.ExitCode = &exitCode
		}
	}
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return run, w.fail(ctx, logger, run, err)
	}

	w.transition(ctx, logger, run, model.RunStateSuccess)
	logger.Info("run succeeded")
	return run, nil
}

func (w *Workflow) fail(ctx context.Context, logger *slog.Logger, run *model.Run, err error) error {
	run.Error = err.Error()
	w.transition(ctx, logger, run, model.RunStateFailed)
	return err
}

// transition moves run to next and persists it. Store errors are logged;
// they never change the run's outcome.
func (w *Workflow) transition(ctx context.Context, logger *slog.Logger, run *model.Run, next model.RunState) {
	if err := run.Transition(next, w.now()); err != nil {
		logger.Warn("state transition", "error", err)
		return
	}
	logger.Debug("run state", "state", next)
	if w.store == nil {
		return
	}
	if err := w.store.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("record run", "state", next, "error", err)
	}
}
