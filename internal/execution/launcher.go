// Package execution stages the pipeline, launches the Nextflow runtime and
// ships the runtime log once the run ends.
package execution

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/me/createtaxdb/internal/cmdline"
	"github.com/me/createtaxdb/internal/logging"
	"github.com/me/createtaxdb/internal/logupload"
	"github.com/me/createtaxdb/internal/stage"
	"github.com/me/createtaxdb/pkg/model"
)

// IdentityResolver looks up the human-readable name of the current execution.
type IdentityResolver interface {
	ExecutionName(ctx context.Context) (string, error)
}

// LogConfig controls where the runtime log is found and uploaded.
type LogConfig struct {
	Base       string        // remote base location, e.g. latch:///your_log_dir
	PipelineID string        // path segment naming the pipeline
	LocalFile  string        // log file name inside the staged directory
	RemoteName string        // object name at the destination
	Timeout    time.Duration // upper bound on the upload, independent of the run context
}

// DefaultLogConfig returns the platform log layout.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Base:       "latch:///your_log_dir",
		PipelineID: "nf_nf_core_createtaxdb",
		LocalFile:  ".nextflow.log",
		RemoteName: "nextflow.log",
		Timeout:    2 * time.Minute,
	}
}

// Config holds the launcher's filesystem layout and log settings.
type Config struct {
	SourceDir string // template tree copied into the working directory
	WorkDir   string // staged working directory
	Logs      LogConfig
}

// DefaultConfig returns the container layout used on the platform.
func DefaultConfig() Config {
	return Config{
		SourceDir: "/root",
		WorkDir:   "/nf-workdir",
		Logs:      DefaultLogConfig(),
	}
}

// RunContext accumulates what each step of a run learned.
type RunContext struct {
	Volume        string
	StagedDir     string
	Values        model.Values
	Invocation    *cmdline.Invocation
	ExitCode      int
	Duration      time.Duration
	ExecutionName string
	LogLocation   string // empty when no log was shipped
}

// Launcher runs the pipeline inside a staged working directory.
type Launcher struct {
	config   Config
	builder  *cmdline.Builder
	copier   *stage.Copier
	runtime  Runtime
	identity IdentityResolver
	uploader logupload.Uploader
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithRuntime replaces the process runtime.
func WithRuntime(rt Runtime) Option {
	return func(l *Launcher) { l.runtime = rt }
}

// WithIdentity sets the resolver used to name the uploaded log.
func WithIdentity(id IdentityResolver) Option {
	return func(l *Launcher) { l.identity = id }
}

// WithUploader sets the log uploader.
func WithUploader(u logupload.Uploader) Option {
	return func(l *Launcher) { l.uploader = u }
}

// WithOutput sets where the child's stdout and stderr are streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewLauncher creates a Launcher. Without WithIdentity or WithUploader
// the log upload step is skipped with a warning.
func NewLauncher(config Config, builder *cmdline.Builder, copier *stage.Copier, logger *slog.Logger, opts ...Option) *Launcher {
	if logger == nil {
		logger = logging.Discard()
	}
	l := &Launcher{
		config:  config,
		builder: builder,
		copier:  copier,
		runtime: LocalRuntime{},
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logger.With("component", "launcher"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Plan builds the invocation a run would use without touching the filesystem.
func (l *Launcher) Plan(volume string, values model.Values) (*cmdline.Invocation, error) {
	return l.builder.Build(l.config.WorkDir, volume, values)
}

// Run stages the working directory, executes the runtime against volume and
// blocks until it exits. The runtime log is uploaded on every exit path,
// including a panic, and never changes the returned outcome.
func (l *Launcher) Run(ctx context.Context, volume string, values model.Values) (*RunContext, error) {
	rc := &RunContext{
		Volume:    volume,
		StagedDir: l.config.WorkDir,
		Values:    values,
		ExitCode:  -1,
	}
	defer l.shipLog(ctx, rc)

	if err := l.copier.CopyTree(l.config.SourceDir, rc.StagedDir); err != nil {
		return rc, &model.StageError{Stage: model.StageStage, Err: err}
	}

	inv, err := l.builder.Build(rc.StagedDir, volume, values)
	if err != nil {
		return rc, &model.StageError{Stage: model.StageRun, Err: err}
	}
	rc.Invocation = inv

	l.logger.Info("launching nextflow runtime", "command", inv.String(), "volume", volume)

	result, err := l.runtime.Run(ctx, RunSpec{
		Command: inv.Argv,
		WorkDir: inv.Dir,
		Env:     inv.Environ(os.Environ()),
		Stdout:  l.stdout,
		Stderr:  l.stderr,
	})
	if err != nil {
		return rc, &model.StageError{
			Stage: model.StageRun,
			Err:   fmt.Errorf("%w: %w", model.ErrPipelineExecutionFailed, err),
		}
	}
	rc.ExitCode = result.ExitCode
	rc.Duration = result.Duration

	if result.ExitCode != 0 {
		l.logger.Error("nextflow runtime failed", "exit_code", result.ExitCode, "duration", result.Duration)
		return rc, &model.StageError{
			Stage:    model.StageRun,
			Err:      model.ErrPipelineExecutionFailed,
			ExitCode: result.ExitCode,
		}
	}
	l.logger.Info("nextflow runtime finished", "duration", result.Duration)
	return rc, nil
}

// shipLog uploads the runtime log if one was written. Failures are logged
// and swallowed.
func (l *Launcher) shipLog(ctx context.Context, rc *RunContext) {
	local := filepath.Join(rc.StagedDir, l.config.Logs.LocalFile)
	info, err := os.Stat(local)
	if err != nil || !info.Mode().IsRegular() {
		l.logger.Debug("no runtime log to upload", "path", local)
		return
	}

	// The run context may already be cancelled; the upload still has to happen.
	ctx = context.WithoutCancel(ctx)
	if l.config.Logs.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.Logs.Timeout)
		defer cancel()
	}

	if l.identity == nil || l.uploader == nil {
		l.logger.Warn("skipping nextflow log upload: no log destination configured")
		return
	}

	name, err := l.identity.ExecutionName(ctx)
	if err != nil || name == "" {
		l.logger.Warn("skipping nextflow log upload: execution name unavailable", "error", err)
		return
	}
	rc.ExecutionName = name

	remote := logupload.RemotePath(l.config.Logs.Base, l.config.Logs.PipelineID, name, l.config.Logs.RemoteName)
	l.logger.Info("uploading nextflow log", "remote", remote)
	if err := l.uploader.Upload(ctx, local, remote); err != nil {
		err = &model.StageError{Stage: model.StageLogUpload, Err: fmt.Errorf("%w: %w", model.ErrLogUploadFailed, err)}
		l.logger.Warn("nextflow log upload failed", "remote", remote, "error", err)
		return
	}
	rc.LogLocation = remote
}
