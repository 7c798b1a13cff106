package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/me/createtaxdb/internal/cmdline"
	"github.com/me/createtaxdb/internal/execution"
	"github.com/me/createtaxdb/internal/logupload"
	"github.com/me/createtaxdb/internal/platform"
	"github.com/me/createtaxdb/internal/schema"
	"github.com/me/createtaxdb/internal/stage"
	"github.com/me/createtaxdb/internal/store"
	"github.com/me/createtaxdb/pkg/model"
)

func newPlatformClient() *platform.Client {
	return platform.NewClient(cfg.PlatformClient(), logger)
}

// newUploader routes log uploads by scheme. latch:// goes to the configured
// object store, or else through the platform data service. Backends that
// cannot be configured are left out, so uploads to them fail and are logged.
func newUploader(ctx context.Context, pc *platform.Client) logupload.Uploader {
	handlers := map[string]logupload.Uploader{
		logupload.SchemeFile:  logupload.FileUploader{},
		logupload.SchemeLatch: pc,
	}

	if cfg.Logs.ObjectStore.Enabled() {
		u, err := logupload.NewObjectStoreUploader(cfg.Logs.ObjectStore)
		if err != nil {
			logger.Warn("object store unavailable, latch:// uploads use the platform", "error", err)
		} else {
			handlers[logupload.SchemeLatch] = u
		}
	}

	if u, err := logupload.NewS3Uploader(ctx, cfg.Logs.S3); err != nil {
		logger.Warn("s3:// log uploads disabled", "error", err)
	} else {
		handlers[logupload.SchemeS3] = u
	}
	return logupload.NewRouter(handlers)
}

func newLauncher(ctx context.Context, stdout, stderr io.Writer) *execution.Launcher {
	pc := newPlatformClient()
	return execution.NewLauncher(
		cfg.Launcher(),
		cmdline.NewBuilder(schema.CreateTaxDB(), cfg.RunnerInvocation()),
		stage.NewCopier(cfg.Stage.Exclude, logger),
		logger,
		execution.WithIdentity(pc),
		execution.WithUploader(newUploader(ctx, pc)),
		execution.WithOutput(stdout, stderr),
	)
}

func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}
	return st, nil
}

// paramFlags are the --param and --params-file flags shared by every
// command that takes pipeline parameters.
type paramFlags struct {
	assignments []string
	file        string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.assignments, "param", "p", nil, "Pipeline parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&p.file, "params-file", "", "YAML or JSON file of pipeline parameters")
}

// values merges the params file with --param assignments, which win, and
// resolves them against the pipeline schema.
func (p *paramFlags) values() (model.Values, error) {
	raw := map[string]any{}
	if p.file != "" {
		fromFile, err := schema.LoadValuesFile(p.file)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			raw[k] = v
		}
	}
	assigned, err := schema.ParseAssignments(p.assignments)
	if err != nil {
		return nil, err
	}
	for k, v := range assigned {
		raw[k] = v
	}
	return schema.Resolve(schema.CreateTaxDB(), raw)
}
