package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/createtaxdb/internal/store"
	"github.com/me/createtaxdb/internal/workflow"
)

func newWorkflowCmd() *cobra.Command {
	var params paramFlags
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Provision storage, then run the pipeline on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, err := params.values()
			if err != nil {
				return err
			}

			var history store.Store
			if !noHistory {
				st, err := openStore(ctx)
				if err != nil {
					logger.Warn("run history disabled", "error", err)
				} else {
					defer st.Close()
					history = st
				}
			}

			wf := workflow.New(
				newPlatformClient(),
				newLauncher(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr()),
				history,
				cfg.Provision.StorageGiB,
				logger,
			)
			run, err := wf.Execute(ctx, values)
			if run != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Run %s: %s\n", run.ID, run.State)
				if run.LogLocation != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Nextflow log: %s\n", run.LogLocation)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run in the history database")
	params.register(cmd)
	return cmd
}
