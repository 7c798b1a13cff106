package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/createtaxdb/pkg/model"
)

func newRunsCmd() *cobra.Command {
	var limit int
	var state string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded workflow runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			opts := model.ListOptions{Limit: limit, State: model.RunState(state)}
			runs, total, err := st.ListRuns(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found.")
				return nil
			}

			fmt.Fprintf(out, "%-36s  %-12s  %-24s  %-4s  %s\n", "ID", "STATE", "VOLUME", "EXIT", "CREATED")
			for _, r := range runs {
				exit := "-"
				if r.ExitCode != nil {
					exit = fmt.Sprint(*r.ExitCode)
				}
				fmt.Fprintf(out, "%-36s  %-12s  %-24s  %-4s  %s\n",
					r.ID, r.State, r.Volume, exit, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			if len(runs) < total {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(runs), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&state, "state", "", "Only show runs in this state")
	return cmd
}
