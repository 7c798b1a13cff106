package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var volume string
	var params paramFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stage the pipeline and run Nextflow against an existing volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := params.values()
			if err != nil {
				return err
			}
			launcher := newLauncher(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			rc, err := launcher.Run(cmd.Context(), volume, values)
			if rc != nil && rc.LogLocation != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Nextflow log: %s\n", rc.LogLocation)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&volume, "volume", "", "Provisioned storage volume name")
	cmd.MarkFlagRequired("volume")
	params.register(cmd)
	return cmd
}

func newPrintCommandCmd() *cobra.Command {
	var volume string
	var params paramFlags

	cmd := &cobra.Command{
		Use:   "print-command",
		Short: "Print the Nextflow command and environment without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := params.values()
			if err != nil {
				return err
			}
			inv, err := newLauncher(cmd.Context(), nil, nil).Plan(volume, values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			keys := make([]string, 0, len(inv.Env))
			for k := range inv.Env {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s=%s\n", k, inv.Env[k])
			}
			fmt.Fprintln(out, inv.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&volume, "volume", "", "Provisioned storage volume name")
	cmd.MarkFlagRequired("volume")
	params.register(cmd)
	return cmd
}
