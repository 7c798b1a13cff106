package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProvisionCmd() *cobra.Command {
	var gib int

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision shared storage and print the volume name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("storage-gib") {
				gib = cfg.Provision.StorageGiB
			}
			volume, err := newPlatformClient().ProvisionStorage(cmd.Context(), gib)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), volume)
			return nil
		},
	}
	cmd.Flags().IntVar(&gib, "storage-gib", 100, "Requested storage size in GiB (default from provision.storage_gib)")
	return cmd
}
