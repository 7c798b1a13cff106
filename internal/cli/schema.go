package cli

import (
	"github.com/spf13/cobra"

	"github.com/me/createtaxdb/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the pipeline parameter manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := schema.NewDocument(schema.CreateTaxDB(), schema.DefaultTasks)
			out, err := doc.Encode(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, json)")
	return cmd
}
