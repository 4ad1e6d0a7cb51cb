package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "inspect <file.parquet>",
		Short: "Show the package document embedded in a Parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.openPacker(ctx)
			if err != nil {
				return err
			}
			defer p.Close() //nolint:errcheck

			data, err := p.ReadMetadata(ctx, args[0])
			if err != nil {
				return err
			}
			if raw {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			var doc map[string]any
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("decode embedded metadata: %w", err)
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), doc)
			}

			columns, err := p.DescribeFile(ctx, args[0])
			if err != nil {
				return err
			}
			summary := map[string]any{
				"name":    doc["name"],
				"title":   doc["title"],
				"version": doc["version"],
				"profile": doc["profile"],
			}
			if resources, ok := doc["resources"].([]any); ok {
				summary["resources"] = len(resources)
			}
			PrintDetail(cmd.OutOrStdout(), summary)
			fmt.Fprintln(cmd.OutOrStdout())

			rows := make([][]string, len(columns))
			for i, c := range columns {
				rows[i] = []string{c.Name, c.Type}
			}
			PrintTable(cmd.OutOrStdout(), []string{"column", "type"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the embedded document exactly as stored")
	return cmd
}
