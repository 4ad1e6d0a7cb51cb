package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"datapack/internal/standard"
)

func newStandardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standards",
		Short: "List and show standard versions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available standard versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			versions := a.loader().ListAvailableVersions()
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]any{
					"default":  a.cfg.StandardVersion,
					"versions": versions,
				})
			}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				mark := ""
				if v == a.cfg.StandardVersion {
					mark = "*"
				}
				rows[i] = []string{v, mark}
			}
			PrintTable(cmd.OutOrStdout(), []string{"version", "default"}, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [version]",
		Short: "Print the rule document of a standard version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := a.cfg.StandardVersion
			if len(args) == 1 {
				version = args[0]
			}
			spec, err := a.loader().Load(version)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				doc, err := spec.Document()
				if err != nil {
					return err
				}
				return PrintJSON(cmd.OutOrStdout(), doc)
			}
			return printSpecYAML(cmd, spec)
		},
	})
	return cmd
}

func printSpecYAML(cmd *cobra.Command, spec *standard.Spec) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return err
	}
	return enc.Close()
}
