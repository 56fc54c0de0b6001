package cmd

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resource-base/internal/cli"
	"resource-base/internal/version"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect the resolved configuration.

Commands:
  show        Print the merged configuration (secrets masked)
  resources   List declared resources and their keys`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the merged configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(cfg)
			},
		},
		&cobra.Command{
			Use:   "resources",
			Short: "List declared resources and their keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				table := cli.NewTable("NAME", "NEXT ID KEY", "SET KEY", "SEARCH", "FIELDS", "MEMBER SETS")
				for _, spec := range cfg.Resources {
					rc := spec.ToResourceConfig()
					sets := make([]string, 0, len(rc.MemberSets))
					for set := range rc.MemberSets {
						sets = append(sets, set)
					}
					sort.Strings(sets)
					table.AddRow(rc.Name, rc.NextIDKey, rc.SetKey, rc.SearchField,
						strings.Join(rc.Fields(), ","), strings.Join(sets, ","))
				}
				a.output(cmd).Render(table)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.output(cmd).Plain("%s", version.String("resctl"))
		},
	}
}
