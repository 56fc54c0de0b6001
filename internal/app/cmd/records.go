package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resource-base/internal/cli"
	coreerrors "resource-base/internal/core/errors"
	"resource-base/internal/resource"
)

// 实例输出格式
const (
	formatText = "text"
	formatYAML = "yaml"
)

func (a *app) newCreateCommand() *cobra.Command {
	var assignments []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record and print its id",
		Long: `Create a record from field assignments. Empty values are not stored.

Example:
  resctl create --set title=Hello --set slug=hello`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "Field assignment field=value (repeatable)")
	cmd.RunE = a.withMutatingSession(func(cmd *cobra.Command, s *session, args []string) error {
		inst := s.base.New()
		if err := applyAssignments(inst, assignments); err != nil {
			return err
		}
		if err := s.base.Save(cmd.Context(), inst); err != nil {
			return err
		}
		s.out.Plain("%s", inst.ID())
		s.out.Success("created %s %s", s.spec.Name, inst.ID())
		return nil
	})
	return cmd
}

func (a *app) newUpdateCommand() *cobra.Command {
	var assignments []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an existing record",
		Long: `Update fields of an existing record. Fields that are not assigned keep
their stored values.

Example:
  resctl update 1 --set title=Updated`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "Field assignment field=value (repeatable)")
	cmd.RunE = a.withMutatingSession(func(cmd *cobra.Command, s *session, args []string) error {
		if len(assignments) == 0 {
			return coreerrors.New(coreerrors.CodeInvalidParam, "nothing to update, use --set field=value")
		}
		inst, err := s.base.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := applyAssignments(inst, assignments); err != nil {
			return err
		}
		if err := s.base.Save(cmd.Context(), inst); err != nil {
			return err
		}
		s.out.Success("updated %s %s", s.spec.Name, inst.ID())
		return nil
	})
	return cmd
}

func (a *app) newGetCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a record",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "Output format: text/yaml")
	cmd.RunE = a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
		inst, err := s.base.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printInstance(s, inst, format)
	})
	return cmd
}

func (a *app) newFindCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "find <value>",
		Short: "Find a record by its search field value",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "Output format: text/yaml")
	cmd.RunE = a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
		inst, err := s.base.LoadBySearchKeyValue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printInstance(s, inst, format)
	})
	return cmd
}

func (a *app) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record with its search key and member sets",
		Args:  cobra.ExactArgs(1),
		RunE: a.withMutatingSession(func(cmd *cobra.Command, s *session, args []string) error {
			removed, err := s.base.Destroy(cmd.Context(), nil, args[0])
			if err != nil {
				return err
			}
			if !removed {
				return coreerrors.Newf(coreerrors.CodeNotFound, "%s %s not found", s.spec.Name, args[0])
			}
			s.out.Success("deleted %s %s", s.spec.Name, args[0])
			return nil
		}),
	}
}

func (a *app) newListCommand() *cobra.Command {
	var load bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List record ids",
		Long: `List all registered ids in ascending order.
With --load every record is loaded and shown as a table; ids that are
registered but have no stored fields are skipped.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&load, "load", false, "Load records and show their fields")
	cmd.RunE = a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
		if !load {
			ids, err := s.base.ListAllIDs(cmd.Context())
			if err != nil {
				return err
			}
			resource.SortIDs(ids)
			for _, id := range ids {
				s.out.Plain("%s", id)
			}
			return nil
		}

		instances, err := s.base.LoadAll(cmd.Context())
		if err != nil {
			return err
		}
		fields := s.base.Config().Fields()
		table := cli.NewTable(append([]string{"ID"}, fields...)...)
		for _, inst := range instances {
			row := []string{inst.ID()}
			for _, f := range fields {
				row = append(row, inst.Value(f))
			}
			table.AddRow(row...)
		}
		s.out.Render(table)
		return nil
	})
	return cmd
}

func (a *app) newNextIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Allocate and print a new id",
		Long: `Allocate a new id from the counter. The id is consumed even if no
record is ever saved under it.`,
		Args: cobra.NoArgs,
		RunE: a.withMutatingSession(func(cmd *cobra.Command, s *session, args []string) error {
			id, err := s.base.GenerateID(cmd.Context())
			if err != nil {
				return err
			}
			s.out.Plain("%s", id)
			return nil
		}),
	}
}

// printInstance 输出单条记录
func printInstance(s *session, inst *resource.Instance, format string) error {
	switch format {
	case formatText:
		s.out.Header(fmt.Sprintf("%s %s", s.spec.Name, inst.ID()))
		for _, f := range s.base.Config().Fields() {
			v := inst.Value(f)
			if v == "" {
				v = "-"
			}
			s.out.KeyValue(f, v)
		}
		return nil
	case formatYAML:
		doc := struct {
			ID     string            `yaml:"id"`
			Fields map[string]string `yaml:"fields"`
		}{ID: inst.ID(), Fields: inst.Fields()}
		enc := yaml.NewEncoder(s.out.Writer())
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return coreerrors.Newf(coreerrors.CodeInvalidParam, "unsupported output format %q", format)
	}
}
