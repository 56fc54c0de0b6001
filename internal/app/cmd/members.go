package cmd

import (
	"context"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	coreerrors "resource-base/internal/core/errors"
	"resource-base/internal/resource"
)

func (a *app) newMembersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage member sets attached to a record",
		Long: `Manage member sets attached to a record (for example tags).
Member sets are declared per resource and removed together with the record.

Commands:
  add       Add members to a set
  remove    Remove members from a set
  list      List members of a set
  check     Check whether a value is a member`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id> <set> <member>...",
			Short: "Add members to a set",
			Args:  cobra.MinimumNArgs(3),
			RunE: a.withMutatingSession(func(cmd *cobra.Command, s *session, args []string) error {
				inst, err := existingInstance(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				if err := s.base.AddMembers(cmd.Context(), inst, args[1], args[2:]...); err != nil {
					return err
				}
				s.out.Success("added %d member(s) to %s of %s %s", len(args)-2, args[1], s.spec.Name, args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <id> <set> <member>...",
			Short: "Remove members from a set",
			Args:  cobra.MinimumNArgs(3),
			RunE: a.withMutatingSession(func(cmd *cobra.Command, s *session, args []string) error {
				inst, err := existingInstance(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				if err := s.base.RemoveMembers(cmd.Context(), inst, args[1], args[2:]...); err != nil {
					return err
				}
				s.out.Success("removed %d member(s) from %s of %s %s", len(args)-2, args[1], s.spec.Name, args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list <id> <set>",
			Short: "List members of a set",
			Args:  cobra.ExactArgs(2),
			RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
				inst, err := existingInstance(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				members, err := s.base.Members(cmd.Context(), inst, args[1])
				if err != nil {
					return err
				}
				sort.Strings(members)
				for _, m := range members {
					s.out.Plain("%s", m)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "check <id> <set> <member>",
			Short: "Check whether a value is a member",
			Args:  cobra.ExactArgs(3),
			RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
				inst, err := existingInstance(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				ok, err := s.base.IsMember(cmd.Context(), inst, args[1], args[2])
				if err != nil {
					return err
				}
				s.out.Plain("%s", strconv.FormatBool(ok))
				return nil
			}),
		},
	)
	return cmd
}

// existingInstance 返回绑定到已存在 ID 的实例，不加载字段
func existingInstance(ctx context.Context, s *session, id string) (*resource.Instance, error) {
	ok, err := s.base.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coreerrors.Newf(coreerrors.CodeNotFound, "%s %s not found", s.spec.Name, id)
	}
	inst := s.base.New()
	inst.SetID(id)
	return inst, nil
}
