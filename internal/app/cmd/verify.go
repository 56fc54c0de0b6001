package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"resource-base/internal/cli"
)

func (a *app) newVerifyCommand() *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check consistency between the id set, field keys and search keys",
		Long: `Check consistency between the id set, field keys and search keys.

Reported problems:
  missing_fields      id is registered but every field is empty
  orphan_search_key   search key points to an unregistered id
  stale_search_key    search key value no longer matches the record

Search keys are only checked when the store supports key scanning.
With --repair each problem is re-checked and fixed.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "Repair the inconsistencies found")
	cmd.RunE = a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
		result, err := s.base.Verify(cmd.Context())
		if err != nil {
			return err
		}

		s.out.Header("Verify " + s.spec.Name)
		s.out.KeyValue("ids", strconv.Itoa(result.CheckedIDs))
		if result.SearchKeysScanned {
			s.out.KeyValue("search keys", strconv.Itoa(result.CheckedSearchKeys))
		} else {
			s.out.KeyValue("search keys", "not scanned")
		}

		if result.Consistent() {
			s.out.Success("no inconsistencies found")
			return nil
		}

		table := cli.NewTable("TYPE", "ID", "KEY", "DESCRIPTION")
		for _, inc := range result.Inconsistencies {
			table.AddRow(string(inc.Type), inc.ID, inc.Key, inc.Description)
		}
		s.out.Render(table)

		if !repair {
			s.out.Warning("%d inconsistencies found, run with --repair to fix", len(result.Inconsistencies))
			return nil
		}

		s.warnEphemeral()
		repaired, err := s.base.Repair(cmd.Context(), result.Inconsistencies)
		if err != nil {
			return err
		}
		for _, e := range repaired.Errors {
			s.out.Error("%s", e)
		}
		s.out.Success("repaired %d of %d", repaired.RepairsSucceeded, repaired.RepairsAttempted)
		return nil
	})
	return cmd
}
