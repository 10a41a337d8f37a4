package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update <category> <id> --set Label=value ...",
		Short: "Change fields of a worker record",
		Long: `Update applies each --set Label=value to the record. Labels are the field
names shown by "roster show", e.g. Name, Age, "Hourly Rate". A blank value
keeps the current one. Rejected values are reported as warnings and the
other fields still apply.

Example:
  roster update hourly 1 --set Salary=1200 --set "Hours Worked=38"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseSets(sets)
			if err != nil {
				return err
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			report, err := st.Update(cmd.Context(), args[0], args[1], changes)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.flags.jsonMode {
				warnings := make([]string, len(report.Warnings))
				for i, warn := range report.Warnings {
					warnings[i] = warn.Error()
				}
				applied := report.Applied
				if applied == nil {
					applied = []string{}
				}
				return writeJSON(w, map[string]any{"applied": applied, "warnings": warnings})
			}
			for _, warn := range report.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warn)
			}
			if len(report.Applied) == 0 {
				fmt.Fprintln(w, "No fields changed.")
				return nil
			}
			fmt.Fprintf(w, "Updated %s/%s: %s\n", args[0], args[1], strings.Join(report.Applied, ", "))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment Label=value (repeatable)")
	return cmd
}

// parseSets turns Label=value pairs into a change map. The label is trimmed;
// the value is passed through as given.
func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, errors.New("nothing to update: pass at least one --set Label=value")
	}
	changes := make(map[string]string, len(sets))
	for _, s := range sets {
		label, value, ok := strings.Cut(s, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected Label=value)", s)
		}
		changes[label] = value
	}
	return changes, nil
}
