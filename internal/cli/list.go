package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/roster/pkg/types"
)

var scopeArgs = append(append([]string{}, types.Categories...), types.ScopeAll)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list [hourly|salaried|all]",
		Short:     "List worker records",
		Long:      "List the records of one category, or of every category (the default), in insertion order.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: scopeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := types.ScopeAll
			if len(args) == 1 {
				scope = args[0]
			}
			if _, err := types.ScopeCategories(scope); err != nil {
				return fmt.Errorf("%w %q (valid: %s)", err, scope, strings.Join(scopeArgs, ", "))
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			entries, err := st.Read(scope)
			if err != nil {
				return err
			}
			_, err = writeEntries(cmd.OutOrStdout(), a.flags.jsonMode, entries)
			return err
		},
	}
}
