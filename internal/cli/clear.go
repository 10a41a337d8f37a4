package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/roster/pkg/types"
)

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "clear [hourly|salaried|all]",
		Short:     "Remove every record in a category",
		Long:      "Empty one category, or every category (the default). Identifier counters are kept.",
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

			if err := st.Clear(cmd.Context(), scope); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", scope)
			return nil
		},
	}
}
