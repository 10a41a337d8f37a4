package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete the backing storage",
		Long:  "Remove the stored data entirely. The next command starts from an empty store with fresh identifiers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			removed, err := st.Purge(cmd.Context())
			if err != nil {
				return err
			}
			loc := st.Storage().Location()
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %s\n", loc)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to purge at %s\n", loc)
			}
			return nil
		},
	}
}
