package cli

import (
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find workers by name or position",
		Long: `Search every category for workers whose name or position contains the
keyword, ignoring case. An empty keyword matches every worker.

Example:
  roster search clerk`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			_, err = writeEntries(cmd.OutOrStdout(), a.flags.jsonMode, st.Search(keyword))
			return err
		},
	}
}
