package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize roster configuration and storage",
		Long: "Write a default config.yaml if none exists, then load the configured\n" +
			"storage and save it, creating an empty store when nothing is stored yet.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wrote, err := writeConfigIfMissing(a.configDir, a.cfg, a.flags.dataDir)
			if err != nil {
				return systemError(err)
			}
			if wrote {
				a.log.Info().Str("config_dir", a.configDir).Msg("wrote default config")
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Roster initialized at %s\n", st.Storage().Location())
			return nil
		},
	}
}
