package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/roster/internal/storage"
	"github.com/mesh-intelligence/roster/pkg/types"
)

type categoryInfo struct {
	Records int `json:"records"`
	NextID  int `json:"next_id"`
}

type storeInfo struct {
	Backend    string                  `json:"backend"`
	Location   string                  `json:"location"`
	StoreID    string                  `json:"store_id,omitempty"`
	ConfigDir  string                  `json:"config_dir"`
	Categories map[string]categoryInfo `json:"categories"`
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show backend, location and record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			info := storeInfo{
				Backend:    a.cfg.Backend,
				Location:   st.Storage().Location(),
				ConfigDir:  a.configDir,
				Categories: make(map[string]categoryInfo, len(types.Categories)),
			}
			if idb, ok := st.Storage().(storage.Identified); ok {
				if id, err := idb.StoreID(cmd.Context()); err == nil {
					info.StoreID = id
				}
			}
			for _, c := range types.Categories {
				info.Categories[c] = categoryInfo{Records: st.Len(c), NextID: st.NextID(c)}
			}

			w := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(w, info)
			}
			fmt.Fprintf(w, "Backend:   %s\n", info.Backend)
			fmt.Fprintf(w, "Location:  %s\n", info.Location)
			if info.StoreID != "" {
				fmt.Fprintf(w, "Store ID:  %s\n", info.StoreID)
			}
			fmt.Fprintf(w, "Config:    %s\n", info.ConfigDir)
			for _, c := range types.Categories {
				ci := info.Categories[c]
				fmt.Fprintf(w, "%-10s %d records, next id %d\n", c+":", ci.Records, ci.NextID)
			}
			return nil
		},
	}
}
