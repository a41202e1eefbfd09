package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nftmeta/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and registry storage",
		Long:  "Create the configuration directory with a default config.yaml, then attach and detach the configured registry backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return sysError("resolve config dir: %w", err)
			}
			if err := ensureConfigDir(configDir); err != nil {
				return sysError("create config directory: %w", err)
			}
			if err := ensureDefaultConfigFile(configDir); err != nil {
				return sysError("write config: %w", err)
			}

			reg, cfg, err := a.openRegistry()
			if err != nil {
				return err
			}
			if err := reg.Detach(); err != nil {
				return sysError("finalize storage: %w", err)
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"config":  configDir,
					"data":    cfg.DataDir,
					"backend": cfg.Backend,
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "nftmeta initialized successfully")
			fmt.Fprintln(w, "  config: ", configDir)
			fmt.Fprintln(w, "  data:   ", cfg.DataDir)
			fmt.Fprintln(w, "  backend:", cfg.Backend)
			return nil
		},
	}
}
