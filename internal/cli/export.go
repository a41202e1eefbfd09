package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nftmeta/internal/paths"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <asset>",
		Short: "Embed the registry's metadata into a glTF asset",
		Long: `Rebuild the registry's collections on the asset's objects and write the
asset with the metadata embedded. Metadata already in the asset is
replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			defer s.close()

			blob, err := registryBlob(s.reg)
			if err != nil {
				return sysError("read registry: %w", err)
			}
			if len(blob) == 0 {
				return userError("registry is empty; run import or apply first")
			}
			report, err := s.ed.ImportBlob(blob, s.asset.CreationStream())
			if err != nil {
				return sysError("rebuild: %w", err)
			}

			if out == "" {
				out = paths.Sibling(args[0], ".nft", "")
			}
			if err := s.save(out); err != nil {
				return err
			}
			sum := summarize(report, len(s.ed.Containers()))
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"output": out, "report": sum})
			}
			printReport(cmd.OutOrStdout(), sum)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default: <asset>.nft.<ext>)")
	return cmd
}
