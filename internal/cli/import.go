package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <asset>",
		Short: "Load an asset's embedded metadata into the registry",
		Long: `Replace the registry contents with the metadata embedded in the asset.
Member objects are matched by name, then by stored identifier; the report
lists objects that could not be matched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			defer s.close()

			if err := clearRegistry(s.reg); err != nil {
				return sysError("clear registry: %w", err)
			}
			report, ok, err := s.importEmbedded()
			if err != nil {
				return err
			}
			if !ok {
				a.log.Info().Str("asset", args[0]).Msg("asset carries no metadata")
			}
			sum := summarize(report, len(s.ed.Containers()))
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s carries no metadata\n", args[0])
				return nil
			}
			printReport(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}
