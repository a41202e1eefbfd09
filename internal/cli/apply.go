package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nftmeta/internal/manifest"
	"github.com/mesh-intelligence/nftmeta/internal/paths"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		out    string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "apply <asset> <manifest>",
		Short: "Apply an authoring manifest to a glTF asset",
		Long: `Load the asset, import any metadata it already carries, apply the
manifest's contract, collections and traits, and write the asset with the
updated metadata embedded. The registry is replaced by the asset's metadata.

Entries naming unknown objects, materials or animations are reported and
skipped; with --strict they fail the command and neither the registry nor
the output file is changed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[1])
			if err != nil {
				return userError("%w", err)
			}
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.stage(); err != nil {
				return err
			}
			if _, _, err := s.importEmbedded(); err != nil {
				return err
			}
			diags, err := m.Apply(s.ed)
			if err != nil {
				return sysError("apply: %w", err)
			}
			for _, d := range diags {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", d.String())
			}
			if strict && len(diags) > 0 {
				return userError("%d manifest entries could not be applied", len(diags))
			}

			if out == "" {
				out = paths.Sibling(args[0], ".nft", "")
			}
			if err := s.save(out); err != nil {
				return err
			}
			if err := s.commit(); err != nil {
				return err
			}

			collections := len(s.ed.Containers())
			if a.flags.jsonMode {
				msgs := make([]string, 0, len(diags))
				for _, d := range diags {
					msgs = append(msgs, d.String())
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"output":      out,
					"collections": collections,
					"diagnostics": msgs,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d collections, %d warnings)\n", out, collections, len(diags))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default: <asset>.nft.<ext>)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any manifest entry cannot be applied")
	return cmd
}
