package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [collection]",
		Short: "Display the metadata held in the registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer reg.Detach()

			blob, err := registryBlob(reg)
			if err != nil {
				return sysError("read registry: %w", err)
			}
			res := codec.NewDecoder(codec.WithLogger(a.log)).Decode(blob)

			containers := res.Containers
			if len(args) == 1 {
				containers = nil
				for _, c := range res.Containers {
					if c.Name == args[0] {
						containers = append(containers, c)
					}
				}
				if len(containers) == 0 {
					return userError("no metadata for collection %q", args[0])
				}
			}

			if a.flags.jsonMode {
				out := types.Blob{}
				if len(args) == 0 && res.Contract != nil {
					out[types.ContractKey] = blob[types.ContractKey]
				}
				for _, c := range containers {
					out[c.ID] = blob[c.ID]
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			if len(args) == 0 {
				if res.Contract != nil {
					printContractLine(w, *res.Contract)
				} else if len(containers) == 0 {
					fmt.Fprintln(w, "registry is empty")
				}
			}
			for _, c := range containers {
				printContainer(w, c)
			}
			return nil
		},
	}
}

func printContractLine(w io.Writer, k types.Contract) {
	supply := fmt.Sprint(k.MaxSupply)
	if k.MaxSupply == types.InfiniteSupply {
		supply = "unlimited"
	}
	fmt.Fprintf(w, "contract: %s on %s, %s minter, price %g, supply %s\n", k.NFTType, k.Chain, k.MinterType, k.Price, supply)
}

func printContainer(w io.Writer, c *types.Container) {
	fmt.Fprintf(w, "%s (%s, %s)\n", c.Name, c.ID, c.Kind)
	if c.Menu != nil {
		fmt.Fprintf(w, "  menu %q %s %s\n", c.Menu.Name, c.Menu.Alignment, types.HexFromLinear(c.Menu.Primary))
	}
	for _, r := range c.Records {
		fmt.Fprintf(w, "  %-9s %s%s\n", r.Type(), r.Name, detail(r.Payload))
	}
}

// detail is the short payload summary printed after a record name.
func detail(p types.Payload) string {
	switch p := p.(type) {
	case *types.PropertyTrait:
		return fmt.Sprintf(" = %g [%g, %g]", p.Default, p.Min, p.Max)
	case *types.MeshTrait:
		if !p.Visible {
			return " (hidden)"
		}
	case *types.MeshSetTrait:
		return fmt.Sprintf(" %v", p.ObjectNames())
	case *types.MorphSetTrait:
		return fmt.Sprintf(" (%d morphs)", len(p.Morphs))
	case *types.AnimTrait:
		return " " + string(p.Loop)
	case *types.MaterialTrait:
		return " " + string(p.Kind)
	case *types.MaterialSetTrait:
		return fmt.Sprintf(" (%d slots)", len(p.Slots))
	}
	return ""
}
