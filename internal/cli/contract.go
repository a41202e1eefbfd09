package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// contractKeys are the keys accepted by "contract key=value".
var contractKeys = []string{
	codec.KeyNFTType, codec.KeyChain, codec.KeyMintable,
	codec.KeyPrice, codec.KeyPremiumPrice, codec.KeyMaxSupply,
	codec.KeyMinterType, codec.KeyMinterName, codec.KeyMinterDesc,
	codec.KeyMinterImage, codec.KeyMinterVersion,
	codec.KeyContractABI, codec.KeyContractAddress,
}

func newContractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contract [key=value ...]",
		Short: "Show or edit the asset contract in the registry",
		Long: `Without arguments, print the stored contract (or the defaults when none
is stored). With key=value pairs, update those fields and store the result.

Keys: ` + strings.Join(contractKeys, ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer reg.Detach()

			exp := codec.NewExporter(nil, reg, codec.WithLogger(a.log))
			current, err := reg.Get(types.ContractKey)
			switch {
			case errors.Is(err, types.ErrNotFound):
				current = exp.EncodeContract(types.DefaultContract())
			case err != nil:
				return sysError("read contract: %w", err)
			}

			if len(args) > 0 {
				if err := overlay(current, args); err != nil {
					return err
				}
				res := codec.NewDecoder(codec.WithLogger(a.log)).Decode(types.Blob{types.ContractKey: current})
				if res.Contract == nil {
					return userError("contract does not decode")
				}
				if current, err = exp.ExportContract(*res.Contract); err != nil {
					return sysError("%w", err)
				}
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), current)
			}
			printContract(cmd.OutOrStdout(), current)
			return nil
		},
	}
}

// scalarKeys hold numbers or booleans; every other key is a string.
var scalarKeys = []string{
	codec.KeyMintable, codec.KeyPrice, codec.KeyPremiumPrice,
	codec.KeyMaxSupply, codec.KeyMinterVersion,
}

// overlay parses key=value pairs into blob. Scalar values are parsed as
// YAML so numbers and booleans keep their type. Enum values are checked
// here because decoding would silently fall back to the defaults.
func overlay(blob types.Blob, pairs []string) error {
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return userError("expected key=value, got %q", pair)
		}
		if !slices.Contains(contractKeys, key) {
			return userError("unknown contract key %q", key)
		}
		if !slices.Contains(scalarKeys, key) {
			if err := checkEnum(key, raw); err != nil {
				return err
			}
			blob[key] = raw
			continue
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return userError("%s: %w", key, err)
		}
		switch v.(type) {
		case int, float64, bool:
		default:
			return userError("%s expects a number or boolean, got %q", key, raw)
		}
		blob[key] = v
	}
	return nil
}

func checkEnum(key, v string) error {
	valid := true
	switch key {
	case codec.KeyNFTType:
		valid = types.NFTType(v).Valid()
	case codec.KeyChain:
		valid = types.Chain(v).Valid()
	case codec.KeyMinterType:
		valid = types.MinterType(v).Valid()
	}
	if !valid {
		return userError("invalid %s %q", key, v)
	}
	return nil
}

func printContract(w io.Writer, blob types.Blob) {
	for _, key := range contractKeys {
		if v, ok := blob[key]; ok {
			fmt.Fprintf(w, "%-16s %v\n", key+":", v)
		}
	}
}
