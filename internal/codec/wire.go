package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mitchellh/mapstructure"
)

var errMalformed = errors.New("malformed")

// named is one entry of a blob section.
type named struct {
	name  string
	value any
}

// sectionEntries flattens a section. Map sections yield their entries
// sorted by name; list sections yield the keys of each item in list order.
func sectionEntries(v any) []named {
	var out []named
	switch x := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(x) {
			out = append(out, named{k, x[k]})
		}
	case []any:
		for _, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range sortedKeys(m) {
				out = append(out, named{k, m[k]})
			}
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// decodeInto fills out from input. Fields absent from input keep the
// values already in out.
func decodeInto(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalize re-encodes v through JSON so every number is a float64 and
// every list is a []any, whatever produced the blob.
func normalize(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: not an object", errMalformed)
	}
	return out, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func fractional(vs ...float64) bool {
	for _, v := range vs {
		if v != math.Trunc(v) {
			return true
		}
	}
	return false
}

type contractWire struct {
	NFTType         string  `mapstructure:"nftType"`
	Chain           string  `mapstructure:"nftChain"`
	Mintable        bool    `mapstructure:"mintable"`
	Price           float64 `mapstructure:"nftPrice"`
	PremiumPrice    float64 `mapstructure:"premNftPrice"`
	MaxSupply       int     `mapstructure:"maxSupply"`
	MinterType      string  `mapstructure:"minterType"`
	MinterName      string  `mapstructure:"minterName"`
	MinterDesc      string  `mapstructure:"minterDesc"`
	MinterImage     string  `mapstructure:"minterImage"`
	MinterVersion   int     `mapstructure:"minterVersion"`
	ContractABI     string  `mapstructure:"contractABI"`
	ContractAddress string  `mapstructure:"contractAddress"`
}

type propertyWire struct {
	Default   float64 `mapstructure:"default"`
	Min       float64 `mapstructure:"min"`
	Max       float64 `mapstructure:"max"`
	Amount    float64 `mapstructure:"amount"`
	Kind      string  `mapstructure:"prop_value_type"`
	Widget    string  `mapstructure:"prop_slider_type"`
	Action    string  `mapstructure:"prop_action_type"`
	Immutable bool    `mapstructure:"immutable"`
}

type meshWire struct {
	Name    string `mapstructure:"name"`
	Visible bool   `mapstructure:"visible"`
	Widget  string `mapstructure:"prop_toggle_type"`
}

type morphSetWire struct {
	ModelRef string `mapstructure:"model_ref"`
	Widget   string `mapstructure:"prop_multi_widget_type"`
}

type morphWire struct {
	Name    string  `mapstructure:"name"`
	Default float64 `mapstructure:"default"`
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
}

type materialWire struct {
	Name   string `mapstructure:"name"`
	Kind   string `mapstructure:"type"`
	Widget string `mapstructure:"prop_multi_widget_type"`
}

type materialSetWire struct {
	MeshSetName string   `mapstructure:"mesh_set_name"`
	MeshSet     []string `mapstructure:"mesh_set"`
}

type slotWire struct {
	Name       string `mapstructure:"name"`
	MatRef     string `mapstructure:"mat_ref"`
	MaterialID int    `mapstructure:"material_id"`
}

type menuWire struct {
	Name      string `mapstructure:"name"`
	Alignment string `mapstructure:"alignment"`
	Primary   string `mapstructure:"primary_color"`
	Secondary string `mapstructure:"secondary_color"`
	Text      string `mapstructure:"text_color"`
}
