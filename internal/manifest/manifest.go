// Package manifest applies a YAML authoring file to an Editor. A manifest
// names collections, their member objects, menus and traits, and the asset
// contract.
//
//	contract:
//	  minter_name: Studio
//	collections:
//	  - name: Hats
//	    kind: single
//	    objects: [Hat, Cap]
//	    traits:
//	      - property: {name: health, max: 100, widget: slider}
//	      - mesh_set: {name: Headwear, objects: [Hat, Cap]}
//	      - anim: {name: Walk, loop: LoopRepeat}
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Manifest is the root of an authoring file.
type Manifest struct {
	Contract    *ContractSpec    `yaml:"contract"`
	Collections []CollectionSpec `yaml:"collections"`
}

// ContractSpec mirrors types.Contract. Absent keys keep the defaults.
type ContractSpec struct {
	NFTType         string  `yaml:"nft_type"`
	Chain           string  `yaml:"chain"`
	Mintable        bool    `yaml:"mintable"`
	Price           float64 `yaml:"price"`
	PremiumPrice    float64 `yaml:"premium_price"`
	MaxSupply       int     `yaml:"max_supply"`
	MinterType      string  `yaml:"minter_type"`
	MinterName      string  `yaml:"minter_name"`
	MinterDesc      string  `yaml:"minter_desc"`
	MinterImage     string  `yaml:"minter_image"`
	MinterVersion   int     `yaml:"minter_version"`
	ContractABI     string  `yaml:"contract_abi"`
	ContractAddress string  `yaml:"contract_address"`
}

// UnmarshalYAML fills absent keys from types.DefaultContract.
func (c *ContractSpec) UnmarshalYAML(n *yaml.Node) error {
	type plain ContractSpec
	def := types.DefaultContract()
	p := plain{
		NFTType:      string(def.NFTType),
		Chain:        string(def.Chain),
		Mintable:     def.Mintable,
		Price:        def.Price,
		PremiumPrice: def.PremiumPrice,
		MaxSupply:    def.MaxSupply,
		MinterType:   string(def.MinterType),
	}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*c = ContractSpec(p)
	return nil
}

// Contract converts c, rejecting unknown enum values.
func (c *ContractSpec) Contract() (types.Contract, error) {
	k := types.Contract{
		NFTType:         types.NFTType(c.NFTType),
		Chain:           types.Chain(c.Chain),
		Mintable:        c.Mintable,
		Price:           types.RoundPrice(c.Price),
		PremiumPrice:    types.RoundPrice(c.PremiumPrice),
		MaxSupply:       c.MaxSupply,
		MinterType:      types.MinterType(c.MinterType),
		MinterName:      c.MinterName,
		MinterDesc:      c.MinterDesc,
		MinterImage:     c.MinterImage,
		MinterVersion:   c.MinterVersion,
		Versioned:       c.MinterVersion > 0,
		ContractABI:     c.ContractABI,
		ContractAddress: c.ContractAddress,
	}
	switch {
	case !k.NFTType.Valid():
		return k, fmt.Errorf("unknown nft_type %q", c.NFTType)
	case !k.Chain.Valid():
		return k, fmt.Errorf("unknown chain %q", c.Chain)
	case !k.MinterType.Valid():
		return k, fmt.Errorf("unknown minter_type %q", c.MinterType)
	}
	return k, nil
}

// CollectionSpec describes one collection and its traits.
type CollectionSpec struct {
	Name    string      `yaml:"name"`
	Kind    string      `yaml:"kind"`
	Objects []string    `yaml:"objects"`
	Menu    *MenuSpec   `yaml:"menu"`
	Traits  []TraitSpec `yaml:"traits"`
}

// MenuSpec describes a container menu. Colors are #rrggbb; empty colors
// keep the default palette.
type MenuSpec struct {
	Name      string `yaml:"name"`
	Alignment string `yaml:"alignment"`
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Text      string `yaml:"text"`
}

// TraitSpec holds exactly one trait variant.
type TraitSpec struct {
	Property    *PropertySpec    `yaml:"property"`
	Mesh        *MeshSpec        `yaml:"mesh"`
	MeshSet     *MeshSetSpec     `yaml:"mesh_set"`
	MorphSet    *MorphSetSpec    `yaml:"morph_set"`
	Anim        *AnimSpec        `yaml:"anim"`
	Material    *MaterialSpec    `yaml:"material"`
	MaterialSet *MaterialSetSpec `yaml:"material_set"`
}

// variants returns how many variant keys are set.
func (t TraitSpec) variants() int {
	n := 0
	for _, set := range []bool{
		t.Property != nil, t.Mesh != nil, t.MeshSet != nil, t.MorphSet != nil,
		t.Anim != nil, t.Material != nil, t.MaterialSet != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// PropertySpec describes a numeric property. Absent keys keep the
// property defaults.
type PropertySpec struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	Default   float64 `yaml:"default"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Amount    float64 `yaml:"amount"`
	Widget    string  `yaml:"widget"`
	Action    string  `yaml:"action"`
	Immutable bool    `yaml:"immutable"`
}

// UnmarshalYAML fills absent keys from types.DefaultProperty.
func (p *PropertySpec) UnmarshalYAML(n *yaml.Node) error {
	type plain PropertySpec
	def := types.DefaultProperty()
	v := plain{
		Type:      string(def.Kind),
		Default:   def.Default,
		Min:       def.Min,
		Max:       def.Max,
		Amount:    def.Amount,
		Widget:    string(def.Widget),
		Action:    string(def.Action),
		Immutable: def.Immutable,
	}
	if err := n.Decode(&v); err != nil {
		return err
	}
	*p = PropertySpec(v)
	return nil
}

// Trait converts p into a property payload.
func (p *PropertySpec) Trait() *types.PropertyTrait {
	return &types.PropertyTrait{
		Kind:      types.ValueKind(p.Type),
		Default:   p.Default,
		Min:       p.Min,
		Max:       p.Max,
		Amount:    p.Amount,
		Widget:    types.Widget(p.Widget),
		Action:    types.ActionKind(p.Action),
		Immutable: p.Immutable,
	}
}

// MeshSpec binds one object's visibility.
type MeshSpec struct {
	Object string `yaml:"object"`
}

// MeshSetSpec groups objects under a selector.
type MeshSetSpec struct {
	Name    string   `yaml:"name"`
	Objects []string `yaml:"objects"`
}

// MorphSetSpec mirrors an object's shape keys. Listed morphs override the
// host values or are added when missing.
type MorphSetSpec struct {
	Object string      `yaml:"object"`
	Morphs []MorphSpec `yaml:"morphs"`
}

// MorphSpec is one morph slider.
type MorphSpec struct {
	Name    string  `yaml:"name"`
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// AnimSpec binds a host animation.
type AnimSpec struct {
	Name string `yaml:"name"`
	Loop string `yaml:"loop"`
}

// MaterialSpec exposes a host material.
type MaterialSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// MaterialSetSpec builds a material set over an existing mesh set.
type MaterialSetSpec struct {
	Name      string   `yaml:"name"`
	MeshSet   string   `yaml:"mesh_set"`
	Materials []string `yaml:"materials"`
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}
