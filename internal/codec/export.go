package codec

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Contract blob keys.
const (
	KeyNFTType         = "nftType"
	KeyChain           = "nftChain"
	KeyMintable        = "mintable"
	KeyPrice           = "nftPrice"
	KeyPremiumPrice    = "premNftPrice"
	KeyMaxSupply       = "maxSupply"
	KeyMinterType      = "minterType"
	KeyMinterName      = "minterName"
	KeyMinterDesc      = "minterDesc"
	KeyMinterImage     = "minterImage"
	KeyMinterVersion   = "minterVersion"
	KeyContractABI     = "contractABI"
	KeyContractAddress = "contractAddress"
)

// Exporter writes containers and the contract into a Registry. Host
// lookups resolve member objects, materials and node identifiers; a nil
// host exports records as stored.
type Exporter struct {
	host  types.Host
	reg   types.Registry
	log   zerolog.Logger
	newID func() string
}

// NewExporter returns an Exporter over host and reg.
func NewExporter(host types.Host, reg types.Registry, opts ...Option) *Exporter {
	o := applyOptions(opts)
	return &Exporter{host: host, reg: reg, log: o.log, newID: o.newID}
}

// ExportContainer encodes c and stores the blob under c.ID. The registry
// write is the only error path.
func (e *Exporter) ExportContainer(c *types.Container) (types.Blob, error) {
	blob := e.EncodeContainer(c)
	if e.reg == nil {
		return blob, ErrNoRegistry
	}
	if err := e.reg.Put(c.ID, blob); err != nil {
		return blob, fmt.Errorf("storing container %s: %w", c.ID, err)
	}
	e.log.Debug().Str("container", c.ID).Str("collection", c.Name).Int("records", c.Len()).Msg("container exported")
	return blob, nil
}

// ExportContract encodes k and stores it under types.ContractKey,
// replacing the previous entry.
func (e *Exporter) ExportContract(k types.Contract) (types.Blob, error) {
	blob := e.EncodeContract(k)
	if e.reg == nil {
		return blob, ErrNoRegistry
	}
	if err := e.reg.Put(types.ContractKey, blob); err != nil {
		return blob, fmt.Errorf("storing contract: %w", err)
	}
	return blob, nil
}

// EncodeContract returns the contract blob without storing it.
func (e *Exporter) EncodeContract(k types.Contract) types.Blob {
	out := types.Blob{}
	e.set(out, KeyNFTType, string(k.NFTType))
	e.set(out, KeyChain, string(k.Chain))
	e.set(out, KeyMintable, k.Mintable)
	e.set(out, KeyPrice, types.RoundPrice(k.Price))
	e.set(out, KeyPremiumPrice, types.RoundPrice(k.PremiumPrice))
	e.set(out, KeyMaxSupply, k.MaxSupply)
	e.set(out, KeyMinterType, string(k.MinterType))
	e.set(out, KeyMinterName, k.MinterName)
	e.set(out, KeyMinterDesc, k.MinterDesc)
	e.set(out, KeyMinterImage, k.MinterImage)
	e.set(out, KeyMinterVersion, k.MinterVersion)
	e.set(out, KeyContractABI, k.ContractABI)
	e.set(out, KeyContractAddress, k.ContractAddress)
	return out
}

// EncodeContainer assigns c an identifier if it has none, assigns
// identifiers to member objects that lack one, and returns the container
// blob. Records still carrying the unset name are not written. Nothing is
// stored.
func (e *Exporter) EncodeContainer(c *types.Container) types.Blob {
	c.EnsureID(e.newID)

	out := types.Blob{
		KeyCollectionType: string(c.Kind),
		KeyCollectionName: c.Name,
	}
	sections := map[string]any{}
	var traits []any

	for _, r := range c.Records {
		if r.IsUnset() {
			e.log.Debug().Str("container", c.ID).Stringer("type", r.Type()).Msg("skipping unnamed trait")
			continue
		}
		t := r.Type()
		key := sectionKeys[t]
		if !e.emit(sections, key, r) {
			continue
		}
		traits = append(traits, map[string]any{"trait_type": t.String(), "name": r.Name})
	}
	for key, section := range sections {
		out[key] = section
	}
	out[KeyMenuData] = e.encodeMenu(c.Menu)

	nodes, ids := e.nodes(c.Name)
	out[KeyNodes] = nodes
	out[KeyNodeIDs] = ids
	if traits == nil {
		traits = []any{}
	}
	out[KeyTraits] = traits
	return out
}

// emit adds r to its section and reports whether anything was written.
// Map sections keep the first record of a given name.
func (e *Exporter) emit(sections map[string]any, key string, r *types.Record) bool {
	var entry any
	switch p := r.Payload.(type) {
	case *types.PropertyTrait:
		entry = e.encodeProperty(p)
	case *types.MeshTrait:
		entry = e.encodeMesh(p)
	case *types.MeshSetTrait:
		if p.IsEmpty() {
			e.log.Debug().Str("trait", r.Name).Msg("skipping empty mesh set")
			return false
		}
		names := make([]string, 0, len(p.Entries))
		for _, m := range p.Entries {
			ref := m.Object
			if ref.Name == "" {
				ref.Name = m.Name
			}
			names = append(names, e.objectName(ref))
		}
		entry = names
	case *types.MorphSetTrait:
		entry = e.encodeMorphSet(p)
	case *types.AnimTrait:
		entry = string(p.Loop)
	case *types.MaterialTrait:
		entry = e.encodeMaterial(p)
	case *types.MaterialSetTrait:
		if p.IsEmpty() {
			e.log.Debug().Str("trait", r.Name).Msg("skipping empty material set")
			return false
		}
		entry = e.encodeMaterialSet(p)
	default:
		return false
	}
	if !e.portable(key+"."+r.Name, entry) {
		return false
	}

	switch r.Type() {
	case types.TraitMorphSet, types.TraitAnim:
		list, _ := sections[key].([]any)
		sections[key] = append(list, map[string]any{r.Name: entry})
	default:
		section, _ := sections[key].(map[string]any)
		if section == nil {
			section = map[string]any{}
			sections[key] = section
		}
		if _, taken := section[r.Name]; taken {
			e.log.Warn().Str("section", key).Str("trait", r.Name).Msg("duplicate trait name, keeping the first")
			return false
		}
		section[r.Name] = entry
	}
	return true
}

func (e *Exporter) encodeProperty(p *types.PropertyTrait) map[string]any {
	out := map[string]any{}
	e.set(out, "default", number(p.Kind, p.Default))
	e.set(out, "min", number(p.Kind, p.Min))
	e.set(out, "max", number(p.Kind, p.Max))
	e.set(out, "amount", number(p.Kind, p.Amount))
	e.set(out, "prop_value_type", string(p.Kind))
	e.set(out, types.WidgetKeySlider, string(p.Widget))
	e.set(out, "prop_action_type", string(p.Action))
	e.set(out, "immutable", p.Immutable)
	return out
}

func (e *Exporter) encodeMesh(m *types.MeshTrait) map[string]any {
	out := map[string]any{}
	name := e.objectName(m.Object)
	e.set(out, "name", name)
	if e.host != nil {
		if kind := e.host.ObjectKind(name); kind != "" {
			e.set(out, "type", kind)
		}
	}
	e.set(out, "visible", m.Visible)
	e.set(out, types.WidgetKeyToggle, string(m.Widget))
	return out
}

func (e *Exporter) encodeMorphSet(s *types.MorphSetTrait) map[string]any {
	out := map[string]any{}
	e.set(out, "model_ref", e.objectName(s.Object))
	set := make([]any, 0, len(s.Morphs))
	for _, m := range s.Morphs {
		item := map[string]any{"name": m.Name}
		e.set(item, "default", m.Default)
		e.set(item, "min", m.Min)
		e.set(item, "max", m.Max)
		set = append(set, item)
	}
	out["set"] = set
	e.set(out, types.WidgetKeyMulti, string(s.Widget))
	return out
}

func (e *Exporter) encodeMaterial(m *types.MaterialTrait) map[string]any {
	out := map[string]any{}
	e.set(out, "name", m.Material.Name)
	e.set(out, "type", string(m.Kind))
	e.set(out, types.WidgetKeyMulti, string(m.Widget))
	if e.host == nil {
		return out
	}
	info, ok := m.Material.Resolve(e.host)
	if !ok {
		return out
	}
	e.set(out, "color", types.HexFromLinear(info.BaseColor))
	e.set(out, "roughness", info.Roughness)
	e.set(out, "metalness", info.Metalness)
	e.set(out, "emissive", types.HexFromLinear(info.Emissive))
	return out
}

func (e *Exporter) encodeMaterialSet(s *types.MaterialSetTrait) map[string]any {
	out := map[string]any{}
	e.set(out, "mesh_set_name", s.MeshSetName)
	meshes := make([]string, 0, len(s.Meshes))
	for _, m := range s.Meshes {
		meshes = append(meshes, e.objectName(m))
	}
	out["mesh_set"] = meshes
	slots := make([]any, 0, len(s.Slots))
	for _, slot := range s.Slots {
		slots = append(slots, map[string]any{
			"name":        slot.Name,
			"mat_ref":     slot.Material.Name,
			"material_id": slot.ID,
		})
	}
	out["set"] = slots
	return out
}

func (e *Exporter) encodeMenu(m *types.Menu) any {
	if m == nil {
		return nil
	}
	return map[string]any{
		"name":            m.Name,
		"alignment":       string(m.Alignment),
		"primary_color":   types.HexFromLinear(m.Primary),
		"secondary_color": types.HexFromLinear(m.Secondary),
		"text_color":      types.HexFromLinear(m.Text),
	}
}

// nodes lists the collection's members and their identifiers, assigning an
// identifier to every member that lacks one.
func (e *Exporter) nodes(collection string) ([]string, []string) {
	names := []string{}
	ids := []string{}
	if e.host == nil {
		return names, ids
	}
	for _, name := range e.host.CollectionObjects(collection) {
		id := e.host.ObjectID(name)
		if id == "" {
			id = e.newID()
			if err := e.host.SetObjectID(name, id); err != nil {
				e.log.Warn().Err(err).Str("object", name).Msg("assigning object id")
			}
		}
		names = append(names, name)
		ids = append(ids, id)
	}
	return names, ids
}

// objectName returns the current host name of ref, falling back to the
// stored name when the object is gone.
func (e *Exporter) objectName(ref types.ObjectRef) string {
	if e.host != nil {
		if name, ok := ref.Resolve(e.host); ok {
			return name
		}
	}
	return ref.Name
}

// set stores v under key when v encodes as JSON.
func (e *Exporter) set(dst map[string]any, key string, v any) {
	if e.portable(key, v) {
		dst[key] = v
	}
}

func (e *Exporter) portable(key string, v any) bool {
	if _, err := json.Marshal(v); err != nil {
		e.log.Debug().Err(err).Str("field", key).Msg("dropping field that does not encode")
		return false
	}
	return true
}

// number returns v as an int64 for integer properties. Non-finite values
// stay floats so the portability check drops them; finite values outside
// the int64 range are clamped.
func number(kind types.ValueKind, v float64) any {
	if kind != types.ValueInt || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	v = math.Round(v)
	switch {
	case v >= math.MaxInt64:
		return int64(math.MaxInt64)
	case v <= math.MinInt64:
		return int64(math.MinInt64)
	}
	return int64(v)
}
