package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/flywave/go3d/float64/vec4"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// LinkRequest asks the linker to place the named objects into a
// container's collection. ObjectIDs is aligned with Objects; an entry is
// empty when the blob carried no identifier for that object.
type LinkRequest struct {
	ContainerID string
	Collection  string
	Objects     []string
	ObjectIDs   []string
}

// Result is the model reconstructed from an extension blob.
type Result struct {
	Contract   *types.Contract    // Nil when the blob has no contract entry.
	Containers []*types.Container // Sorted by ID.
	Requests   []LinkRequest      // One per container, same order.
}

// Container returns the reconstructed container with the given id.
func (r *Result) Container(id string) *types.Container {
	for _, c := range r.Containers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Decoder rebuilds containers from an extension blob. It does not touch
// the host; callers create collections and hand the requests to a linker.
type Decoder struct {
	log zerolog.Logger
}

// NewDecoder returns a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	o := applyOptions(opts)
	return &Decoder{log: o.log}
}

// DecodeJSON parses raw extension JSON and decodes it. Empty input and a
// JSON null decode to an empty result.
func (d *Decoder) DecodeJSON(raw []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Result{}, nil
	}
	var ext types.Blob
	if err := json.Unmarshal(trimmed, &ext); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ExtensionName, err)
	}
	return d.Decode(ext), nil
}

// Decode rebuilds the contract and every container in ext. A nil or empty
// blob yields an empty result.
func (d *Decoder) Decode(ext types.Blob) *Result {
	res := &Result{}
	if len(ext) == 0 {
		return res
	}
	if raw, ok := ext[types.ContractKey]; ok {
		if k, ok := d.decodeContract(raw); ok {
			res.Contract = &k
		}
	}
	for _, id := range sortedKeys(ext) {
		if id == types.ContractKey {
			continue
		}
		blob, err := normalize(ext[id])
		if err != nil {
			d.log.Debug().Err(err).Str("container", id).Msg("skipping container")
			continue
		}
		c, req := d.decodeContainer(id, blob)
		res.Containers = append(res.Containers, c)
		res.Requests = append(res.Requests, req)
	}
	return res
}

func (d *Decoder) decodeContract(raw any) (types.Contract, bool) {
	m, err := normalize(raw)
	if err != nil {
		d.log.Debug().Err(err).Msg("skipping contract")
		return types.Contract{}, false
	}
	def := types.DefaultContract()
	w := contractWire{
		NFTType:      string(def.NFTType),
		Chain:        string(def.Chain),
		Mintable:     def.Mintable,
		Price:        def.Price,
		PremiumPrice: def.PremiumPrice,
		MaxSupply:    def.MaxSupply,
		MinterType:   string(def.MinterType),
	}
	if err := decodeInto(m, &w); err != nil {
		d.log.Debug().Err(err).Msg("contract fields partly decoded")
	}

	k := types.Contract{
		NFTType:         types.NFTType(w.NFTType),
		Chain:           types.Chain(w.Chain),
		Mintable:        w.Mintable,
		Price:           types.RoundPrice(w.Price),
		PremiumPrice:    types.RoundPrice(w.PremiumPrice),
		MaxSupply:       w.MaxSupply,
		MinterType:      types.MinterType(w.MinterType),
		MinterName:      w.MinterName,
		MinterDesc:      w.MinterDesc,
		MinterImage:     w.MinterImage,
		MinterVersion:   w.MinterVersion,
		ContractABI:     w.ContractABI,
		ContractAddress: w.ContractAddress,
	}
	if !k.NFTType.Valid() {
		k.NFTType = def.NFTType
	}
	if !k.Chain.Valid() {
		k.Chain = def.Chain
	}
	if !k.MinterType.Valid() {
		k.MinterType = def.MinterType
	}
	k.Versioned = k.MinterVersion > 0
	return k, true
}

func (d *Decoder) decodeContainer(id string, blob map[string]any) (*types.Container, LinkRequest) {
	name := str(blob[KeyCollectionName])
	if name == "" {
		name = id
	}
	c := types.NewContainer(name)
	c.ID = id
	if kind := types.CollectionKind(str(blob[KeyCollectionType])); kind.Valid() {
		c.Kind = kind
	}
	c.Menu = d.decodeMenu(blob[KeyMenuData])

	var records []*types.Record
	for _, t := range types.TraitTypes {
		for _, e := range sectionEntries(blob[sectionKeys[t]]) {
			r, err := d.decodeRecord(t, e.name, e.value)
			if err != nil {
				d.log.Debug().Err(err).Str("container", id).Str("trait", e.name).Stringer("type", t).Msg("skipping record")
				continue
			}
			records = append(records, r)
		}
	}
	c.Records = orderRecords(records, blob[KeyTraits])

	req := LinkRequest{ContainerID: id, Collection: name}
	nodes, _ := blob[KeyNodes].([]any)
	ids, _ := blob[KeyNodeIDs].([]any)
	for i, n := range nodes {
		var object string
		switch x := n.(type) {
		case string:
			object = x
		case map[string]any:
			object = str(x["name"])
		}
		if object == "" {
			continue
		}
		var oid string
		if i < len(ids) {
			oid = str(ids[i])
		}
		req.Objects = append(req.Objects, object)
		req.ObjectIDs = append(req.ObjectIDs, oid)
	}
	return c, req
}

func (d *Decoder) decodeMenu(v any) *types.Menu {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	menu := types.DefaultMenu("")
	var w menuWire
	if err := decodeInto(m, &w); err != nil {
		d.log.Debug().Err(err).Msg("menu fields partly decoded")
	}
	menu.Name = w.Name
	if a := types.Alignment(w.Alignment); a.Valid() {
		menu.Alignment = a
	}
	for _, c := range []struct {
		hex string
		dst *vec4.T
	}{
		{w.Primary, &menu.Primary},
		{w.Secondary, &menu.Secondary},
		{w.Text, &menu.Text},
	} {
		if c.hex == "" {
			continue
		}
		col, err := types.LinearFromHex(c.hex)
		if err != nil {
			d.log.Debug().Err(err).Msg("keeping default menu color")
			continue
		}
		*c.dst = col
	}
	return menu
}

// decodeRecord builds one record of type t from its serialized value.
func (d *Decoder) decodeRecord(t types.TraitType, name string, v any) (*types.Record, error) {
	r := types.NewRecord(t)
	r.Name = name
	var err error
	switch p := r.Payload.(type) {
	case *types.PropertyTrait:
		err = decodeProperty(p, v)
	case *types.MeshTrait:
		err = decodeMesh(p, name, v)
	case *types.MeshSetTrait:
		err = decodeMeshSet(p, v)
	case *types.MorphSetTrait:
		err = d.decodeMorphSet(p, v)
	case *types.AnimTrait:
		err = decodeAnim(p, v)
	case *types.MaterialTrait:
		err = decodeMaterial(p, name, v)
	case *types.MaterialSetTrait:
		err = d.decodeMaterialSet(p, v)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeProperty(p *types.PropertyTrait, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: property is %T", errMalformed, v)
	}
	w := propertyWire{
		Default:   p.Default,
		Min:       p.Min,
		Max:       p.Max,
		Amount:    p.Amount,
		Kind:      string(p.Kind),
		Widget:    string(p.Widget),
		Action:    string(p.Action),
		Immutable: p.Immutable,
	}
	if err := decodeInto(m, &w); err != nil {
		return err
	}
	p.Default, p.Min, p.Max, p.Amount = w.Default, w.Min, w.Max, w.Amount
	if kind := types.ValueKind(w.Kind); kind.Valid() {
		p.Kind = kind
	}
	if _, ok := m["prop_value_type"]; !ok && fractional(p.Default, p.Min, p.Max, p.Amount) {
		p.Kind = types.ValueFloat
	}
	if widget := types.Widget(w.Widget); types.AcceptsWidget(types.TraitProperty, widget) {
		p.Widget = widget
	}
	if action := types.ActionKind(w.Action); action.Valid() {
		p.Action = action
	}
	p.Immutable = w.Immutable
	p.Normalize()
	return nil
}

func decodeMesh(p *types.MeshTrait, name string, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: mesh is %T", errMalformed, v)
	}
	w := meshWire{Name: name, Visible: p.Visible, Widget: string(p.Widget)}
	if err := decodeInto(m, &w); err != nil {
		return err
	}
	if w.Name == "" {
		w.Name = name
	}
	p.Object = types.Ref(w.Name)
	p.Visible = w.Visible
	if widget := types.Widget(w.Widget); types.AcceptsWidget(types.TraitMesh, widget) {
		p.Widget = widget
	}
	return nil
}

func decodeMeshSet(p *types.MeshSetTrait, v any) error {
	var names []string
	if err := decodeInto(v, &names); err != nil {
		return err
	}
	for _, n := range names {
		if n == "" {
			continue
		}
		p.Entries = append(p.Entries, types.MeshSetEntry{Name: n, Object: types.Ref(n), Visible: true})
	}
	if p.IsEmpty() {
		return fmt.Errorf("%w: empty mesh set", errMalformed)
	}
	return nil
}

func (d *Decoder) decodeMorphSet(p *types.MorphSetTrait, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: morph set is %T", errMalformed, v)
	}
	w := morphSetWire{Widget: string(p.Widget)}
	if err := decodeInto(m, &w); err != nil {
		return err
	}
	p.Object = types.Ref(w.ModelRef)
	if widget := types.Widget(w.Widget); types.AcceptsWidget(types.TraitMorphSet, widget) {
		p.Widget = widget
	}
	items, _ := m["set"].([]any)
	for _, item := range items {
		mw := morphWire{Max: 1}
		if err := decodeInto(item, &mw); err != nil || mw.Name == "" {
			d.log.Debug().Err(err).Str("object", w.ModelRef).Msg("skipping morph")
			continue
		}
		p.Morphs = append(p.Morphs, types.Morph{Name: mw.Name, Default: mw.Default, Min: mw.Min, Max: mw.Max})
	}
	return nil
}

func decodeAnim(p *types.AnimTrait, v any) error {
	var loop string
	switch x := v.(type) {
	case string:
		loop = x
	case map[string]any:
		loop = str(x["loop"])
	default:
		return fmt.Errorf("%w: anim is %T", errMalformed, v)
	}
	if mode := types.LoopMode(loop); mode.Valid() {
		p.Loop = mode
	}
	return nil
}

func decodeMaterial(p *types.MaterialTrait, name string, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: material is %T", errMalformed, v)
	}
	w := materialWire{Kind: string(p.Kind), Widget: string(p.Widget)}
	if err := decodeInto(m, &w); err != nil {
		return err
	}
	if w.Name == "" {
		w.Name = name
	}
	p.Material = types.MaterialRef{Name: w.Name}
	if kind := types.MaterialKind(w.Kind); kind.Valid() {
		p.Kind = kind
	}
	if widget := types.Widget(w.Widget); types.AcceptsWidget(types.TraitMaterial, widget) {
		p.Widget = widget
	}
	return nil
}

func (d *Decoder) decodeMaterialSet(p *types.MaterialSetTrait, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: material set is %T", errMalformed, v)
	}
	var w materialSetWire
	if err := decodeInto(m, &w); err != nil {
		return err
	}
	p.MeshSetName = w.MeshSetName
	for _, n := range w.MeshSet {
		p.Meshes = append(p.Meshes, types.Ref(n))
	}
	items, _ := m["set"].([]any)
	for _, item := range items {
		sw := slotWire{MaterialID: -1}
		if err := decodeInto(item, &sw); err != nil || sw.MatRef == "" {
			d.log.Debug().Err(err).Msg("skipping material slot")
			continue
		}
		if sw.Name == "" {
			sw.Name = sw.MatRef
		}
		if sw.MaterialID < 0 {
			sw.MaterialID = p.NextSlotID()
		}
		p.Slots = append(p.Slots, types.MaterialSlot{Name: sw.Name, Material: types.MaterialRef{Name: sw.MatRef}, ID: sw.MaterialID})
	}
	if p.IsEmpty() {
		return fmt.Errorf("%w: material set without slots", errMalformed)
	}
	return nil
}

// orderRecords arranges records in the order listed by the traits key.
// Records the list does not mention follow in their decoded order.
func orderRecords(records []*types.Record, traits any) []*types.Record {
	list, _ := traits.([]any)
	if len(list) == 0 {
		return records
	}
	used := make([]bool, len(records))
	out := make([]*types.Record, 0, len(records))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		t, err := types.ParseTraitType(str(m["trait_type"]))
		if err != nil {
			continue
		}
		name := str(m["name"])
		for i, r := range records {
			if !used[i] && r.Type() == t && r.Name == name {
				used[i] = true
				out = append(out, r)
				break
			}
		}
	}
	for i, r := range records {
		if !used[i] {
			out = append(out, r)
		}
	}
	return out
}
