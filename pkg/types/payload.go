package types

import "math"

// Payload is the variant half of a Record. The set of implementations is
// closed: only the seven trait types in this package satisfy it.
type Payload interface {
	TraitType() TraitType
	clone() Payload
}

// NewPayload returns the default payload for trait type t, or nil if t is
// not a valid trait type.
func NewPayload(t TraitType) Payload {
	switch t {
	case TraitProperty:
		return DefaultProperty()
	case TraitMesh:
		return DefaultMesh()
	case TraitMeshSet:
		return &MeshSetTrait{}
	case TraitMorphSet:
		return DefaultMorphSet()
	case TraitAnim:
		return DefaultAnim()
	case TraitMaterial:
		return DefaultMaterial()
	case TraitMaterialSet:
		return &MaterialSetTrait{}
	}
	return nil
}

// PropertyTrait is a numeric value bound to a widget.
type PropertyTrait struct {
	Kind      ValueKind
	Default   float64
	Min       float64
	Max       float64
	Amount    float64 // Step applied by incremental actions.
	Widget    Widget
	Action    ActionKind
	Immutable bool
}

// DefaultProperty returns an integer property ranging over [0, 1].
func DefaultProperty() *PropertyTrait {
	return &PropertyTrait{
		Kind:      ValueInt,
		Default:   0,
		Min:       0,
		Max:       1,
		Amount:    1,
		Widget:    WidgetValueMeter,
		Action:    ActionIncremental,
		Immutable: true,
	}
}

func (*PropertyTrait) TraitType() TraitType { return TraitProperty }

func (p *PropertyTrait) clone() Payload {
	out := *p
	return &out
}

// Normalize rounds the numeric fields to integers when Kind is ValueInt.
func (p *PropertyTrait) Normalize() {
	if p.Kind != ValueInt {
		return
	}
	p.Default = math.Round(p.Default)
	p.Min = math.Round(p.Min)
	p.Max = math.Round(p.Max)
	p.Amount = math.Round(p.Amount)
}

// MeshTrait binds one object's visibility to a toggle.
type MeshTrait struct {
	Object  ObjectRef
	Visible bool
	Widget  Widget
}

// DefaultMesh returns a visible mesh trait with a toggle widget.
func DefaultMesh() *MeshTrait {
	return &MeshTrait{Visible: true, Widget: WidgetToggle}
}

func (*MeshTrait) TraitType() TraitType { return TraitMesh }

func (m *MeshTrait) clone() Payload {
	out := *m
	return &out
}

// MeshSetEntry is one member of a mesh set.
type MeshSetEntry struct {
	Name    string
	Object  ObjectRef
	Visible bool
	Enabled bool // UI selection state; never serialized.
}

// MeshSetTrait groups meshes shown through a selector.
type MeshSetTrait struct {
	Entries []MeshSetEntry
}

func (*MeshSetTrait) TraitType() TraitType { return TraitMeshSet }

func (s *MeshSetTrait) clone() Payload {
	out := &MeshSetTrait{}
	if s.Entries != nil {
		out.Entries = append([]MeshSetEntry(nil), s.Entries...)
	}
	return out
}

// IsEmpty reports whether the set has no members.
func (s *MeshSetTrait) IsEmpty() bool { return len(s.Entries) == 0 }

// Find returns the index of the entry for object name, or -1.
func (s *MeshSetTrait) Find(name string) int {
	for i, e := range s.Entries {
		if e.Object.Name == name || (e.Object.Name == "" && e.Name == name) {
			return i
		}
	}
	return -1
}

// ObjectNames returns the member object names in order.
func (s *MeshSetTrait) ObjectNames() []string {
	names := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Object.Name != "" {
			names = append(names, e.Object.Name)
		} else {
			names = append(names, e.Name)
		}
	}
	return names
}

// Morph is one shape-key slider of a morph set.
type Morph struct {
	Name    string
	Default float64
	Min     float64
	Max     float64
}

// MorphSetTrait mirrors the shape-key sliders of one object.
type MorphSetTrait struct {
	Object ObjectRef
	Morphs []Morph
	Widget Widget
}

// DefaultMorphSet returns an empty morph set.
func DefaultMorphSet() *MorphSetTrait {
	return &MorphSetTrait{Widget: WidgetMultiWidget}
}

func (*MorphSetTrait) TraitType() TraitType { return TraitMorphSet }

func (s *MorphSetTrait) clone() Payload {
	out := *s
	if s.Morphs != nil {
		out.Morphs = append([]Morph(nil), s.Morphs...)
	}
	return &out
}

// Find returns the index of the named morph, or -1.
func (s *MorphSetTrait) Find(name string) int {
	for i, m := range s.Morphs {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// AnimTrait binds a host animation to a playback control. Start, End and
// Blending are read from the host at export time.
type AnimTrait struct {
	Object   ObjectRef
	Loop     LoopMode
	Start    float64
	End      float64
	Blending string
}

// DefaultAnim returns an animation trait that does not loop.
func DefaultAnim() *AnimTrait {
	return &AnimTrait{Loop: LoopNone, Blending: "REPLACE"}
}

func (*AnimTrait) TraitType() TraitType { return TraitAnim }

func (a *AnimTrait) clone() Payload {
	out := *a
	return &out
}

// Widget is derived from the loop mode: a clamped animation is scrubbed
// with a slider, everything else plays from a toggle.
func (a *AnimTrait) Widget() Widget {
	if a.Loop == LoopClamp {
		return WidgetSlider
	}
	return WidgetToggle
}

// MaterialTrait exposes one host material.
type MaterialTrait struct {
	Material MaterialRef
	Kind     MaterialKind
	Widget   Widget
}

// DefaultMaterial returns a standard material trait.
func DefaultMaterial() *MaterialTrait {
	return &MaterialTrait{Kind: MaterialStandard, Widget: WidgetMultiWidget}
}

func (*MaterialTrait) TraitType() TraitType { return TraitMaterial }

func (m *MaterialTrait) clone() Payload {
	out := *m
	return &out
}

// MaterialSlot is one selectable material of a material set.
type MaterialSlot struct {
	Name     string
	Material MaterialRef
	ID       int
}

// MaterialSetTrait lets a selector swap materials on a group of meshes.
type MaterialSetTrait struct {
	MeshSetName string // Mesh-set trait the member meshes were copied from.
	Meshes      []ObjectRef
	Slots       []MaterialSlot
}

func (*MaterialSetTrait) TraitType() TraitType { return TraitMaterialSet }

func (s *MaterialSetTrait) clone() Payload {
	out := &MaterialSetTrait{MeshSetName: s.MeshSetName}
	if s.Meshes != nil {
		out.Meshes = append([]ObjectRef(nil), s.Meshes...)
	}
	if s.Slots != nil {
		out.Slots = append([]MaterialSlot(nil), s.Slots...)
	}
	return out
}

// IsEmpty reports whether the set has no material slots.
func (s *MaterialSetTrait) IsEmpty() bool { return len(s.Slots) == 0 }

// HasMaterial reports whether a slot already references the material.
func (s *MaterialSetTrait) HasMaterial(name string) bool {
	for _, slot := range s.Slots {
		if slot.Material.Name == name {
			return true
		}
	}
	return false
}

// NextSlotID returns the id the next appended slot should carry.
func (s *MaterialSetTrait) NextSlotID() int {
	next := 0
	for _, slot := range s.Slots {
		if slot.ID >= next {
			next = slot.ID + 1
		}
	}
	return next
}

// MeshNames returns the member mesh names in order.
func (s *MaterialSetTrait) MeshNames() []string {
	names := make([]string, 0, len(s.Meshes))
	for _, m := range s.Meshes {
		names = append(names, m.Name)
	}
	return names
}
