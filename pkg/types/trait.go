package types

import "fmt"

// TraitType tags the payload variant held by a Record. The numeric order is
// the priority used by Container.ReorderByType.
type TraitType int

// Trait types in priority order.
const (
	TraitProperty TraitType = iota
	TraitMesh
	TraitMeshSet
	TraitMorphSet
	TraitAnim
	TraitMaterial
	TraitMaterialSet
)

// traitTypeNames holds the wire string of each trait type.
var traitTypeNames = [...]string{
	TraitProperty:    "property",
	TraitMesh:        "mesh",
	TraitMeshSet:     "mesh_set",
	TraitMorphSet:    "morph_set",
	TraitAnim:        "anim",
	TraitMaterial:    "mat_prop",
	TraitMaterialSet: "mat_set",
}

// traitTypeAliases accepts the spellings used by manifests and older blobs.
var traitTypeAliases = map[string]TraitType{
	"material":     TraitMaterial,
	"material_set": TraitMaterialSet,
	"morph":        TraitMorphSet,
	"animation":    TraitAnim,
}

// TraitTypes lists every trait type in priority order.
var TraitTypes = []TraitType{
	TraitProperty,
	TraitMesh,
	TraitMeshSet,
	TraitMorphSet,
	TraitAnim,
	TraitMaterial,
	TraitMaterialSet,
}

// String returns the wire name of the trait type.
func (t TraitType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TraitType(%d)", int(t))
	}
	return traitTypeNames[t]
}

// Valid reports whether t is one of the seven trait types.
func (t TraitType) Valid() bool {
	return t >= TraitProperty && t <= TraitMaterialSet
}

// ParseTraitType maps a wire name (or one of its aliases) to a TraitType.
// Returns ErrInvalidTraitType for anything else.
func ParseTraitType(s string) (TraitType, error) {
	for i, name := range traitTypeNames {
		if name == s {
			return TraitType(i), nil
		}
	}
	if t, ok := traitTypeAliases[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTraitType, s)
}

// UnsetName marks a record whose name has not been chosen yet.
const UnsetName = "*"

// Record is one metadata entry in a container.
type Record struct {
	Name    string  // User-facing label; UnsetName until assigned.
	Note    string  // Free text; never serialized.
	Payload Payload // One of the seven variants.
}

// NewRecord returns a record of type t holding the variant defaults.
// Returns nil if t is not a valid trait type.
func NewRecord(t TraitType) *Record {
	p := NewPayload(t)
	if p == nil {
		return nil
	}
	return &Record{Name: UnsetName, Payload: p}
}

// Type returns the tag of the record's payload.
func (r *Record) Type() TraitType {
	return r.Payload.TraitType()
}

// IsUnset reports whether the record still carries the unset sentinel.
func (r *Record) IsUnset() bool {
	return r.Name == "" || r.Name == UnsetName
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	if r.Payload != nil {
		out.Payload = r.Payload.clone()
	}
	return &out
}
