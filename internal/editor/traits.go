package editor

import (
	"fmt"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// add appends a record to the collection's container after the duplicate
// check and writes the container through. Returns the new index.
func (e *Editor) add(collection string, name string, p types.Payload) (int, error) {
	c, err := e.Container(collection)
	if err != nil {
		return -1, err
	}
	if name == "" {
		name = types.UnsetName
	}
	t := p.TraitType()
	if name != types.UnsetName && c.HasTrait(t, name) {
		return -1, e.duplicate(c, t, name)
	}
	idx := c.Append(&types.Record{Name: name, Payload: p})
	c.Selected = idx
	return idx, e.commit(c)
}

// record returns the record of type t named name in collection.
func (e *Editor) record(collection string, t types.TraitType, name string) (*types.Container, *types.Record, error) {
	c, ok := e.containers[collection]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no metadata for collection %q", types.ErrNotFound, collection)
	}
	idx := c.Find(t, name)
	if idx < 0 {
		return c, nil, fmt.Errorf("%w: %s %q in %s", types.ErrNotFound, t, name, collection)
	}
	return c, c.Records[idx], nil
}

func (e *Editor) requireObject(name string) error {
	if !e.host.HasObject(name) {
		return fmt.Errorf("%w: %q", types.ErrObjectNotFound, name)
	}
	return nil
}

func (e *Editor) objectRef(name string) types.ObjectRef {
	return types.ObjectRef{Name: name, ID: e.host.ObjectID(name)}
}

// AddProperty adds a numeric property. A nil p adds the defaults.
func (e *Editor) AddProperty(collection, name string, p *types.PropertyTrait) (int, error) {
	if p == nil {
		p = types.DefaultProperty()
	}
	if !p.Kind.Valid() {
		return -1, fmt.Errorf("%w: value kind %q", ErrInvalidValue, p.Kind)
	}
	if !types.AcceptsWidget(types.TraitProperty, p.Widget) {
		return -1, fmt.Errorf("%w: widget %q", ErrInvalidValue, p.Widget)
	}
	if !p.Action.Valid() {
		return -1, fmt.Errorf("%w: action %q", ErrInvalidValue, p.Action)
	}
	p.Normalize()
	return e.add(collection, name, p)
}

// AddMesh adds a visibility toggle for object. The record is named after
// the object and starts with the object's current visibility.
func (e *Editor) AddMesh(collection, object string) (int, error) {
	if err := e.requireObject(object); err != nil {
		return -1, err
	}
	m := types.DefaultMesh()
	m.Object = e.objectRef(object)
	m.Visible = !e.host.Hidden(object)
	return e.add(collection, object, m)
}

// AddMeshSet adds a mesh set holding objects. A set created without
// members is kept but not exported until a member is added.
func (e *Editor) AddMeshSet(collection, name string, objects ...string) (int, error) {
	set := &types.MeshSetTrait{}
	for _, obj := range objects {
		if err := e.requireObject(obj); err != nil {
			return -1, err
		}
		if set.Find(obj) >= 0 {
			continue
		}
		set.Entries = append(set.Entries, e.meshSetEntry(obj))
	}
	return e.add(collection, name, set)
}

func (e *Editor) meshSetEntry(object string) types.MeshSetEntry {
	return types.MeshSetEntry{Name: object, Object: e.objectRef(object), Visible: !e.host.Hidden(object)}
}

// AddMeshSetMember appends object to the named mesh set.
func (e *Editor) AddMeshSetMember(collection, set, object string) error {
	if err := e.requireObject(object); err != nil {
		return err
	}
	c, r, err := e.record(collection, types.TraitMeshSet, set)
	if err != nil {
		return err
	}
	ms := r.Payload.(*types.MeshSetTrait)
	if ms.Find(object) >= 0 {
		return e.duplicate(c, types.TraitMeshSet, set+"/"+object)
	}
	ms.Entries = append(ms.Entries, e.meshSetEntry(object))
	return e.commit(c)
}

// RemoveMeshSetMember drops object from the named mesh set.
func (e *Editor) RemoveMeshSetMember(collection, set, object string) error {
	c, r, err := e.record(collection, types.TraitMeshSet, set)
	if err != nil {
		return err
	}
	ms := r.Payload.(*types.MeshSetTrait)
	idx := ms.Find(object)
	if idx < 0 {
		return fmt.Errorf("%w: %q not in mesh set %q", types.ErrObjectNotFound, object, set)
	}
	ms.Entries = append(ms.Entries[:idx], ms.Entries[idx+1:]...)
	return e.commit(c)
}

// AddMorphSet mirrors the shape keys of object. The reference key "Basis"
// is not a slider and is left out.
func (e *Editor) AddMorphSet(collection, object string) (int, error) {
	if err := e.requireObject(object); err != nil {
		return -1, err
	}
	ms := types.DefaultMorphSet()
	ms.Object = e.objectRef(object)
	for _, key := range e.host.ShapeKeys(object) {
		if key.Name == "Basis" {
			continue
		}
		ms.Morphs = append(ms.Morphs, types.Morph{Name: key.Name, Default: key.Value, Min: key.SliderMin, Max: key.SliderMax})
	}
	return e.add(collection, object, ms)
}

// AddMorph appends a morph to the named morph set and creates the matching
// shape key on the host object.
func (e *Editor) AddMorph(collection, set string, m types.Morph) error {
	c, r, err := e.record(collection, types.TraitMorphSet, set)
	if err != nil {
		return err
	}
	ms := r.Payload.(*types.MorphSetTrait)
	if ms.Find(m.Name) >= 0 {
		return e.duplicate(c, types.TraitMorphSet, set+"/"+m.Name)
	}
	ms.Morphs = append(ms.Morphs, m)
	if err := e.pushMorph(ms, m); err != nil {
		return err
	}
	return e.commit(c)
}

// AddAnim binds a host animation. The record takes the animation's name;
// target and frame range come from the host.
func (e *Editor) AddAnim(collection, anim string, loop types.LoopMode) (int, error) {
	info, ok := e.host.Animation(anim)
	if !ok {
		return -1, fmt.Errorf("%w: %q", types.ErrAnimationNotFound, anim)
	}
	if loop == "" {
		loop = types.LoopNone
	}
	if !loop.Valid() {
		return -1, fmt.Errorf("%w: loop mode %q", ErrInvalidValue, loop)
	}
	a := types.DefaultAnim()
	a.Object = types.Ref(info.Target)
	a.Loop = loop
	a.Start, a.End = info.Start, info.End
	if info.Blending != "" {
		a.Blending = info.Blending
	}
	return e.add(collection, anim, a)
}

// AddMaterial exposes a host material. An empty kind takes the host's.
func (e *Editor) AddMaterial(collection, material string, kind types.MaterialKind) (int, error) {
	info, ok := e.host.Material(material)
	if !ok {
		return -1, fmt.Errorf("%w: %q", types.ErrMaterialNotFound, material)
	}
	if kind == "" {
		kind = info.Kind
	}
	if !kind.Valid() {
		return -1, fmt.Errorf("%w: material kind %q", ErrInvalidValue, kind)
	}
	m := types.DefaultMaterial()
	m.Material = types.MaterialRef{Name: material}
	m.Kind = kind
	return e.add(collection, material, m)
}

// AddMaterialSet creates a material set over the members of an existing
// mesh set. Slots are added with AddMaterialToSet.
func (e *Editor) AddMaterialSet(collection, name, meshSet string) (int, error) {
	_, r, err := e.record(collection, types.TraitMeshSet, meshSet)
	if err != nil {
		return -1, err
	}
	ms := r.Payload.(*types.MeshSetTrait)
	set := &types.MaterialSetTrait{MeshSetName: meshSet}
	for _, entry := range ms.Entries {
		set.Meshes = append(set.Meshes, entry.Object)
	}
	return e.add(collection, name, set)
}

// AddMaterialToSet appends a slot for material with the next slot id.
func (e *Editor) AddMaterialToSet(collection, set, material string) error {
	if _, ok := e.host.Material(material); !ok {
		return fmt.Errorf("%w: %q", types.ErrMaterialNotFound, material)
	}
	c, r, err := e.record(collection, types.TraitMaterialSet, set)
	if err != nil {
		return err
	}
	ms := r.Payload.(*types.MaterialSetTrait)
	if ms.HasMaterial(material) {
		return e.duplicate(c, types.TraitMaterialSet, set+"/"+material)
	}
	ms.Slots = append(ms.Slots, types.MaterialSlot{
		Name:     material,
		Material: types.MaterialRef{Name: material},
		ID:       ms.NextSlotID(),
	})
	return e.commit(c)
}

// container returns an existing container or ErrNotFound.
func (e *Editor) container(collection string) (*types.Container, error) {
	c, ok := e.containers[collection]
	if !ok {
		return nil, fmt.Errorf("%w: no metadata for collection %q", types.ErrNotFound, collection)
	}
	return c, nil
}

// Update runs fn on the record at index and writes the container through.
// Property values are re-normalized afterwards. A rename onto the name of
// another record of the same type is undone and returns ErrDuplicateTrait.
func (e *Editor) Update(collection string, index int, fn func(*types.Record)) error {
	c, err := e.container(collection)
	if err != nil {
		return err
	}
	r := c.At(index)
	if r == nil {
		return fmt.Errorf("%w: %d", types.ErrIndexOutOfRange, index)
	}
	before := r.Clone()
	fn(r)
	if r.Payload == nil || r.Type() != before.Type() {
		*r = *before
		return fmt.Errorf("%w: record %d changed type", types.ErrTraitMismatch, index)
	}
	if r.Name != before.Name && !r.IsUnset() && nameTaken(c, index) {
		name := r.Name
		*r = *before
		return e.duplicate(c, r.Type(), name)
	}
	if p, ok := r.Payload.(*types.PropertyTrait); ok {
		p.Normalize()
	}
	return e.commit(c)
}

// nameTaken reports whether another record of c has the type and name of
// the record at index.
func nameTaken(c *types.Container, index int) bool {
	r := c.Records[index]
	for i, other := range c.Records {
		if i != index && other.Type() == r.Type() && other.Name == r.Name {
			return true
		}
	}
	return false
}

// RemoveTrait deletes the record at index.
func (e *Editor) RemoveTrait(collection string, index int) error {
	c, err := e.container(collection)
	if err != nil {
		return err
	}
	if c.At(index) == nil {
		return fmt.Errorf("%w: %d", types.ErrIndexOutOfRange, index)
	}
	c.Remove(index)
	return e.commit(c)
}

// MoveTrait moves the record at index one step in dir and returns its new
// index.
func (e *Editor) MoveTrait(collection string, index int, dir types.Direction) (int, error) {
	c, err := e.container(collection)
	if err != nil {
		return index, err
	}
	if c.At(index) == nil {
		return index, fmt.Errorf("%w: %d", types.ErrIndexOutOfRange, index)
	}
	return c.Move(index, dir), e.commit(c)
}

// ReorderByType groups the container's records by trait type.
func (e *Editor) ReorderByType(collection string) error {
	c, err := e.container(collection)
	if err != nil {
		return err
	}
	c.ReorderByType()
	return e.commit(c)
}

// SetCollectionKind switches between multi and single visible mesh.
func (e *Editor) SetCollectionKind(collection string, kind types.CollectionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: collection kind %q", ErrInvalidValue, kind)
	}
	c, err := e.Container(collection)
	if err != nil {
		return err
	}
	c.Kind = kind
	return e.commit(c)
}

// SetMenu replaces the container's menu. A nil menu removes it.
func (e *Editor) SetMenu(collection string, m *types.Menu) error {
	if m != nil && !m.Alignment.Valid() {
		return fmt.Errorf("%w: alignment %q", ErrInvalidValue, m.Alignment)
	}
	c, err := e.Container(collection)
	if err != nil {
		return err
	}
	if m != nil {
		cp := *m
		m = &cp
	}
	c.Menu = m
	return e.commit(c)
}
