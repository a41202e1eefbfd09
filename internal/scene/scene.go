// Package scene is an in-memory scene graph implementing types.Host. It
// backs the glTF loader and every test that needs a host.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Object kinds reported by ObjectKind.
const (
	KindMesh   = "MESH"
	KindEmpty  = "EMPTY"
	KindCamera = "CAMERA"
)

// ErrObjectExists is returned when an object name is already taken.
var ErrObjectExists = errors.New("object already exists")

// Object is one scene object.
type Object struct {
	Name      string
	Kind      string
	ID        string
	Hidden    bool
	ShapeKeys []types.ShapeKey
}

// Scene holds objects, collections, materials and animations. The zero
// value is not usable; call New.
type Scene struct {
	objects     map[string]*Object
	objectOrder []string
	members     map[string][]string
	collOrder   []string
	materials   map[string]types.MaterialInfo
	animations  map[string]types.AnimationInfo
}

// New returns an empty scene holding only the staging collection.
func New() *Scene {
	s := &Scene{
		objects:    make(map[string]*Object),
		members:    make(map[string][]string),
		materials:  make(map[string]types.MaterialInfo),
		animations: make(map[string]types.AnimationInfo),
	}
	s.members[types.StagingCollection] = nil
	s.collOrder = append(s.collOrder, types.StagingCollection)
	return s
}

// AddObject creates an object and places it in the staging collection,
// the way a host does while reading an interchange file.
func (s *Scene) AddObject(name, kind string) (*Object, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", types.ErrObjectNotFound)
	}
	if _, ok := s.objects[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectExists, name)
	}
	if kind == "" {
		kind = KindEmpty
	}
	obj := &Object{Name: name, Kind: kind}
	s.objects[name] = obj
	s.objectOrder = append(s.objectOrder, name)
	s.members[types.StagingCollection] = append(s.members[types.StagingCollection], name)
	return obj, nil
}

// UniqueName returns name, or name with the lowest free ".NNN" suffix when
// name is taken.
func (s *Scene) UniqueName(name string) string {
	if _, taken := s.objects[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := s.objects[candidate]; !taken {
			return candidate
		}
	}
}

// Object returns the named object.
func (s *Scene) Object(name string) (*Object, bool) {
	obj, ok := s.objects[name]
	return obj, ok
}

// Objects returns object names in creation order.
func (s *Scene) Objects() []string {
	return slices.Clone(s.objectOrder)
}

// RemoveObject deletes an object and unlinks it everywhere.
func (s *Scene) RemoveObject(name string) {
	if _, ok := s.objects[name]; !ok {
		return
	}
	delete(s.objects, name)
	s.objectOrder = slices.DeleteFunc(s.objectOrder, func(n string) bool { return n == name })
	for coll := range s.members {
		s.members[coll] = slices.DeleteFunc(s.members[coll], func(n string) bool { return n == name })
	}
}

// AddMaterial registers or replaces a material.
func (s *Scene) AddMaterial(info types.MaterialInfo) {
	if info.Kind == "" {
		info.Kind = types.MaterialStandard
	}
	s.materials[info.Name] = info
}

// AddAnimation registers or replaces an animation track.
func (s *Scene) AddAnimation(info types.AnimationInfo) {
	s.animations[info.Name] = info
}

// Collections returns collection names in creation order.
func (s *Scene) Collections() []string {
	return slices.Clone(s.collOrder)
}

// HasCollection implements types.Collections.
func (s *Scene) HasCollection(name string) bool {
	_, ok := s.members[name]
	return ok
}

// CreateCollection implements types.Collections.
func (s *Scene) CreateCollection(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", types.ErrCollectionNotFound)
	}
	if s.HasCollection(name) {
		return nil
	}
	s.members[name] = nil
	s.collOrder = append(s.collOrder, name)
	return nil
}

// DeleteCollection implements types.Collections. Member objects stay in
// the scene; the staging collection cannot be deleted.
func (s *Scene) DeleteCollection(name string) error {
	if name == types.StagingCollection {
		return types.ErrStagingCollection
	}
	if !s.HasCollection(name) {
		return fmt.Errorf("%w: %q", types.ErrCollectionNotFound, name)
	}
	delete(s.members, name)
	s.collOrder = slices.DeleteFunc(s.collOrder, func(n string) bool { return n == name })
	return nil
}

// CollectionObjects implements types.Collections.
func (s *Scene) CollectionObjects(name string) []string {
	return slices.Clone(s.members[name])
}

// LinkObject implements types.Collections. Linking twice is a no-op.
func (s *Scene) LinkObject(collection, object string) error {
	if !s.HasCollection(collection) {
		return fmt.Errorf("%w: %q", types.ErrCollectionNotFound, collection)
	}
	if _, ok := s.objects[object]; !ok {
		return fmt.Errorf("%w: %q", types.ErrObjectNotFound, object)
	}
	if slices.Contains(s.members[collection], object) {
		return nil
	}
	s.members[collection] = append(s.members[collection], object)
	return nil
}

// UnlinkObject implements types.Collections. Unlinking an object that is
// not a member is a no-op.
func (s *Scene) UnlinkObject(collection, object string) error {
	if !s.HasCollection(collection) {
		return fmt.Errorf("%w: %q", types.ErrCollectionNotFound, collection)
	}
	s.members[collection] = slices.DeleteFunc(s.members[collection], func(n string) bool { return n == object })
	return nil
}

// ObjectCollections implements types.Collections.
func (s *Scene) ObjectCollections(object string) []string {
	var out []string
	for _, coll := range s.collOrder {
		if slices.Contains(s.members[coll], object) {
			out = append(out, coll)
		}
	}
	return out
}

// HasObject implements types.Objects.
func (s *Scene) HasObject(name string) bool {
	_, ok := s.objects[name]
	return ok
}

// ObjectKind implements types.Objects.
func (s *Scene) ObjectKind(name string) string {
	if obj, ok := s.objects[name]; ok {
		return obj.Kind
	}
	return ""
}

// ObjectID implements types.Objects.
func (s *Scene) ObjectID(name string) string {
	if obj, ok := s.objects[name]; ok {
		return obj.ID
	}
	return ""
}

// SetObjectID implements types.Objects.
func (s *Scene) SetObjectID(name, id string) error {
	obj, ok := s.objects[name]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrObjectNotFound, name)
	}
	obj.ID = id
	return nil
}

// FindObjectByID implements types.Objects.
func (s *Scene) FindObjectByID(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, name := range s.objectOrder {
		if s.objects[name].ID == id {
			return name, true
		}
	}
	return "", false
}

// Hidden implements types.Objects.
func (s *Scene) Hidden(name string) bool {
	if obj, ok := s.objects[name]; ok {
		return obj.Hidden
	}
	return false
}

// SetHidden implements types.Objects.
func (s *Scene) SetHidden(name string, hidden bool) error {
	obj, ok := s.objects[name]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrObjectNotFound, name)
	}
	obj.Hidden = hidden
	return nil
}

// ShapeKeys implements types.Objects.
func (s *Scene) ShapeKeys(name string) []types.ShapeKey {
	if obj, ok := s.objects[name]; ok {
		return slices.Clone(obj.ShapeKeys)
	}
	return nil
}

// SetShapeKey implements types.Objects. An unknown key name is appended.
func (s *Scene) SetShapeKey(object string, key types.ShapeKey) error {
	obj, ok := s.objects[object]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrObjectNotFound, object)
	}
	for i := range obj.ShapeKeys {
		if obj.ShapeKeys[i].Name == key.Name {
			obj.ShapeKeys[i] = key
			return nil
		}
	}
	obj.ShapeKeys = append(obj.ShapeKeys, key)
	return nil
}

// Material implements types.Materials.
func (s *Scene) Material(name string) (types.MaterialInfo, bool) {
	info, ok := s.materials[name]
	return info, ok
}

// Materials returns material names in ascending order.
func (s *Scene) Materials() []string {
	names := make([]string, 0, len(s.materials))
	for n := range s.materials {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Animation implements types.Animations.
func (s *Scene) Animation(name string) (types.AnimationInfo, bool) {
	info, ok := s.animations[name]
	return info, ok
}

// Animations returns animation names in ascending order.
func (s *Scene) Animations() []string {
	names := make([]string, 0, len(s.animations))
	for n := range s.animations {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

var _ types.Host = (*Scene)(nil)
