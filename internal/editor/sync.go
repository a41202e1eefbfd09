package editor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Two-way sync has one entry point per direction. SetMeshVisible and
// SetMorph carry a user edit from a record to the host; Reload carries
// host state into the records and never writes back to the host.

// SetMeshVisible shows or hides object and updates every mesh record and
// mesh-set entry in collection that refers to it. In a single-mesh
// collection showing one mesh hides every other mesh record and mesh-set
// entry.
func (e *Editor) SetMeshVisible(collection, object string, visible bool) error {
	c, err := e.container(collection)
	if err != nil {
		return err
	}
	if err := e.requireObject(object); err != nil {
		return err
	}
	if !e.refersTo(c, object) {
		return fmt.Errorf("%w: no mesh record for %q in %s", types.ErrNotFound, object, collection)
	}
	single := visible && c.Kind == types.CollectionSingle
	var others []string
	hide := func(name string) {
		if !slices.Contains(others, name) {
			others = append(others, name)
		}
	}
	for _, r := range c.Records {
		switch p := r.Payload.(type) {
		case *types.MeshTrait:
			name, ok := p.Object.Resolve(e.host)
			if !ok {
				continue
			}
			if name == object {
				p.Visible = visible
			} else if single && p.Visible {
				p.Visible = false
				hide(name)
			}
		case *types.MeshSetTrait:
			for i := range p.Entries {
				entry := &p.Entries[i]
				name, ok := entry.Object.Resolve(e.host)
				if !ok {
					continue
				}
				if name == object {
					entry.Visible = visible
				} else if single && entry.Visible {
					entry.Visible = false
					hide(name)
				}
			}
		}
	}
	if err := e.host.SetHidden(object, !visible); err != nil {
		return err
	}
	for _, name := range others {
		if err := e.host.SetHidden(name, true); err != nil {
			return err
		}
	}
	return e.commit(c)
}

// refersTo reports whether a mesh record or mesh-set entry of c resolves
// to object.
func (e *Editor) refersTo(c *types.Container, object string) bool {
	for _, r := range c.Records {
		switch p := r.Payload.(type) {
		case *types.MeshTrait:
			if name, ok := p.Object.Resolve(e.host); ok && name == object {
				return true
			}
		case *types.MeshSetTrait:
			for _, entry := range p.Entries {
				if name, ok := entry.Object.Resolve(e.host); ok && name == object {
					return true
				}
			}
		}
	}
	return false
}

// SetMorph replaces the values of one morph and pushes them to the host
// shape key.
func (e *Editor) SetMorph(collection, set string, m types.Morph) error {
	c, r, err := e.record(collection, types.TraitMorphSet, set)
	if err != nil {
		return err
	}
	ms := r.Payload.(*types.MorphSetTrait)
	idx := ms.Find(m.Name)
	if idx < 0 {
		return fmt.Errorf("%w: %q in %s", types.ErrMorphNotFound, m.Name, set)
	}
	ms.Morphs[idx] = m
	if err := e.pushMorph(ms, m); err != nil {
		return err
	}
	return e.commit(c)
}

func (e *Editor) pushMorph(ms *types.MorphSetTrait, m types.Morph) error {
	object, ok := ms.Object.Resolve(e.host)
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrObjectNotFound, ms.Object.Name)
	}
	return e.host.SetShapeKey(object, types.ShapeKey{
		Name:      m.Name,
		Value:     m.Default,
		SliderMin: m.Min,
		SliderMax: m.Max,
	})
}

// Reload pulls host state into the collection's records: mesh visibility,
// shape-key values and bounds, and animation ranges. Referents that are
// gone are left alone.
func (e *Editor) Reload(collection string) error {
	c, err := e.container(collection)
	if err != nil {
		return err
	}
	for _, r := range c.Records {
		switch p := r.Payload.(type) {
		case *types.MeshTrait:
			if name, ok := p.Object.Resolve(e.host); ok {
				p.Visible = !e.host.Hidden(name)
			}
		case *types.MorphSetTrait:
			name, ok := p.Object.Resolve(e.host)
			if !ok {
				continue
			}
			for _, key := range e.host.ShapeKeys(name) {
				if i := p.Find(key.Name); i >= 0 {
					p.Morphs[i] = types.Morph{Name: key.Name, Default: key.Value, Min: key.SliderMin, Max: key.SliderMax}
				}
			}
		}
	}
	// Animation target and range plus mesh-set visibility follow the same
	// rules as an import.
	codec.Hydrate(c, e.host)
	return e.commit(c)
}

// pushMorphs writes every morph of every morph set in c to the host.
// Objects that are missing are skipped.
func (e *Editor) pushMorphs(c *types.Container) error {
	var errs []error
	for _, r := range c.OfType(types.TraitMorphSet) {
		ms := r.Payload.(*types.MorphSetTrait)
		if _, ok := ms.Object.Resolve(e.host); !ok {
			continue
		}
		for _, m := range ms.Morphs {
			if err := e.pushMorph(ms, m); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
