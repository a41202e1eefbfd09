package manifest

import (
	"errors"
	"fmt"

	"github.com/flywave/go3d/float64/vec4"

	"github.com/mesh-intelligence/nftmeta/internal/editor"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Diagnostic reports one manifest entry that could not be applied. The
// rest of the manifest is still applied.
type Diagnostic struct {
	Collection string
	Item       string
	Err        error
}

func (d Diagnostic) String() string {
	if d.Collection == "" {
		return fmt.Sprintf("%s: %v", d.Item, d.Err)
	}
	return fmt.Sprintf("%s/%s: %v", d.Collection, d.Item, d.Err)
}

// errors a manifest author can fix; anything else aborts Apply.
var recoverable = []error{
	types.ErrObjectNotFound,
	types.ErrMaterialNotFound,
	types.ErrAnimationNotFound,
	types.ErrMorphNotFound,
	types.ErrDuplicateTrait,
	types.ErrNotFound,
	types.ErrCollectionNotFound,
	types.ErrStagingCollection,
	editor.ErrInvalidValue,
	errInvalidItem,
}

var errInvalidItem = errors.New("trait item must set exactly one variant")

func isRecoverable(err error) bool {
	for _, target := range recoverable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type applier struct {
	ed    *editor.Editor
	diags []Diagnostic
}

// note records err as a diagnostic when it is recoverable and returns it
// otherwise.
func (a *applier) note(collection, item string, err error) error {
	if err == nil {
		return nil
	}
	if !isRecoverable(err) {
		return fmt.Errorf("%s/%s: %w", collection, item, err)
	}
	a.diags = append(a.diags, Diagnostic{Collection: collection, Item: item, Err: err})
	return nil
}

// Apply creates the manifest's collections and traits through ed. Entries
// that name unknown objects, materials or animations, or repeat a trait,
// become diagnostics. The returned error is set only when the editor fails
// for another reason, such as a Registry write.
func (m *Manifest) Apply(ed *editor.Editor) ([]Diagnostic, error) {
	a := &applier{ed: ed}
	if m.Contract != nil {
		k, err := m.Contract.Contract()
		if err != nil {
			a.diags = append(a.diags, Diagnostic{Item: "contract", Err: fmt.Errorf("%w: %v", editor.ErrInvalidValue, err)})
		} else if err := ed.SetContract(k); err != nil {
			return a.diags, fmt.Errorf("storing contract: %w", err)
		}
	}
	for _, c := range m.Collections {
		if err := a.collection(c); err != nil {
			return a.diags, err
		}
	}
	return a.diags, nil
}

func (a *applier) collection(c CollectionSpec) error {
	missing, err := a.ed.CreateCollection(c.Name, c.Objects...)
	for _, obj := range missing {
		a.diags = append(a.diags, Diagnostic{Collection: c.Name, Item: obj, Err: fmt.Errorf("%w: %q", types.ErrObjectNotFound, obj)})
	}
	if err != nil {
		return a.note(c.Name, "collection", err)
	}
	if _, err := a.ed.Container(c.Name); err != nil {
		return a.note(c.Name, "collection", err)
	}
	if c.Kind != "" {
		if err := a.note(c.Name, "kind", a.ed.SetCollectionKind(c.Name, types.CollectionKind(c.Kind))); err != nil {
			return err
		}
	}
	if c.Menu != nil {
		if err := a.note(c.Name, "menu", a.ed.SetMenu(c.Name, a.menu(c.Name, c.Menu))); err != nil {
			return err
		}
	}
	for i, t := range c.Traits {
		if err := a.trait(c.Name, i, t); err != nil {
			return err
		}
	}
	return nil
}

// menu converts a MenuSpec. Malformed colors keep the default and are
// reported.
func (a *applier) menu(collection string, s *MenuSpec) *types.Menu {
	m := types.DefaultMenu(s.Name)
	if s.Alignment != "" {
		m.Alignment = types.Alignment(s.Alignment)
	}
	for _, c := range []struct {
		key string
		hex string
		dst *vec4.T
	}{
		{"primary", s.Primary, &m.Primary},
		{"secondary", s.Secondary, &m.Secondary},
		{"text", s.Text, &m.Text},
	} {
		if c.hex == "" {
			continue
		}
		v, err := types.LinearFromHex(c.hex)
		if err != nil {
			a.diags = append(a.diags, Diagnostic{Collection: collection, Item: "menu." + c.key, Err: fmt.Errorf("%w: color %q", editor.ErrInvalidValue, c.hex)})
			continue
		}
		*c.dst = v
	}
	return m
}

func (a *applier) trait(collection string, i int, t TraitSpec) error {
	if t.variants() != 1 {
		return a.note(collection, fmt.Sprintf("traits[%d]", i), errInvalidItem)
	}
	ed := a.ed
	switch {
	case t.Property != nil:
		_, err := ed.AddProperty(collection, t.Property.Name, t.Property.Trait())
		return a.note(collection, "property "+t.Property.Name, err)
	case t.Mesh != nil:
		_, err := ed.AddMesh(collection, t.Mesh.Object)
		return a.note(collection, "mesh "+t.Mesh.Object, err)
	case t.MeshSet != nil:
		return a.meshSet(collection, t.MeshSet)
	case t.MorphSet != nil:
		return a.morphSet(collection, t.MorphSet)
	case t.Anim != nil:
		_, err := ed.AddAnim(collection, t.Anim.Name, types.LoopMode(t.Anim.Loop))
		return a.note(collection, "anim "+t.Anim.Name, err)
	case t.Material != nil:
		_, err := ed.AddMaterial(collection, t.Material.Name, types.MaterialKind(t.Material.Type))
		return a.note(collection, "material "+t.Material.Name, err)
	default:
		return a.materialSet(collection, t.MaterialSet)
	}
}

// meshSet adds the set with its known members; unknown members are
// reported and skipped.
func (a *applier) meshSet(collection string, s *MeshSetSpec) error {
	item := "mesh_set " + s.Name
	var known []string
	for _, obj := range s.Objects {
		if !a.ed.Host().HasObject(obj) {
			a.diags = append(a.diags, Diagnostic{Collection: collection, Item: item, Err: fmt.Errorf("%w: %q", types.ErrObjectNotFound, obj)})
			continue
		}
		known = append(known, obj)
	}
	_, err := a.ed.AddMeshSet(collection, s.Name, known...)
	return a.note(collection, item, err)
}

func (a *applier) morphSet(collection string, s *MorphSetSpec) error {
	item := "morph_set " + s.Object
	if _, err := a.ed.AddMorphSet(collection, s.Object); err != nil {
		return a.note(collection, item, err)
	}
	for _, m := range s.Morphs {
		morph := types.Morph{Name: m.Name, Default: m.Default, Min: m.Min, Max: m.Max}
		if morph.Max == 0 && morph.Min == 0 {
			morph.Max = 1
		}
		err := a.ed.SetMorph(collection, s.Object, morph)
		if errors.Is(err, types.ErrMorphNotFound) {
			err = a.ed.AddMorph(collection, s.Object, morph)
		}
		if err := a.note(collection, item+"/"+m.Name, err); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) materialSet(collection string, s *MaterialSetSpec) error {
	item := "material_set " + s.Name
	if _, err := a.ed.AddMaterialSet(collection, s.Name, s.MeshSet); err != nil {
		return a.note(collection, item, err)
	}
	for _, mat := range s.Materials {
		if err := a.note(collection, item+"/"+mat, a.ed.AddMaterialToSet(collection, s.Name, mat)); err != nil {
			return err
		}
	}
	return nil
}
