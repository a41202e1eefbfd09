package types

import (
	"reflect"
	"testing"
)

func names(c *Container) []string {
	out := make([]string, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.Name
	}
	return out
}

func fill(types ...TraitType) *Container {
	c := NewContainer("Cube")
	for i, tt := range types {
		idx := c.Add(tt)
		c.Records[idx].Name = string(rune('a' + i))
	}
	return c
}

func TestContainerAdd(t *testing.T) {
	c := NewContainer("Cube")
	for i, tt := range TraitTypes {
		idx := c.Add(tt)
		if idx != i {
			t.Fatalf("Add(%v) = %d, want %d", tt, idx, i)
		}
		r := c.At(idx)
		if r.Name != UnsetName {
			t.Errorf("new %v record name = %q, want %q", tt, r.Name, UnsetName)
		}
		if r.Type() != tt {
			t.Errorf("record type = %v, want %v", r.Type(), tt)
		}
	}
	if got := c.Add(TraitType(42)); got != -1 {
		t.Errorf("Add(invalid) = %d, want -1", got)
	}
	if c.Len() != len(TraitTypes) {
		t.Errorf("Len = %d, want %d", c.Len(), len(TraitTypes))
	}
}

func TestContainerRemove(t *testing.T) {
	tests := []struct {
		name         string
		size         int
		index        int
		wantNames    []string
		wantSelected int
	}{
		{"first", 3, 0, []string{"b", "c"}, 0},
		{"middle", 3, 1, []string{"a", "c"}, 0},
		{"last", 3, 2, []string{"a", "b"}, 1},
		{"only", 1, 0, []string{}, -1},
		{"out of range", 2, 5, []string{"a", "b"}, 0},
		{"negative", 2, -1, []string{"a", "b"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds := make([]TraitType, tt.size)
			c := fill(kinds...)
			c.Remove(tt.index)
			if got := names(c); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("names = %v, want %v", got, tt.wantNames)
			}
			if c.Selected != tt.wantSelected {
				t.Errorf("Selected = %d, want %d", c.Selected, tt.wantSelected)
			}
		})
	}

	empty := NewContainer("Empty")
	empty.Remove(0)
	if empty.Len() != 0 {
		t.Errorf("Remove on empty container changed Len to %d", empty.Len())
	}
}

func TestContainerMove(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		dir       Direction
		wantIndex int
		wantNames []string
	}{
		{"up from middle", 1, Up, 0, []string{"b", "a", "c"}},
		{"down from middle", 1, Down, 2, []string{"a", "c", "b"}},
		{"up at top is ignored", 0, Up, 0, []string{"a", "b", "c"}},
		{"down at bottom is ignored", 2, Down, 2, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fill(TraitProperty, TraitProperty, TraitProperty)
			got := c.Move(tt.index, tt.dir)
			if got != tt.wantIndex {
				t.Errorf("Move = %d, want %d", got, tt.wantIndex)
			}
			if c.Selected != tt.wantIndex {
				t.Errorf("Selected = %d, want %d", c.Selected, tt.wantIndex)
			}
			if n := names(c); !reflect.DeepEqual(n, tt.wantNames) {
				t.Errorf("names = %v, want %v", n, tt.wantNames)
			}
		})
	}
}

func TestContainerReorderByType(t *testing.T) {
	c := fill(TraitMaterialSet, TraitAnim, TraitProperty, TraitMesh, TraitAnim, TraitProperty, TraitMorphSet)
	c.ReorderByType()

	wantTypes := []TraitType{TraitProperty, TraitProperty, TraitMesh, TraitMorphSet, TraitAnim, TraitAnim, TraitMaterialSet}
	if got := c.Types(); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("types = %v, want %v", got, wantTypes)
	}
	// Relative order inside each bucket survives: c before f, b before e.
	wantNames := []string{"c", "f", "d", "g", "b", "e", "a"}
	if got := names(c); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("names = %v, want %v", got, wantNames)
	}

	once := names(c)
	c.ReorderByType()
	if got := names(c); !reflect.DeepEqual(got, once) {
		t.Errorf("second reorder changed order: %v -> %v", once, got)
	}
}

func TestContainerHasTrait(t *testing.T) {
	c := NewContainer("Cube")
	idx := c.Add(TraitAnim)
	c.Records[idx].Name = "Walk"

	if !c.HasTrait(TraitAnim, "Walk") {
		t.Error("HasTrait(anim, Walk) = false, want true")
	}
	if c.HasTrait(TraitMesh, "Walk") {
		t.Error("HasTrait(mesh, Walk) = true, want false")
	}
	if c.HasTrait(TraitAnim, "Run") {
		t.Error("HasTrait(anim, Run) = true, want false")
	}
}

func TestContainerEnsureID(t *testing.T) {
	c := NewContainer("Cube")
	calls := 0
	gen := func() string {
		calls++
		return "abcd1234"
	}
	if got := c.EnsureID(gen); got != "abcd1234" {
		t.Fatalf("EnsureID = %q, want abcd1234", got)
	}
	if got := c.EnsureID(func() string { return "other" }); got != "abcd1234" {
		t.Errorf("second EnsureID = %q, want the first id", got)
	}
	if calls != 1 {
		t.Errorf("generator called %d times, want 1", calls)
	}
}

func TestContainerClone(t *testing.T) {
	c := NewContainer("Cube")
	c.Menu = DefaultMenu("Main")
	idx := c.Add(TraitMeshSet)
	set := c.Records[idx].Payload.(*MeshSetTrait)
	set.Entries = append(set.Entries, MeshSetEntry{Name: "Hat", Object: Ref("Hat"), Visible: true})

	cp := c.Clone()
	cp.Menu.Name = "Changed"
	cp.Records[idx].Payload.(*MeshSetTrait).Entries[0].Name = "Changed"

	if c.Menu.Name != "Main" {
		t.Error("clone shares the menu")
	}
	if set.Entries[0].Name != "Hat" {
		t.Error("clone shares mesh set entries")
	}
}
