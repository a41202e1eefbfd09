package types

import (
	"errors"
	"testing"
)

func TestParseTraitType(t *testing.T) {
	for _, tt := range TraitTypes {
		got, err := ParseTraitType(tt.String())
		if err != nil || got != tt {
			t.Errorf("ParseTraitType(%q) = %v, %v; want %v", tt.String(), got, err, tt)
		}
	}
	aliases := map[string]TraitType{
		"material":     TraitMaterial,
		"material_set": TraitMaterialSet,
	}
	for in, want := range aliases {
		if got, err := ParseTraitType(in); err != nil || got != want {
			t.Errorf("ParseTraitType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseTraitType("sound"); !errors.Is(err, ErrInvalidTraitType) {
		t.Errorf("ParseTraitType(sound) error = %v, want ErrInvalidTraitType", err)
	}
}

func TestTraitTypeString(t *testing.T) {
	if got := TraitMaterial.String(); got != "mat_prop" {
		t.Errorf("TraitMaterial.String() = %q", got)
	}
	if got := TraitType(9).String(); got != "TraitType(9)" {
		t.Errorf("invalid String() = %q", got)
	}
}

func TestNewPayloadDefaults(t *testing.T) {
	p := NewPayload(TraitProperty).(*PropertyTrait)
	if p.Kind != ValueInt || p.Max != 1 || p.Widget != WidgetValueMeter || !p.Immutable {
		t.Errorf("unexpected property defaults: %+v", p)
	}
	m := NewPayload(TraitMesh).(*MeshTrait)
	if !m.Visible || m.Widget != WidgetToggle {
		t.Errorf("unexpected mesh defaults: %+v", m)
	}
	a := NewPayload(TraitAnim).(*AnimTrait)
	if a.Loop != LoopNone || a.Widget() != WidgetToggle {
		t.Errorf("unexpected anim defaults: %+v", a)
	}
	a.Loop = LoopClamp
	if a.Widget() != WidgetSlider {
		t.Errorf("clamped anim widget = %v, want slider", a.Widget())
	}
	if NewPayload(TraitType(-1)) != nil {
		t.Error("NewPayload(invalid) should be nil")
	}
}

func TestPropertyNormalize(t *testing.T) {
	p := &PropertyTrait{Kind: ValueInt, Default: 1.4, Min: -0.6, Max: 99.5, Amount: 2.2}
	p.Normalize()
	if p.Default != 1 || p.Min != -1 || p.Max != 100 || p.Amount != 2 {
		t.Errorf("Normalize int = %+v", p)
	}
	f := &PropertyTrait{Kind: ValueFloat, Default: 1.4}
	f.Normalize()
	if f.Default != 1.4 {
		t.Errorf("Normalize float changed Default to %v", f.Default)
	}
}

func TestWidgets(t *testing.T) {
	if !AcceptsWidget(TraitProperty, WidgetSlider) {
		t.Error("property should accept slider")
	}
	if AcceptsWidget(TraitMesh, WidgetSlider) {
		t.Error("mesh should not accept slider")
	}
	if got := WidgetKey(TraitMorphSet); got != WidgetKeyMulti {
		t.Errorf("WidgetKey(morph_set) = %q", got)
	}
	if got := WidgetsFor(TraitAnim)[0]; got != WidgetToggle {
		t.Errorf("default anim widget = %v", got)
	}
}

func TestMaterialSetNextSlotID(t *testing.T) {
	s := &MaterialSetTrait{}
	if s.NextSlotID() != 0 {
		t.Errorf("empty NextSlotID = %d", s.NextSlotID())
	}
	s.Slots = []MaterialSlot{{Name: "a", ID: 0}, {Name: "b", ID: 4}, {Name: "c", ID: 2}}
	if s.NextSlotID() != 5 {
		t.Errorf("NextSlotID = %d, want 5", s.NextSlotID())
	}
	s.Slots[1].Material = MaterialRef{Name: "Gold"}
	if !s.HasMaterial("Gold") || s.HasMaterial("Silver") {
		t.Error("HasMaterial mismatch")
	}
}

func TestRoundPrice(t *testing.T) {
	if got := RoundPrice(0.123456); got != 0.1235 {
		t.Errorf("RoundPrice = %v, want 0.1235", got)
	}
}

func TestCloneBlob(t *testing.T) {
	b := Blob{"a": map[string]any{"b": []any{1, "x"}}, "n": []string{"p"}}
	c := CloneBlob(b)
	c["a"].(map[string]any)["b"].([]any)[0] = 2
	c["n"].([]string)[0] = "q"
	if b["a"].(map[string]any)["b"].([]any)[0] != 1 {
		t.Error("nested slice shared")
	}
	if b["n"].([]string)[0] != "p" {
		t.Error("string slice shared")
	}
}
