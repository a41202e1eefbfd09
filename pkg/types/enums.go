package types

// ValueKind selects integer or floating point storage for a property.
type ValueKind string

// Property value kinds.
const (
	ValueInt   ValueKind = "Int"
	ValueFloat ValueKind = "Float"
)

// Widget names the UI control bound to a trait.
type Widget string

// Widget kinds. Each trait type accepts a subset; see WidgetsFor.
const (
	WidgetValueMeter  Widget = "value_meter"
	WidgetSlider      Widget = "slider"
	WidgetMeter       Widget = "meter"
	WidgetToggle      Widget = "toggle"
	WidgetSelector    Widget = "selector"
	WidgetMultiWidget Widget = "multi_widget"
	WidgetNone        Widget = "none"
)

// Wire keys under which a trait's widget kind is serialized.
const (
	WidgetKeySlider   = "prop_slider_type"
	WidgetKeyToggle   = "prop_toggle_type"
	WidgetKeySelector = "prop_selector_type"
	WidgetKeyMulti    = "prop_multi_widget_type"
	WidgetKeyAnim     = "widget_type"
)

// ActionKind is the interaction a property's widget performs on its value.
type ActionKind string

// Property actions.
const (
	ActionIncremental ActionKind = "Incremental"
	ActionDecremental ActionKind = "Decremental"
	ActionBicremental ActionKind = "Bicremental"
	ActionSetter      ActionKind = "Setter"
	ActionStatic      ActionKind = "Static"
)

// LoopMode is the playback mode recorded on an animation trait.
type LoopMode string

// Animation loop modes.
const (
	LoopNone        LoopMode = "NONE"
	LoopRepeat      LoopMode = "LoopRepeat"
	LoopOnce        LoopMode = "LoopOnce"
	LoopClampToggle LoopMode = "ClampToggle"
	LoopClamp       LoopMode = "Clamp"
	LoopPingPong    LoopMode = "PingPong"
)

// MaterialKind is the shading model advertised for a material trait.
type MaterialKind string

// Material kinds.
const (
	MaterialStandard MaterialKind = "STANDARD"
	MaterialPBR      MaterialKind = "PBR"
	MaterialToon     MaterialKind = "TOON"
)

// CollectionKind controls how many meshes of a collection may be visible.
type CollectionKind string

// Collection kinds.
const (
	CollectionMulti  CollectionKind = "multi"
	CollectionSingle CollectionKind = "single"
)

// Alignment places a container's menu on screen.
type Alignment string

// Menu alignments.
const (
	AlignCenter Alignment = "CENTER"
	AlignLeft   Alignment = "LEFT"
	AlignRight  Alignment = "RIGHT"
)

var validValueKinds = map[ValueKind]bool{ValueInt: true, ValueFloat: true}

var validActions = map[ActionKind]bool{
	ActionIncremental: true,
	ActionDecremental: true,
	ActionBicremental: true,
	ActionSetter:      true,
	ActionStatic:      true,
}

var validLoopModes = map[LoopMode]bool{
	LoopNone:        true,
	LoopRepeat:      true,
	LoopOnce:        true,
	LoopClampToggle: true,
	LoopClamp:       true,
	LoopPingPong:    true,
}

var validMaterialKinds = map[MaterialKind]bool{
	MaterialStandard: true,
	MaterialPBR:      true,
	MaterialToon:     true,
}

var validCollectionKinds = map[CollectionKind]bool{
	CollectionMulti:  true,
	CollectionSingle: true,
}

var validAlignments = map[Alignment]bool{
	AlignCenter: true,
	AlignLeft:   true,
	AlignRight:  true,
}

// widgetsByType lists the widgets each trait type accepts, default first.
var widgetsByType = map[TraitType][]Widget{
	TraitProperty:    {WidgetValueMeter, WidgetSlider, WidgetMeter, WidgetNone},
	TraitMesh:        {WidgetToggle, WidgetNone},
	TraitMeshSet:     {WidgetSelector, WidgetNone},
	TraitMorphSet:    {WidgetMultiWidget, WidgetNone},
	TraitAnim:        {WidgetToggle, WidgetSlider, WidgetNone},
	TraitMaterial:    {WidgetMultiWidget, WidgetNone},
	TraitMaterialSet: {WidgetSelector, WidgetNone},
}

// widgetKeys holds the wire key of each trait type's widget field.
var widgetKeys = map[TraitType]string{
	TraitProperty:    WidgetKeySlider,
	TraitMesh:        WidgetKeyToggle,
	TraitMeshSet:     WidgetKeySelector,
	TraitMorphSet:    WidgetKeyMulti,
	TraitAnim:        WidgetKeyAnim,
	TraitMaterial:    WidgetKeyMulti,
	TraitMaterialSet: WidgetKeySelector,
}

// Valid reports whether k is a known value kind.
func (k ValueKind) Valid() bool { return validValueKinds[k] }

// Valid reports whether a is a known action.
func (a ActionKind) Valid() bool { return validActions[a] }

// Valid reports whether m is a known loop mode.
func (m LoopMode) Valid() bool { return validLoopModes[m] }

// Valid reports whether k is a known material kind.
func (k MaterialKind) Valid() bool { return validMaterialKinds[k] }

// Valid reports whether k is a known collection kind.
func (k CollectionKind) Valid() bool { return validCollectionKinds[k] }

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool { return validAlignments[a] }

// WidgetsFor returns the widgets accepted by trait type t, default first.
func WidgetsFor(t TraitType) []Widget {
	return append([]Widget(nil), widgetsByType[t]...)
}

// AcceptsWidget reports whether trait type t can bind widget w.
func AcceptsWidget(t TraitType, w Widget) bool {
	for _, candidate := range widgetsByType[t] {
		if candidate == w {
			return true
		}
	}
	return false
}

// WidgetKey returns the wire key under which t's widget kind is written.
func WidgetKey(t TraitType) string {
	return widgetKeys[t]
}
