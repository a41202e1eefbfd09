package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nftmeta/internal/scene"
	"github.com/mesh-intelligence/nftmeta/internal/testutil/testlog"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

func decodeOne(t *testing.T, blob string) (*types.Container, LinkRequest) {
	t.Helper()
	res, err := NewDecoder(WithLogger(testlog.Start(t))).DecodeJSON([]byte(`{"c1":` + blob + `}`))
	require.NoError(t, err)
	require.Len(t, res.Containers, 1)
	return res.Containers[0], res.Requests[0]
}

func TestDecodeEmpty(t *testing.T) {
	dec := NewDecoder(WithLogger(testlog.Start(t)))

	res := dec.Decode(nil)
	assert.Nil(t, res.Contract)
	assert.Empty(t, res.Containers)

	for _, raw := range []string{"", "  ", "null", "{}"} {
		res, err := dec.DecodeJSON([]byte(raw))
		require.NoError(t, err, "input %q", raw)
		assert.Empty(t, res.Containers)
	}

	_, err := dec.DecodeJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestDecodeMissingFieldsKeepDefaults(t *testing.T) {
	c, _ := decodeOne(t, `{"valProps":{"lives":{"max":5}}}`)
	require.Equal(t, 1, c.Len())
	p := c.Records[0].Payload.(*types.PropertyTrait)

	want := types.DefaultProperty()
	want.Max = 5
	assert.Equal(t, want, p)
	assert.Equal(t, "c1", c.Name, "name falls back to the id")
	assert.Equal(t, types.CollectionMulti, c.Kind)
	assert.Nil(t, c.Menu)
}

func TestDecodeInfersFloatProperty(t *testing.T) {
	c, _ := decodeOne(t, `{"valProps":{"speed":{"default":0.5,"max":2}}}`)
	p := c.Records[0].Payload.(*types.PropertyTrait)
	assert.Equal(t, types.ValueFloat, p.Kind)
	assert.Equal(t, 0.5, p.Default)

	c, _ = decodeOne(t, `{"valProps":{"lives":{"default":2.6,"prop_value_type":"Int"}}}`)
	p = c.Records[0].Payload.(*types.PropertyTrait)
	assert.Equal(t, types.ValueInt, p.Kind)
	assert.Equal(t, 3.0, p.Default, "integer values are rounded")
}

func TestDecodeSkipsMalformedRecords(t *testing.T) {
	c, _ := decodeOne(t, `{
		"valProps": {"bad": "x", "ok": {"max": 3}},
		"meshSets": {"none": [], "hats": ["Hat", "Cap"]},
		"materialSets": {"empty": {"mesh_set": ["Hat"], "set": []}},
		"animProps": [{"Walk": 7}, {"Run": "LoopOnce"}]
	}`)
	var names []string
	for _, r := range c.Records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"ok", "hats", "Run"}, names)
}

func TestDecodeTypePriorityWithoutTraits(t *testing.T) {
	c, _ := decodeOne(t, `{
		"materials": {"Gold": {"type": "PBR"}},
		"animProps": [{"Walk": "LoopRepeat"}, {"Idle": "NONE"}],
		"valProps": {"z": {}, "a": {}}
	}`)
	assert.Equal(t, []types.TraitType{
		types.TraitProperty, types.TraitProperty, types.TraitAnim, types.TraitAnim, types.TraitMaterial,
	}, c.Types())
	assert.Equal(t, "a", c.Records[0].Name)
	assert.Equal(t, "z", c.Records[1].Name)
	assert.Equal(t, "Walk", c.Records[2].Name, "list sections keep list order")
	assert.Equal(t, "Idle", c.Records[3].Name)
}

func TestDecodeTraitsOrder(t *testing.T) {
	c, _ := decodeOne(t, `{
		"valProps": {"a": {}, "b": {}},
		"animProps": [{"Walk": "LoopRepeat"}],
		"traits": [
			{"trait_type": "anim", "name": "Walk"},
			{"trait_type": "property", "name": "b"},
			{"trait_type": "property", "name": "gone"},
			{"trait_type": "sound", "name": "a"}
		]
	}`)
	var names []string
	for _, r := range c.Records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Walk", "b", "a"}, names)
}

func TestDecodeInvalidEnumsFallBack(t *testing.T) {
	c, _ := decodeOne(t, `{
		"collectionType": "several",
		"animProps": [{"Walk": "Bounce"}],
		"materials": {"Gold": {"type": "METAL", "prop_multi_widget_type": "slider"}},
		"menu_data": {"name": "Main", "alignment": "TOP", "primary_color": "nope", "text_color": "#ff0000"}
	}`)
	assert.Equal(t, types.CollectionMulti, c.Kind)
	anim := c.Records[0].Payload.(*types.AnimTrait)
	assert.Equal(t, types.LoopNone, anim.Loop)
	mat := c.Records[1].Payload.(*types.MaterialTrait)
	assert.Equal(t, types.MaterialStandard, mat.Kind)
	assert.Equal(t, types.WidgetMultiWidget, mat.Widget)
	assert.Equal(t, "Gold", mat.Material.Name, "material name falls back to the record name")

	require.NotNil(t, c.Menu)
	assert.Equal(t, types.AlignCenter, c.Menu.Alignment)
	assert.Equal(t, types.DefaultPrimaryColor, c.Menu.Primary)
	assert.Equal(t, "#ff0000", types.HexFromLinear(c.Menu.Text))
}

func TestDecodeNodes(t *testing.T) {
	_, req := decodeOne(t, `{
		"collection_name": "Hats",
		"nodes": ["Hat", {"name": "Cap", "type": "MESH"}, 3, ""],
		"node_ids": ["h1"]
	}`)
	assert.Equal(t, "Hats", req.Collection)
	assert.Equal(t, []string{"Hat", "Cap"}, req.Objects)
	assert.Equal(t, []string{"h1", ""}, req.ObjectIDs)
}

func TestDecodeMaterialSetSlotIDs(t *testing.T) {
	c, _ := decodeOne(t, `{"materialSets": {"Skins": {
		"mesh_set_name": "Hats",
		"mesh_set": ["Hat"],
		"set": [{"mat_ref": "Gold"}, {"name": "Shiny", "mat_ref": "Silver", "material_id": 4}, {"name": "broken"}, {"mat_ref": "Bronze"}]
	}}}`)
	set := c.Records[0].Payload.(*types.MaterialSetTrait)
	assert.Equal(t, "Hats", set.MeshSetName)
	assert.Equal(t, []types.ObjectRef{types.Ref("Hat")}, set.Meshes)
	assert.Equal(t, []types.MaterialSlot{
		{Name: "Gold", Material: types.MaterialRef{Name: "Gold"}, ID: 0},
		{Name: "Shiny", Material: types.MaterialRef{Name: "Silver"}, ID: 4},
		{Name: "Bronze", Material: types.MaterialRef{Name: "Bronze"}, ID: 5},
	}, set.Slots)
}

func TestDecodeContractDefaults(t *testing.T) {
	res := NewDecoder(WithLogger(testlog.Start(t))).Decode(types.Blob{
		types.ContractKey: map[string]any{"nftChain": "DOGE", "maxSupply": 7, "minterName": "Studio"},
	})
	require.NotNil(t, res.Contract)
	want := types.DefaultContract()
	want.MaxSupply = 7
	want.MinterName = "Studio"
	assert.Equal(t, want, *res.Contract)
	assert.False(t, res.Contract.Versioned)
}

func TestDecodeSkipsNonObjectContainers(t *testing.T) {
	res := NewDecoder(WithLogger(testlog.Start(t))).Decode(types.Blob{
		"broken": "text",
		"ok":     map[string]any{"collection_name": "Hats"},
	})
	require.Len(t, res.Containers, 1)
	assert.Equal(t, "ok", res.Containers[0].ID)
	assert.Same(t, res.Containers[0], res.Container("ok"))
	assert.Nil(t, res.Container("broken"))
}

func TestHydrate(t *testing.T) {
	s := scene.New()
	_, _ = s.AddObject("Hat", scene.KindMesh)
	_, _ = s.AddObject("Cap", scene.KindMesh)
	_ = s.SetHidden("Cap", true)
	s.AddAnimation(types.AnimationInfo{Name: "Walk", Target: "Rig", Start: 5, End: 25})

	c, _ := decodeOne(t, `{"meshSets": {"hats": ["Hat", "Cap", "Gone"]}, "animProps": [{"Walk": "Clamp"}, {"Run": "LoopOnce"}]}`)
	Hydrate(c, s)

	set := c.Records[0].Payload.(*types.MeshSetTrait)
	assert.True(t, set.Entries[0].Visible)
	assert.False(t, set.Entries[1].Visible)
	assert.True(t, set.Entries[2].Visible, "missing objects keep the default")

	walk := c.Records[1].Payload.(*types.AnimTrait)
	assert.Equal(t, types.Ref("Rig"), walk.Object)
	assert.Equal(t, 5.0, walk.Start)
	assert.Equal(t, 25.0, walk.End)
	assert.Equal(t, "REPLACE", walk.Blending)
	assert.Equal(t, types.WidgetSlider, walk.Widget())

	run := c.Records[2].Payload.(*types.AnimTrait)
	assert.True(t, run.Object.IsZero())
}
