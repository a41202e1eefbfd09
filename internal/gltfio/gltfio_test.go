package gltfio

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/flywave/go3d/float64/vec4"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/internal/editor"
	"github.com/mesh-intelligence/nftmeta/internal/memory"
	"github.com/mesh-intelligence/nftmeta/internal/scene"
	"github.com/mesh-intelligence/nftmeta/internal/testutil/testlog"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

const sampleDoc = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0, 1, 2, 3]}],
  "nodes": [
    {"name": "Hat", "mesh": 0, "extensions": {"HVYM_nft_data": {"id": "hat00001"}}},
    {"name": "Cap", "mesh": 1, "extensions": {"KHR_node_visibility": {"visible": false}}},
    {"name": "Hat", "mesh": 1},
    {"camera": 0}
  ],
  "meshes": [
    {"name": "HatMesh", "primitives": [{"attributes": {}}], "weights": [0.25, 0.5], "extras": {"targetNames": ["Smile", "Frown"]}},
    {"name": "CapMesh", "primitives": [{"attributes": {}}]}
  ],
  "cameras": [{"type": "perspective", "perspective": {"yfov": 0.8, "znear": 0.1}}],
  "materials": [
    {"name": "Gold", "pbrMetallicRoughness": {"baseColorFactor": [1, 0.5, 0, 1], "metallicFactor": 1, "roughnessFactor": 0.25}},
    {"name": "Cloth"}
  ],
  "accessors": [
    {"componentType": 5126, "count": 2, "type": "SCALAR", "min": [0.5], "max": [2]}
  ],
  "animations": [
    {"name": "Walk", "channels": [{"sampler": 0, "target": {"node": 0, "path": "rotation"}}], "samplers": [{"input": 0, "output": 0}]}
  ]
}`

func sample(t *testing.T) *Asset {
	t.Helper()
	var doc gltf.Document
	require.NoError(t, json.Unmarshal([]byte(sampleDoc), &doc))
	a, err := FromDocument(&doc, WithLogger(testlog.Start(t)))
	require.NoError(t, err)
	return a
}

func TestFromDocument(t *testing.T) {
	a := sample(t)
	s := a.Scene()

	assert.Equal(t, []string{"Hat", "Cap", "Hat.001", "Node.3"}, a.CreationStream())
	assert.Equal(t, a.CreationStream(), s.CollectionObjects(types.StagingCollection))
	assert.Equal(t, scene.KindMesh, s.ObjectKind("Hat"))
	assert.Equal(t, scene.KindCamera, s.ObjectKind("Node.3"))
	assert.Equal(t, "hat00001", s.ObjectID("Hat"))
	assert.True(t, s.Hidden("Cap"))
	assert.False(t, s.Hidden("Hat"))

	assert.Equal(t, []types.ShapeKey{
		{Name: "Smile", Value: 0.25, SliderMax: 1},
		{Name: "Frown", Value: 0.5, SliderMax: 1},
	}, s.ShapeKeys("Hat"))
	assert.Empty(t, s.ShapeKeys("Cap"))

	gold, ok := s.Material("Gold")
	require.True(t, ok)
	assert.Equal(t, types.MaterialPBR, gold.Kind)
	assert.Equal(t, vec4.T{1, 0.5, 0, 1}, gold.BaseColor)
	assert.Equal(t, 0.25, gold.Roughness)
	cloth, ok := s.Material("Cloth")
	require.True(t, ok)
	assert.Equal(t, types.MaterialStandard, cloth.Kind)

	walk, ok := s.Animation("Walk")
	require.True(t, ok)
	assert.Equal(t, types.AnimationInfo{Name: "Walk", Target: "Hat", Start: 0.5, End: 2, Blending: "REPLACE"}, walk)

	ext, err := a.Extension()
	require.NoError(t, err)
	assert.Nil(t, ext)
}

func TestEmbedSaveLoad(t *testing.T) {
	for _, name := range []string{"asset.gltf", "asset.glb"} {
		t.Run(name, func(t *testing.T) {
			log := testlog.Start(t)
			a := sample(t)
			reg := memory.NewBackend()
			require.NoError(t, reg.Attach(types.Config{Backend: types.BackendMemory}))
			defer reg.Detach()

			ed := editor.New(a.Scene(), reg, editor.WithLogger(log))
			_, err := ed.CreateCollection("Hats", "Hat", "Cap")
			require.NoError(t, err)
			_, err = ed.AddMesh("Hats", "Cap")
			require.NoError(t, err)
			_, err = ed.AddMorphSet("Hats", "Hat")
			require.NoError(t, err)
			_, err = ed.AddAnim("Hats", "Walk", types.LoopRepeat)
			require.NoError(t, err)
			snap, err := ed.Snapshot()
			require.NoError(t, err)

			require.NoError(t, a.Embed(snap))
			assert.Contains(t, a.Document().ExtensionsUsed, codec.ExtensionName)
			assert.Contains(t, a.Document().ExtensionsUsed, VisibilityExtension)

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, a.Save(path))

			loaded, err := Load(path, WithLogger(log))
			require.NoError(t, err)
			ls := loaded.Scene()
			assert.Equal(t, "hat00001", ls.ObjectID("Hat"))
			assert.Equal(t, a.Scene().ObjectID("Cap"), ls.ObjectID("Cap"))
			assert.NotEmpty(t, ls.ObjectID("Cap"))
			assert.True(t, ls.Hidden("Cap"))

			ext, err := loaded.Extension()
			require.NoError(t, err)
			require.NotNil(t, ext)
			c, _ := ed.Lookup("Hats")
			assert.Contains(t, ext, c.ID)
			assert.Contains(t, ext, types.ContractKey)

			ed2 := editor.New(ls, memory.NewBackend(), editor.WithLogger(log))
			res := ed2.Decoder().Decode(ext)
			require.Len(t, res.Containers, 1)
			assert.Equal(t, c.Types(), res.Containers[0].Types())
		})
	}
}

func TestImportFromLoadedAsset(t *testing.T) {
	log := testlog.Start(t)
	a := sample(t)
	ext := types.Blob{
		"c1": map[string]any{
			"collection_name": "Hats",
			"meshProps":       map[string]any{"Cap": map[string]any{"name": "Cap", "visible": false}},
			"nodes":           []any{"Hat", "Cap"},
			"node_ids":        []any{"hat00001", ""},
		},
	}
	reg := memory.NewBackend()
	require.NoError(t, reg.Attach(types.Config{Backend: types.BackendMemory}))
	defer reg.Detach()

	ed := editor.New(a.Scene(), reg, editor.WithLogger(log))
	report, err := ed.ImportBlob(ext, a.CreationStream())
	require.NoError(t, err)

	s := a.Scene()
	assert.Equal(t, []string{"Hat", "Cap"}, s.CollectionObjects("Hats"))
	assert.Equal(t, []string{"Hat.001", "Node.3"}, s.CollectionObjects(types.StagingCollection))
	assert.ElementsMatch(t, []string{"Hat.001", "Node.3"}, report.Unlinked)
}

func TestEmbedCarriesSnapshotIDs(t *testing.T) {
	a := sample(t)
	snap := map[string]types.Blob{
		"c1": {codec.KeyNodes: []any{"Hat.001"}, codec.KeyNodeIDs: []any{"fromsnap"}},
	}
	require.NoError(t, a.Embed(snap))
	meta, ok := a.Document().Nodes[2].Extensions[codec.ExtensionName].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "fromsnap", meta["id"])
	_, ok = a.Document().Nodes[3].Extensions[codec.ExtensionName]
	assert.False(t, ok)
}
