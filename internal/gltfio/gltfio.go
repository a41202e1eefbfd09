// Package gltfio reads glTF assets into an in-memory scene and writes the
// metadata blob back into the document's HVYM_nft_data extension.
package gltfio

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/internal/scene"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// VisibilityExtension carries the hidden flag of a node.
const VisibilityExtension = "KHR_node_visibility"

func init() {
	gltf.RegisterExtension(codec.ExtensionName, func(data []byte) (any, error) {
		var v map[string]any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", codec.ExtensionName, err)
		}
		return v, nil
	})
}

// Asset is a loaded glTF document and the scene built from it. Node i of
// the document is the object named CreationStream()[i].
type Asset struct {
	doc   *gltf.Document
	scene *scene.Scene
	nodes []string
	log   zerolog.Logger
}

// Option configures an Asset.
type Option func(*Asset)

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Asset) { a.log = l }
}

// Load opens a .gltf or .glb file.
func Load(path string, opts ...Option) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return FromDocument(doc, opts...)
}

// FromDocument builds the scene for doc. Every node becomes an object in
// the staging collection, in document order.
func FromDocument(doc *gltf.Document, opts ...Option) (*Asset, error) {
	a := &Asset{doc: doc, scene: scene.New(), log: logging.For("gltfio")}
	for _, opt := range opts {
		opt(a)
	}
	var meshes []meshJSON
	if err := reencode(doc.Meshes, &meshes); err != nil {
		return nil, fmt.Errorf("reading meshes: %w", err)
	}
	for i, node := range doc.Nodes {
		if err := a.addNode(i, node, meshes); err != nil {
			return nil, err
		}
	}
	if err := a.addMaterials(); err != nil {
		return nil, err
	}
	if err := a.addAnimations(); err != nil {
		return nil, err
	}
	a.log.Debug().
		Int("nodes", len(a.nodes)).
		Int("materials", len(a.scene.Materials())).
		Int("animations", len(a.scene.Animations())).
		Msg("asset loaded")
	return a, nil
}

func (a *Asset) addNode(i int, node *gltf.Node, meshes []meshJSON) error {
	var n nodeJSON
	if err := reencode(node, &n); err != nil {
		return fmt.Errorf("reading node %d: %w", i, err)
	}
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("Node.%d", i)
	}
	name = a.scene.UniqueName(name)

	kind := scene.KindEmpty
	switch {
	case n.Mesh != nil:
		kind = scene.KindMesh
	case n.Camera != nil:
		kind = scene.KindCamera
	}
	obj, err := a.scene.AddObject(name, kind)
	if err != nil {
		return err
	}
	a.nodes = append(a.nodes, name)

	if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(meshes) {
		m := meshes[*n.Mesh]
		weights := m.Weights
		if len(n.Weights) > 0 {
			weights = n.Weights
		}
		for k, target := range m.Extras.TargetNames {
			key := types.ShapeKey{Name: target, SliderMin: 0, SliderMax: 1}
			if k < len(weights) {
				key.Value = weights[k]
			}
			obj.ShapeKeys = append(obj.ShapeKeys, key)
		}
	}

	var meta struct {
		ID string `json:"id"`
	}
	if ok, err := extension(node.Extensions, codec.ExtensionName, &meta); err != nil {
		a.log.Debug().Err(err).Str("node", name).Msg("ignoring node metadata")
	} else if ok {
		obj.ID = meta.ID
	}
	var vis struct {
		Visible *bool `json:"visible"`
	}
	if ok, err := extension(node.Extensions, VisibilityExtension, &vis); err == nil && ok && vis.Visible != nil {
		obj.Hidden = !*vis.Visible
	}
	return nil
}

func (a *Asset) addMaterials() error {
	var mats []materialJSON
	if err := reencode(a.doc.Materials, &mats); err != nil {
		return fmt.Errorf("reading materials: %w", err)
	}
	for i, m := range mats {
		info := types.MaterialInfo{
			Name:      m.Name,
			Kind:      types.MaterialStandard,
			BaseColor: [4]float64{1, 1, 1, 1},
			Roughness: 1,
			Metalness: 1,
		}
		if info.Name == "" {
			info.Name = fmt.Sprintf("Material.%d", i)
		}
		if pbr := m.PBR; pbr != nil {
			info.Kind = types.MaterialPBR
			if pbr.BaseColorFactor != nil {
				info.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				info.Metalness = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				info.Roughness = *pbr.RoughnessFactor
			}
		}
		if e := m.EmissiveFactor; e != nil {
			info.Emissive = [4]float64{e[0], e[1], e[2], 1}
		}
		a.scene.AddMaterial(info)
	}
	return nil
}

func (a *Asset) addAnimations() error {
	var anims []animationJSON
	if err := reencode(a.doc.Animations, &anims); err != nil {
		return fmt.Errorf("reading animations: %w", err)
	}
	var accessors []accessorJSON
	if err := reencode(a.doc.Accessors, &accessors); err != nil {
		return fmt.Errorf("reading accessors: %w", err)
	}
	for i, anim := range anims {
		info := types.AnimationInfo{Name: anim.Name, Blending: "REPLACE"}
		if info.Name == "" {
			info.Name = fmt.Sprintf("Animation.%d", i)
		}
		for _, ch := range anim.Channels {
			if ch.Target.Node != nil && *ch.Target.Node >= 0 && *ch.Target.Node < len(a.nodes) {
				info.Target = a.nodes[*ch.Target.Node]
				break
			}
		}
		first := true
		for _, s := range anim.Samplers {
			if s.Input < 0 || s.Input >= len(accessors) {
				continue
			}
			acc := accessors[s.Input]
			if len(acc.Min) == 0 || len(acc.Max) == 0 {
				continue
			}
			if first || acc.Min[0] < info.Start {
				info.Start = acc.Min[0]
			}
			if first || acc.Max[0] > info.End {
				info.End = acc.Max[0]
			}
			first = false
		}
		a.scene.AddAnimation(info)
	}
	return nil
}

// Scene returns the scene built from the document.
func (a *Asset) Scene() *scene.Scene {
	return a.scene
}

// Document returns the underlying glTF document.
func (a *Asset) Document() *gltf.Document {
	return a.doc
}

// CreationStream returns object names in node order.
func (a *Asset) CreationStream() []string {
	return slices.Clone(a.nodes)
}

// Extension returns the metadata blob stored in the document, or nil when
// the document carries none.
func (a *Asset) Extension() (types.Blob, error) {
	var blob types.Blob
	ok, err := extension(a.doc.Extensions, codec.ExtensionName, &blob)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return blob, nil
}

// Embed stores snapshot as the document's metadata blob and writes object
// identifiers and visibility back into the nodes.
func (a *Asset) Embed(snapshot map[string]types.Blob) error {
	ext := types.Blob{}
	carried := map[string]string{}
	for key, blob := range snapshot {
		ext[key] = blob
		names := stringsOf(blob[codec.KeyNodes])
		ids := stringsOf(blob[codec.KeyNodeIDs])
		for i, n := range names {
			if i < len(ids) && ids[i] != "" {
				carried[n] = ids[i]
			}
		}
	}
	if a.doc.Extensions == nil {
		a.doc.Extensions = gltf.Extensions{}
	}
	a.doc.Extensions[codec.ExtensionName] = ext
	a.use(codec.ExtensionName)

	for i, node := range a.doc.Nodes {
		if i >= len(a.nodes) {
			break
		}
		name := a.nodes[i]
		if node.Extensions == nil {
			node.Extensions = gltf.Extensions{}
		}
		id := a.scene.ObjectID(name)
		if id == "" {
			id = carried[name]
		}
		if id != "" {
			node.Extensions[codec.ExtensionName] = map[string]any{"id": id}
		}
		if a.scene.Hidden(name) {
			node.Extensions[VisibilityExtension] = map[string]any{"visible": false}
			a.use(VisibilityExtension)
		} else {
			delete(node.Extensions, VisibilityExtension)
		}
		if len(node.Extensions) == 0 {
			node.Extensions = nil
		}
	}
	a.log.Debug().Int("entries", len(ext)).Msg("metadata embedded")
	return nil
}

func (a *Asset) use(name string) {
	if !slices.Contains(a.doc.ExtensionsUsed, name) {
		a.doc.ExtensionsUsed = append(a.doc.ExtensionsUsed, name)
	}
}

// Save writes the document. A .glb suffix selects the binary container.
func (a *Asset) Save(path string) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(a.doc, path)
	} else {
		err = gltf.Save(a.doc, path)
	}
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
