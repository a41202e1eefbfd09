package types

import "github.com/flywave/go3d/float64/vec4"

// StagingCollection is where the host places newly created objects.
const StagingCollection = "Scene Collection"

// ShapeKey is one morph slider stored on a host object.
type ShapeKey struct {
	Name      string
	Value     float64
	SliderMin float64
	SliderMax float64
}

// MaterialInfo is the host's view of a material.
type MaterialInfo struct {
	Name      string
	Kind      MaterialKind
	BaseColor vec4.T
	Roughness float64
	Metalness float64
	Emissive  vec4.T
}

// AnimationInfo is the host's view of an animation track.
type AnimationInfo struct {
	Name     string
	Target   string // Object the track animates.
	Start    float64
	End      float64
	Blending string
}

// Collections is the collection half of the scene graph.
type Collections interface {
	HasCollection(name string) bool
	// CreateCollection is idempotent.
	CreateCollection(name string) error
	DeleteCollection(name string) error
	// CollectionObjects returns member object names in host order.
	CollectionObjects(name string) []string
	LinkObject(collection, object string) error
	UnlinkObject(collection, object string) error
	ObjectCollections(object string) []string
}

// Objects is the object half of the scene graph.
type Objects interface {
	HasObject(name string) bool
	// ObjectKind returns the host type of the object, such as "MESH".
	ObjectKind(name string) string
	ObjectID(name string) string
	SetObjectID(name, id string) error
	FindObjectByID(id string) (string, bool)
	Hidden(name string) bool
	SetHidden(name string, hidden bool) error
	ShapeKeys(name string) []ShapeKey
	SetShapeKey(object string, key ShapeKey) error
}

// Materials resolves host materials by name.
type Materials interface {
	Material(name string) (MaterialInfo, bool)
}

// Animations resolves host animation tracks by name.
type Animations interface {
	Animation(name string) (AnimationInfo, bool)
}

// Host is everything the editor, codec and linker need from the scene.
type Host interface {
	Collections
	Objects
	Materials
	Animations
}
