// Package codec converts trait containers and the asset contract to and
// from the blob stored in the HVYM_nft_data extension.
//
// Export never fails on bad field values: a value that does not survive a
// JSON encode is dropped with a debug event and the rest of the record is
// still written. Import never fails on bad records either; malformed
// sub-structures are skipped one at a time.
package codec

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// ExtensionName is the glTF extension that carries the blob.
const ExtensionName = "HVYM_nft_data"

// Container blob keys.
const (
	KeyCollectionType = "collectionType"
	KeyCollectionName = "collection_name"
	KeyValProps       = "valProps"
	KeyMeshProps      = "meshProps"
	KeyMeshSets       = "meshSets"
	KeyMorphProps     = "morphProps"
	KeyAnimProps      = "animProps"
	KeyMaterials      = "materials"
	KeyMaterialSets   = "materialSets"
	KeyMenuData       = "menu_data"
	KeyNodes          = "nodes"
	KeyNodeIDs        = "node_ids"
	KeyTraits         = "traits"
)

// sectionKeys maps each trait type to the container key holding it.
var sectionKeys = map[types.TraitType]string{
	types.TraitProperty:    KeyValProps,
	types.TraitMesh:        KeyMeshProps,
	types.TraitMeshSet:     KeyMeshSets,
	types.TraitMorphSet:    KeyMorphProps,
	types.TraitAnim:        KeyAnimProps,
	types.TraitMaterial:    KeyMaterials,
	types.TraitMaterialSet: KeyMaterialSets,
}

// SectionKey returns the container key under which records of type t are
// written.
func SectionKey(t types.TraitType) string {
	return sectionKeys[t]
}

// ErrNoRegistry is returned by the Export methods of an Exporter built
// without a Registry.
var ErrNoRegistry = errors.New("codec: no registry")

// Option configures an Exporter or Decoder.
type Option func(*options)

type options struct {
	log   zerolog.Logger
	newID func() string
}

func defaultOptions() options {
	return options{
		log:   logging.For("codec"),
		newID: func() string { return types.NewID(types.DefaultIDLength) },
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithIDGenerator replaces the identifier source used for containers and
// member objects.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
