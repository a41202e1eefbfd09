// Package editor is the per-session metadata context. It owns the
// containers of one asset, applies every trait operation against the host
// and writes each changed container through to the Registry.
//
// An Editor is not safe for concurrent use.
package editor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// ErrInvalidValue is returned for enum values outside their domain.
var ErrInvalidValue = errors.New("invalid value")

// Editor holds the session state: host, registry, contract and the
// containers keyed by collection name.
type Editor struct {
	host       types.Host
	reg        types.Registry
	exp        *codec.Exporter
	dec        *codec.Decoder
	log        zerolog.Logger
	newID      func() string
	contract   types.Contract
	containers map[string]*types.Container
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithIDGenerator replaces the identifier source for containers and
// member objects.
func WithIDGenerator(gen func() string) Option {
	return func(e *Editor) { e.newID = gen }
}

// New returns an Editor over host that writes through to reg.
func New(host types.Host, reg types.Registry, opts ...Option) *Editor {
	e := &Editor{
		host:       host,
		reg:        reg,
		log:        logging.For("editor"),
		contract:   types.DefaultContract(),
		containers: make(map[string]*types.Container),
	}
	for _, opt := range opts {
		opt(e)
	}
	codecOpts := []codec.Option{codec.WithLogger(e.log)}
	if e.newID != nil {
		codecOpts = append(codecOpts, codec.WithIDGenerator(e.newID))
	}
	e.exp = codec.NewExporter(host, reg, codecOpts...)
	e.dec = codec.NewDecoder(codecOpts...)
	return e
}

// Host returns the scene the editor works on.
func (e *Editor) Host() types.Host {
	return e.host
}

// Decoder returns the decoder used by Import callers.
func (e *Editor) Decoder() *codec.Decoder {
	return e.dec
}

// Container returns the container of collection, creating it on first use.
// The staging collection never carries metadata.
func (e *Editor) Container(collection string) (*types.Container, error) {
	if collection == types.StagingCollection {
		return nil, types.ErrStagingCollection
	}
	if c, ok := e.containers[collection]; ok {
		return c, nil
	}
	if !e.host.HasCollection(collection) {
		return nil, fmt.Errorf("%w: %q", types.ErrCollectionNotFound, collection)
	}
	c := types.NewContainer(collection)
	e.containers[collection] = c
	e.log.Debug().Str("collection", collection).Msg("container created")
	return c, nil
}

// Lookup returns the container of collection without creating one.
func (e *Editor) Lookup(collection string) (*types.Container, bool) {
	c, ok := e.containers[collection]
	return c, ok
}

// Containers returns every container ordered by collection name.
func (e *Editor) Containers() []*types.Container {
	names := make([]string, 0, len(e.containers))
	for name := range e.containers {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]*types.Container, 0, len(names))
	for _, name := range names {
		out = append(out, e.containers[name])
	}
	return out
}

// CreateCollection creates a host collection and moves the named objects
// into it out of staging. Objects the host does not know are returned.
func (e *Editor) CreateCollection(name string, objects ...string) ([]string, error) {
	if strings.TrimSpace(name) == "" || name == types.StagingCollection {
		return nil, fmt.Errorf("%w: %q", types.ErrStagingCollection, name)
	}
	if err := e.host.CreateCollection(name); err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	var missing []string
	for _, obj := range objects {
		if !e.host.HasObject(obj) {
			missing = append(missing, obj)
			continue
		}
		if err := e.host.LinkObject(name, obj); err != nil {
			return missing, fmt.Errorf("linking %s: %w", obj, err)
		}
		if slices.Contains(e.host.ObjectCollections(obj), types.StagingCollection) {
			if err := e.host.UnlinkObject(types.StagingCollection, obj); err != nil {
				return missing, fmt.Errorf("unstaging %s: %w", obj, err)
			}
		}
	}
	if len(missing) > 0 {
		e.log.Warn().Str("collection", name).Strs("missing", missing).Msg("objects not found")
	}
	if c, ok := e.containers[name]; ok {
		return missing, e.commit(c)
	}
	return missing, nil
}

// DeleteCollection removes the host collection, its container and the
// container's Registry entry.
func (e *Editor) DeleteCollection(collection string) error {
	if err := e.host.DeleteCollection(collection); err != nil {
		return err
	}
	c, ok := e.containers[collection]
	if !ok {
		return nil
	}
	delete(e.containers, collection)
	if c.ID == "" {
		return nil
	}
	if err := e.reg.Delete(c.ID); err != nil {
		return fmt.Errorf("deleting container %s: %w", c.ID, err)
	}
	return nil
}

// SetContract replaces the asset contract and stores it.
func (e *Editor) SetContract(k types.Contract) error {
	e.contract = k
	_, err := e.exp.ExportContract(k)
	return err
}

// Contract returns the asset contract.
func (e *Editor) Contract() types.Contract {
	return e.contract
}

// ExportAll writes the contract and every container to the Registry.
func (e *Editor) ExportAll() error {
	var errs []error
	if _, err := e.exp.ExportContract(e.contract); err != nil {
		errs = append(errs, err)
	}
	for _, c := range e.Containers() {
		if err := e.commit(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot exports everything and returns the Registry contents, ready to
// embed in an interchange file.
func (e *Editor) Snapshot() (map[string]types.Blob, error) {
	if err := e.ExportAll(); err != nil {
		return nil, err
	}
	return e.reg.Snapshot()
}

// commit writes c through to the Registry.
func (e *Editor) commit(c *types.Container) error {
	_, err := e.exp.ExportContainer(c)
	return err
}

// duplicate logs and returns the duplicate-add diagnostic.
func (e *Editor) duplicate(c *types.Container, t types.TraitType, name string) error {
	e.log.Warn().Str("collection", c.Name).Stringer("type", t).Str("trait", name).Msg("trait already present, not added")
	return fmt.Errorf("%w: %s %q in %s", types.ErrDuplicateTrait, t, name, c.Name)
}
