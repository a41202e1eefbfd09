// Package linker places objects created during an import into the
// collections the decoded blob asks for.
//
// An import pass has two phases. While the host creates objects the caller
// reports each one with Observe. Once every object exists, Link applies the
// decoded link requests and Cleanup removes linked objects from the
// staging collection. A Linker serves exactly one pass.
package linker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// State is the progress of one object through an import pass.
type State int

// Object states.
const (
	Pending  State = iota // Requested but never created.
	Created               // Created by the host, still in staging.
	Linked                // Moved into its target collection.
	Unlinked              // Created but named by no request.
)

var stateNames = [...]string{"pending", "created", "linked", "unlinked"}

func (s State) String() string {
	if s < Pending || s > Unlinked {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Errors returned by the pass methods.
var (
	ErrNotLinked     = errors.New("linker: cleanup before link")
	ErrAlreadyLinked = errors.New("linker: link already ran for this pass")
)

// Unresolved is a requested object that could not be found.
type Unresolved struct {
	Collection string
	Object     string
	ID         string
}

// Duplicate is a request for an object already linked earlier in the pass.
type Duplicate struct {
	Collection string // The collection that was not linked.
	Object     string
	LinkedTo   string // The collection that won.
}

// Report summarizes a pass.
type Report struct {
	Pass       string
	Linked     map[string][]string // Collection to linked object names.
	Unlinked   []string
	Unresolved []Unresolved
	Duplicates []Duplicate
}

// LinkedCount returns the number of linked objects.
func (r Report) LinkedCount() int {
	n := 0
	for _, objs := range r.Linked {
		n += len(objs)
	}
	return n
}

// Linker tracks object states for one import pass.
type Linker struct {
	host     types.Host
	log      zerolog.Logger
	pass     string
	states   map[string]State
	order    []string
	linkedTo map[string]string
	report   Report
	linked   bool
	cleaned  bool
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(lk *Linker) { lk.log = l }
}

// New returns a Linker over host with a fresh pass identifier.
func New(host types.Host, opts ...Option) *Linker {
	lk := &Linker{
		host:     host,
		log:      logging.For("linker"),
		pass:     newPassID(),
		states:   make(map[string]State),
		linkedTo: make(map[string]string),
	}
	for _, opt := range opts {
		opt(lk)
	}
	lk.log = lk.log.With().Str("pass", lk.pass).Logger()
	lk.report = Report{Pass: lk.pass, Linked: make(map[string][]string)}
	return lk
}

func newPassID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Pass returns the pass identifier.
func (lk *Linker) Pass() string {
	return lk.pass
}

// Expect marks names as requested but not yet created. Observing a name
// later moves it to Created.
func (lk *Linker) Expect(names ...string) {
	for _, name := range names {
		if _, ok := lk.states[name]; !ok {
			lk.track(name, Pending)
		}
	}
}

// Observe records that the host created the named object.
func (lk *Linker) Observe(name string) {
	if name == "" {
		return
	}
	if st, ok := lk.states[name]; ok && st != Pending {
		return
	}
	lk.track(name, Created)
}

func (lk *Linker) track(name string, st State) {
	if _, ok := lk.states[name]; !ok {
		lk.order = append(lk.order, name)
	}
	lk.states[name] = st
}

// State returns the state of the named object and whether the pass knows
// about it.
func (lk *Linker) State(name string) (State, bool) {
	st, ok := lk.states[name]
	return st, ok
}

// Link applies every request. Each object is linked at most once per pass;
// later requests for the same object are recorded as duplicates. Created
// objects no request names end Unlinked. Link runs once.
func (lk *Linker) Link(reqs []codec.LinkRequest) (Report, error) {
	if lk.linked {
		return lk.Report(), ErrAlreadyLinked
	}
	lk.linked = true

	for _, req := range reqs {
		if req.Collection == types.StagingCollection {
			lk.log.Warn().Str("container", req.ContainerID).Msg("request targets the staging collection, skipping")
			continue
		}
		if !lk.host.HasCollection(req.Collection) {
			lk.log.Warn().Str("collection", req.Collection).Msg("target collection missing, skipping request")
			for i, name := range req.Objects {
				lk.report.Unresolved = append(lk.report.Unresolved, Unresolved{req.Collection, name, idAt(req.ObjectIDs, i)})
			}
			continue
		}
		for i, name := range req.Objects {
			lk.linkOne(req.Collection, name, idAt(req.ObjectIDs, i))
		}
	}

	for _, name := range lk.order {
		if lk.states[name] == Created {
			lk.states[name] = Unlinked
			lk.report.Unlinked = append(lk.report.Unlinked, name)
		}
	}
	lk.log.Debug().
		Int("linked", lk.report.LinkedCount()).
		Int("unlinked", len(lk.report.Unlinked)).
		Int("unresolved", len(lk.report.Unresolved)).
		Msg("link phase done")
	return lk.Report(), nil
}

func (lk *Linker) linkOne(collection, name, id string) {
	object, ok := lk.resolve(name, id)
	if !ok {
		lk.log.Debug().Str("object", name).Str("id", id).Msg("unresolved link request")
		lk.report.Unresolved = append(lk.report.Unresolved, Unresolved{collection, name, id})
		if _, known := lk.states[name]; !known {
			lk.track(name, Pending)
		}
		return
	}
	if prev, done := lk.linkedTo[object]; done {
		if prev != collection {
			lk.report.Duplicates = append(lk.report.Duplicates, Duplicate{collection, object, prev})
		}
		return
	}
	if err := lk.host.LinkObject(collection, object); err != nil {
		lk.log.Warn().Err(err).Str("object", object).Str("collection", collection).Msg("link failed")
		lk.report.Unresolved = append(lk.report.Unresolved, Unresolved{collection, name, id})
		return
	}
	lk.linkedTo[object] = collection
	lk.track(object, Linked)
	lk.report.Linked[collection] = append(lk.report.Linked[collection], object)
}

// resolve prefers an observed object with the requested name, then an
// observed object carrying the requested identifier.
func (lk *Linker) resolve(name, id string) (string, bool) {
	if lk.observed(name) {
		return name, true
	}
	if id != "" {
		if object, ok := lk.host.FindObjectByID(id); ok && lk.observed(object) {
			return object, true
		}
	}
	return "", false
}

func (lk *Linker) observed(name string) bool {
	st, ok := lk.states[name]
	return ok && st != Pending && lk.host.HasObject(name)
}

// Cleanup removes every linked object from the staging collection. It must
// follow Link and runs once; later calls are no-ops.
func (lk *Linker) Cleanup() error {
	if !lk.linked {
		return ErrNotLinked
	}
	if lk.cleaned {
		return nil
	}
	lk.cleaned = true
	var errs []error
	for _, name := range lk.order {
		if lk.states[name] != Linked {
			continue
		}
		if !slices.Contains(lk.host.ObjectCollections(name), types.StagingCollection) {
			continue
		}
		if err := lk.host.UnlinkObject(types.StagingCollection, name); err != nil {
			errs = append(errs, fmt.Errorf("unstaging %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Report returns a copy of the pass summary.
func (lk *Linker) Report() Report {
	out := Report{
		Pass:       lk.report.Pass,
		Linked:     make(map[string][]string, len(lk.report.Linked)),
		Unlinked:   slices.Clone(lk.report.Unlinked),
		Unresolved: slices.Clone(lk.report.Unresolved),
		Duplicates: slices.Clone(lk.report.Duplicates),
	}
	for k, v := range lk.report.Linked {
		out.Linked[k] = slices.Clone(v)
	}
	return out
}

func idAt(ids []string, i int) string {
	if i < len(ids) {
		return ids[i]
	}
	return ""
}
