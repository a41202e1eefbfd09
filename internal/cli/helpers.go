package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/nftmeta/internal/editor"
	"github.com/mesh-intelligence/nftmeta/internal/gltfio"
	"github.com/mesh-intelligence/nftmeta/internal/linker"
	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/pkg/store"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// session is an attached registry plus a loaded asset and an editor over
// the asset's scene. After stage the editor writes to work instead of reg.
type session struct {
	reg   types.Registry
	work  types.Registry
	cfg   types.Config
	asset *gltfio.Asset
	ed    *editor.Editor
}

// openSession attaches the registry and loads the asset at path. The
// caller must close the session.
func (a *app) openSession(path string) (*session, error) {
	reg, cfg, err := a.openRegistry()
	if err != nil {
		return nil, err
	}
	asset, err := gltfio.Load(path, gltfio.WithLogger(logging.For("gltfio")))
	if err != nil {
		_ = reg.Detach()
		return nil, userError("load asset: %w", err)
	}
	ed := editor.New(asset.Scene(), reg, editor.WithIDGenerator(cfg.IDGen()))
	return &session{reg: reg, cfg: cfg, asset: asset, ed: ed}, nil
}

func (s *session) close() {
	if s.work != nil {
		_ = s.work.Detach()
	}
	_ = s.reg.Detach()
}

// stage points the editor at an empty in-memory registry. The attached
// registry is left untouched until commit.
func (s *session) stage() error {
	work, err := store.Open(types.Config{Backend: types.BackendMemory})
	if err != nil {
		return sysError("scratch registry: %w", err)
	}
	s.work = work
	s.ed = editor.New(s.asset.Scene(), work, editor.WithIDGenerator(s.cfg.IDGen()))
	return nil
}

// commit replaces the attached registry's contents with the staged ones.
func (s *session) commit() error {
	if s.work == nil {
		return nil
	}
	snap, err := s.work.Snapshot()
	if err != nil {
		return sysError("read staged metadata: %w", err)
	}
	if err := clearRegistry(s.reg); err != nil {
		return sysError("clear registry: %w", err)
	}
	for k, blob := range snap {
		if err := s.reg.Put(k, blob); err != nil {
			return sysError("store %s: %w", k, err)
		}
	}
	return nil
}

// importEmbedded imports the metadata already stored in the asset. An
// asset without metadata yields an empty report and ok false.
func (s *session) importEmbedded() (linker.Report, bool, error) {
	ext, err := s.asset.Extension()
	if err != nil {
		return linker.Report{}, false, userError("read embedded metadata: %w", err)
	}
	if len(ext) == 0 {
		return linker.Report{}, false, nil
	}
	report, err := s.ed.ImportBlob(ext, s.asset.CreationStream())
	if err != nil {
		return report, true, sysError("import: %w", err)
	}
	return report, true, nil
}

// save embeds the editor's snapshot into the asset and writes it to path.
func (s *session) save(path string) error {
	snap, err := s.ed.Snapshot()
	if err != nil {
		return sysError("export: %w", err)
	}
	if err := s.asset.Embed(snap); err != nil {
		return sysError("embed: %w", err)
	}
	if err := s.asset.Save(path); err != nil {
		return sysError("%w", err)
	}
	return nil
}

// clearRegistry deletes every stored entry.
func clearRegistry(reg types.Registry) error {
	keys, err := reg.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := reg.Delete(k); err != nil {
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}
	return nil
}

// registryBlob returns the registry contents as one extension blob.
func registryBlob(reg types.Registry) (types.Blob, error) {
	snap, err := reg.Snapshot()
	if err != nil {
		return nil, err
	}
	out := make(types.Blob, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError("marshal JSON: %w", err)
	}
	return nil
}

// linkSummary is the JSON form of a linker report.
type linkSummary struct {
	Pass       string              `json:"pass"`
	Containers int                 `json:"containers"`
	Linked     map[string][]string `json:"linked"`
	Unlinked   []string            `json:"unlinked"`
	Unresolved []unresolvedJSON    `json:"unresolved"`
	Duplicates []duplicateJSON     `json:"duplicates"`
}

type unresolvedJSON struct {
	Collection string `json:"collection"`
	Object     string `json:"object"`
	ID         string `json:"id,omitempty"`
}

type duplicateJSON struct {
	Collection string `json:"collection"`
	Object     string `json:"object"`
	LinkedTo   string `json:"linked_to"`
}

func summarize(r linker.Report, containers int) linkSummary {
	s := linkSummary{
		Pass:       r.Pass,
		Containers: containers,
		Linked:     r.Linked,
		Unlinked:   r.Unlinked,
		Unresolved: []unresolvedJSON{},
		Duplicates: []duplicateJSON{},
	}
	if s.Linked == nil {
		s.Linked = map[string][]string{}
	}
	if s.Unlinked == nil {
		s.Unlinked = []string{}
	}
	for _, u := range r.Unresolved {
		s.Unresolved = append(s.Unresolved, unresolvedJSON{Collection: u.Collection, Object: u.Object, ID: u.ID})
	}
	for _, d := range r.Duplicates {
		s.Duplicates = append(s.Duplicates, duplicateJSON{Collection: d.Collection, Object: d.Object, LinkedTo: d.LinkedTo})
	}
	return s
}

// printReport writes the human-readable form of a link summary.
func printReport(w io.Writer, s linkSummary) {
	linked := 0
	for _, objs := range s.Linked {
		linked += len(objs)
	}
	fmt.Fprintf(w, "pass %s: %d collections, %d objects linked\n", s.Pass, s.Containers, linked)
	for _, u := range s.Unresolved {
		if u.ID != "" {
			fmt.Fprintf(w, "  unresolved: %s/%s (id %s)\n", u.Collection, u.Object, u.ID)
		} else {
			fmt.Fprintf(w, "  unresolved: %s/%s\n", u.Collection, u.Object)
		}
	}
	for _, d := range s.Duplicates {
		fmt.Fprintf(w, "  duplicate: %s/%s already linked to %s\n", d.Collection, d.Object, d.LinkedTo)
	}
}
