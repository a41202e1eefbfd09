package editor

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/internal/linker"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Import applies a decoded blob to the host. The objects in stream must
// already exist; they are reported to a fresh linker in creation order.
// Import then creates the target collections, links the requested objects
// out of staging, restores host-derived fields and morph bounds, and
// writes everything through to the Registry.
//
// Containers replace any existing container of the same collection, and
// the replaced container's Registry entry is deleted.
func (e *Editor) Import(res *codec.Result, stream []string) (linker.Report, error) {
	lk := linker.New(e.host, linker.WithLogger(e.log))
	if res == nil {
		res = &codec.Result{}
	}
	var errs []error

	if res.Contract != nil {
		if err := e.SetContract(*res.Contract); err != nil {
			errs = append(errs, err)
		}
	}

	var imported []*types.Container
	for i, c := range res.Containers {
		if c.Name == types.StagingCollection {
			e.log.Warn().Str("container", c.ID).Msg("container names the staging collection, skipping")
			continue
		}
		if err := e.host.CreateCollection(c.Name); err != nil {
			errs = append(errs, fmt.Errorf("creating collection %s: %w", c.Name, err))
			continue
		}
		if i < len(res.Requests) {
			lk.Expect(res.Requests[i].Objects...)
		}
		imported = append(imported, c)
	}

	for _, name := range stream {
		lk.Observe(name)
	}
	report, err := lk.Link(res.Requests)
	if err != nil {
		errs = append(errs, err)
	}
	if err := lk.Cleanup(); err != nil {
		errs = append(errs, err)
	}

	for _, c := range imported {
		codec.Hydrate(c, e.host)
		if err := e.pushMorphs(c); err != nil {
			errs = append(errs, err)
		}
		if old, ok := e.containers[c.Name]; ok && old.ID != "" && old.ID != c.ID {
			if err := e.reg.Delete(old.ID); err != nil {
				errs = append(errs, fmt.Errorf("deleting container %s: %w", old.ID, err))
			}
		}
		e.containers[c.Name] = c
		if err := e.commit(c); err != nil {
			errs = append(errs, err)
		}
	}

	e.log.Info().
		Str("pass", report.Pass).
		Int("containers", len(imported)).
		Int("linked", report.LinkedCount()).
		Int("unresolved", len(report.Unresolved)).
		Msg("import finished")
	return report, errors.Join(errs...)
}

// ImportBlob decodes ext and imports it.
func (e *Editor) ImportBlob(ext types.Blob, stream []string) (linker.Report, error) {
	return e.Import(e.dec.Decode(ext), stream)
}
