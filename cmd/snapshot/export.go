package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/snapshot"
	"portal-content/internal/repository"
)

// exporter reads every kind and all banners from live storage and turns
// them into a snapshot dataset.
type exporter struct {
	entities  repository.EntityRepository
	ownership repository.OwnershipRepository
	banners   repository.BannerRepository
	version   string
	now       func() time.Time
}

// Build reads all kinds concurrently. Any failure aborts the whole export
// so a partial dataset never replaces a complete one.
func (e *exporter) Build(ctx context.Context) (snapshot.Dataset, error) {
	kinds := entity.Kinds()
	perKind := make([][]entity.Entity, len(kinds))
	var banners []entity.Banner

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			items, err := e.entities.ListAll(gctx, kind)
			if err != nil {
				return fmt.Errorf("list %s: %w", kind, err)
			}
			ids := make([]string, len(items))
			for j := range items {
				ids[j] = items[j].ID
			}
			owners, err := e.ownership.PortalsOfMany(gctx, kind, ids)
			if err != nil {
				return fmt.Errorf("ownership %s: %w", kind, err)
			}
			for j := range items {
				items[j].Portals = owners[items[j].ID]
			}
			perKind[i] = items
			return nil
		})
	}
	g.Go(func() error {
		list, err := e.banners.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("list banners: %w", err)
		}
		banners = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot.Dataset{}, err
	}

	now := time.Now
	if e.now != nil {
		now = e.now
	}
	generated := now().UTC()
	ds := snapshot.Dataset{
		Version:     e.version + "-" + generated.Format("20060102T150405Z"),
		GeneratedAt: generated,
		Entities:    make(map[entity.Kind][]entity.Entity, len(kinds)),
		Banners:     banners,
	}
	for i, kind := range kinds {
		ds.Entities[kind] = perKind[i]
	}
	return ds, nil
}

// writeAtomic encodes ds next to path and renames it into place, so readers
// never observe a half-written file.
func writeAtomic(path string, ds snapshot.Dataset) error {
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, ds); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
