package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/docstore"
	"github.com/hupe1980/docstore/blobstore"
	"github.com/hupe1980/docstore/codec"
	"golang.org/x/sync/errgroup"
)

// SnapshotSuffix is appended to a collection name to form its blob name.
const SnapshotSuffix = ".snap"

// ErrInvalidName is returned for empty collection names or names that
// cannot be used as blob names.
var ErrInvalidName = errors.New("invalid collection name")

// ManagerOptions configures the persistence manager.
type ManagerOptions struct {
	// Codec is used for new snapshots. Loading uses the codec recorded in
	// each frame.
	Codec codec.Codec

	// Compression is applied to new snapshots.
	Compression Compression

	// Concurrency bounds the parallel blob operations of SaveAll and LoadAll.
	Concurrency int

	// Logger receives save and load events.
	Logger *docstore.Logger
}

// Manager saves and loads collections as snapshot frames in a BlobStore.
//
// The Manager is safe for concurrent use; each collection is a single blob
// written atomically by the store.
type Manager struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	compression Compression
	concurrency int
	logger      *docstore.Logger
}

// NewManager creates a new persistence manager backed by store.
func NewManager(store blobstore.BlobStore, optFns ...func(*ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Codec:       codec.Default,
		Compression: NoCompression,
		Concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = docstore.NoopLogger()
	}
	return &Manager{
		store:       store,
		codec:       opts.Codec,
		compression: opts.Compression,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
}

// BlobName returns the blob name used for the named collection.
func BlobName(name string) string {
	return name + SnapshotSuffix
}

func validateName(name string) error {
	if name == "" || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save writes a snapshot of c, replacing any previous snapshot of the same name.
func (m *Manager) Save(ctx context.Context, c *docstore.Collection) error {
	if err := validateName(c.Name()); err != nil {
		return err
	}
	snap := c.Snapshot()
	data, err := Encode(snap, m.codec, m.compression)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, BlobName(snap.Name), data); err != nil {
		m.logger.Error("save failed", "collection", snap.Name, "error", err)
		return fmt.Errorf("persistence: save %q: %w", snap.Name, err)
	}
	m.logger.Debug("collection saved",
		"collection", snap.Name,
		"records", len(snap.Records),
		"bytes", len(data),
		"compression", m.compression.String(),
	)
	return nil
}

// Load reads the named snapshot and restores it. optFns are passed to
// docstore.Restore.
func (m *Manager) Load(ctx context.Context, name string, optFns ...docstore.Option) (*docstore.Collection, error) {
	snap, err := m.LoadSnapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	c, err := docstore.Restore(snap, optFns...)
	if err != nil {
		return nil, fmt.Errorf("persistence: restore %q: %w", name, err)
	}
	return c, nil
}

// LoadSnapshot reads and decodes the named snapshot without restoring it.
func (m *Manager) LoadSnapshot(ctx context.Context, name string) (*docstore.Snapshot, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := m.store.Get(ctx, BlobName(name))
	if err != nil {
		return nil, fmt.Errorf("persistence: load %q: %w", name, err)
	}
	snap, err := Decode(data)
	if err != nil {
		m.logger.Error("load failed", "collection", name, "error", err)
		return nil, err
	}
	if snap.Name == "" {
		snap.Name = name
	}
	m.logger.Debug("collection loaded", "collection", name, "records", len(snap.Records))
	return snap, nil
}

// Delete removes the named snapshot. Deleting a missing snapshot is not an error.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return m.store.Delete(ctx, BlobName(name))
}

// List returns the sorted names of all stored collections.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	blobs, err := m.store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(blobs))
	for _, b := range blobs {
		if name, ok := strings.CutSuffix(b, SnapshotSuffix); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// SaveAll saves the collections in parallel. The first error cancels the
// remaining writes; snapshots already written are kept.
func (m *Manager) SaveAll(ctx context.Context, cols ...*docstore.Collection) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, c := range cols {
		g.Go(func() error {
			return m.Save(gctx, c)
		})
	}
	return g.Wait()
}

// LoadAll loads the named collections in parallel, keyed by name. An empty
// names list loads every stored collection.
func (m *Manager) LoadAll(ctx context.Context, names []string, optFns ...docstore.Option) (map[string]*docstore.Collection, error) {
	if len(names) == 0 {
		var err error
		if names, err = m.List(ctx); err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	out := make(map[string]*docstore.Collection, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, name := range names {
		g.Go(func() error {
			c, err := m.Load(gctx, name, optFns...)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = c
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
