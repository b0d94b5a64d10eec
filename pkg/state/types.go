package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted snapshot: a domain (which environment or
// subsystem the snapshot belongs to) and the object key within it. An empty
// Key refers to the domain's aggregate snapshot.
type Ref struct {
	Domain string
	Key    string
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Archiver checkpoints snapshots into a Store and applies guarded mutations.
type Archiver[T any] struct {
	Store Store[T]
}

type Mutator[T any] func(*T) error

// Identifier returns the canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("state: ref requires a domain")
	}
	if r.Key == "" {
		return fmt.Sprintf("%s/_aggregate", r.Domain), nil
	}
	return fmt.Sprintf("%s/%s", r.Domain, r.Key), nil
}

// Checkpoint persists snapshot under ref, stamping a fresh snapshot ID and
// ETag. The previous ETag, when supplied in meta, must match the stored one.
func (a Archiver[T]) Checkpoint(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	if a.Store == nil {
		return Meta{}, fmt.Errorf("state: store is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return Meta{}, err
	}

	_, loadedMeta, ok, err := a.Store.Load(ctx, ref)
	if err != nil {
		return Meta{}, fmt.Errorf("state: load %q/%q: %w", ref.Domain, ref.Key, err)
	}
	if ok && meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = uuid.NewString()
	saveMeta.ETag = uuid.NewString()
	saveMeta.UpdatedAt = time.Now()
	return a.Store.Save(ctx, ref, snapshot, saveMeta)
}

// Load resolves the snapshot stored under ref.
func (a Archiver[T]) Load(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	if a.Store == nil {
		return zero, Meta{}, false, fmt.Errorf("state: store is required")
	}
	return a.Store.Load(ctx, ref)
}

// Mutate loads one snapshot, applies fn, then checkpoints the result. A
// missing snapshot starts fn from the zero value. When meta carries an ETag it
// must match the stored one or the mutation is rejected.
func (a Archiver[T]) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if a.Store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return zero, Meta{}, err
	}

	snapshot, loadedMeta, ok, err := a.Store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %q/%q: %w", ref.Domain, ref.Key, err)
	}
	if !ok {
		snapshot = zero
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&snapshot); err != nil {
		return zero, loadedMeta, err
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = uuid.NewString()
	saveMeta.ETag = uuid.NewString()
	saveMeta.UpdatedAt = time.Now()
	savedMeta, err := a.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %q/%q: %w", ref.Domain, ref.Key, err)
	}
	return snapshot, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
