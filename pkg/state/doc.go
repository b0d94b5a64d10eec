// Package state defines persistence-facing contracts for checkpointing and
// reloading environment snapshots, plus a small archiver that stamps
// snapshot IDs and guards concurrent writers with ETags.
//
// Responsibilities:
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - Archiver[T] wraps a Store with snapshot-ID stamping, ETag checks and
//     guarded read-modify-write mutations.
//   - The core env package remains persistence-agnostic; all persistence
//     logic stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Environment.Snapshot() -> Archiver.Checkpoint -> Store
//
// Deterministic keys:
//
//	Ref.Identifier() provides a canonical storage key of the form
//	domain/key, with domain/_aggregate reserved for whole-environment
//	snapshots.
package state
