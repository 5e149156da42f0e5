// Package library holds the aggregate store: the keyed collection of every known game,
// the per-platform accounts and the persisted view preferences.
//
// # Store
//
// The Store upserts games by identifier and replaces records wholesale. It tracks a
// revision counter for dirty detection, so Save only performs I/O when something changed
// (or when forced) and never clears changes made while a write was in flight.
//
// Batch scopes suppress per-update notifications during bulk merges:
//
//	batch := store.BeginBatch()
//	for _, g := range games {
//	    store.AddOrUpdate(g)
//	}
//	batch.End() // exactly one notification if anything changed
//
// # Persistence
//
// The library is stored as one JSON document (see Document). FilePersister writes it
// atomically through a temporary file. Loading never fails: a missing, empty or corrupt
// document yields an empty library, and a document older than MinSupportedVersion keeps its
// accounts and preferences but drops its games so the next scan rebuilds them.
package library
