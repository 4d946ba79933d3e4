// Package reconcile contains the recursive upsert engine that imports
// externally-sourced records into the content store.
//
// Given one record and a target collection, the engine resolves every relation
// field first: nested relation objects and arrays are reconciled (created or
// updated) against their target collections, and the resulting identifiers are
// stitched back into the parent payload before the parent itself is upserted.
//
// # Components
//
//   - Engine.Reconcile: reconciles a single record, depth-first over its
//     relation graph. Relation fields of one record resolve concurrently.
//   - Engine.ImportBatch: iterates a parsed record sequence strictly in input
//     order, isolating each record's failure so one bad row never aborts its
//     siblings, and aggregates the failures into a Report.
//   - Gateway: the persistence boundary (schema introspection plus the
//     create/update primitives). Implemented by core/datastore; tests supply
//     in-memory fakes.
//
// # Consistency
//
// There is no batch-level transaction. Nested related records that were
// created before a later failure of the same top-level record stay committed;
// the whole record is still reported as failed. Callers that import the same
// collection concurrently must serialize those imports themselves.
package reconcile
