// Package datastore implements the reconcile.Gateway interface on top of the
// MySQL content database.
//
// Collections map to tables through the schema registry; payloads are plain
// attribute maps. Rows are keyed by a string "id" column: creates without a
// usable id get a fresh UUID, creates that carry one keep it (the store does
// not second-guess the caller). Relation values that are sequences or maps by
// the time they reach the store are persisted as JSON-encoded text columns.
//
// Update is upsert-friendly by contract: updating an id that matches no row
// returns (nil, nil) instead of an error, which is what lets the reconcile
// engine fall back to create.
package datastore
