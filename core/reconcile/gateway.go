package reconcile

import "context"

// Gateway is the persistence boundary the engine reads schema from and writes
// records through. core/datastore provides the GORM-backed implementation;
// tests use in-memory fakes.
//
// The gateway's own per-call atomicity is the only consistency guarantee the
// engine relies on. Describe calls and nested writes of a single record may
// run concurrently against the same gateway.
type Gateway interface {
	// DescribeRelations returns the ordered relation attributes of a
	// collection. Pure read; must reflect the live schema of the collection.
	DescribeRelations(ctx context.Context, collection string) ([]RelationAttribute, error)

	// Create inserts a new record and returns the stored row, which exposes
	// at least an "id". A (nil, nil) return means the gateway declined to
	// store the record; the engine then resolves the relation slot to an
	// explicit null instead of an identifier.
	Create(ctx context.Context, collection string, data Record) (Record, error)

	// Update modifies the row matching id and returns it. A (nil, nil) return
	// means no row matched; that is not an error.
	Update(ctx context.Context, collection string, id any, data Record) (Record, error)
}
