package datastore

import "fmt"

// StoreError wraps a database failure (constraint violation, connectivity
// loss) for a specific operation against a collection.
type StoreError struct {
	// Op is the failing operation: "create", "update" or "select".
	Op string

	// Collection is the collection slug the operation targeted.
	Collection string

	// Err is the underlying driver error.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
