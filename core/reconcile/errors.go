package reconcile

import "fmt"

// ReconcileError wraps a failure occurring anywhere inside one top-level
// record's relation resolution or its own store write. It is always attributed
// to the collection of the record that triggered it; nested failures surface
// as a single ReconcileError around the root cause.
type ReconcileError struct {
	// Collection is the import target of the failing top-level record.
	Collection string

	// Err is the root cause (a gateway error, a nested resolution failure...).
	Err error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile %s: %v", e.Collection, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}
