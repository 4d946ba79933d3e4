package reconcile

import (
	"context"

	"go.uber.org/zap"
)

// BatchOptions configures one batch import.
type BatchOptions struct {
	// Collection is the import target for every top-level record.
	Collection string

	// Actor is attributed to the audit relations of every reconciled record.
	Actor Actor
}

// Outcome is the result of one top-level reconciliation attempt: either a
// stored record or an error paired with the original input. Explicit outcomes
// (instead of unwinding) are what lets the coordinator partition results
// without any catch-like machinery.
type Outcome struct {
	// Stored is the persisted record; nil when Err is set.
	Stored Record

	// Err is the reconciliation failure, if any.
	Err error

	// Input is a deep copy of the record taken before any mutation.
	Input Record
}

// Failure pairs a reconciliation error with the original, pre-mutation input
// record, so the caller can correct and re-submit the row.
type Failure struct {
	// Err is the ReconcileError captured for this record.
	Err error

	// Data is the original input record, never a partially-resolved version.
	Data Record
}

// Report aggregates the failures of one batch import, in input order.
// Successes are not retained; callers derive the success count as
// len(input) - len(Failures).
type Report struct {
	Failures []Failure
}

// ImportBatch reconciles records strictly in input order, one at a time.
// Each record runs inside an isolating boundary: a failure is captured into
// the report and never aborts sibling records. Partial writes committed by a
// failing record before its error are not rolled back.
func (e *Engine) ImportBatch(ctx context.Context, records []Record, opts BatchOptions) *Report {
	report := &Report{Failures: make([]Failure, 0)}

	for i, record := range records {
		outcome := e.attempt(ctx, opts.Actor, opts.Collection, record)
		if outcome.Err != nil {
			e.logger.Warn("record import failed",
				zap.String("collection", opts.Collection),
				zap.Int("index", i),
				zap.Error(outcome.Err),
			)
			report.Failures = append(report.Failures, Failure{Err: outcome.Err, Data: outcome.Input})
		}
	}

	return report
}

// attempt wraps one reconciliation in an explicit Outcome, snapshotting the
// input before the engine mutates it.
func (e *Engine) attempt(ctx context.Context, actor Actor, collection string, record Record) Outcome {
	original := CloneRecord(record)
	stored, err := e.Reconcile(ctx, actor, collection, record)
	return Outcome{Stored: stored, Err: err, Input: original}
}
