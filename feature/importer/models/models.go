// Package models contains the request and response shapes of the importer
// feature.
package models

import (
	"encoding/json"

	"content-importer/core/reconcile"
)

// ImportRequest is the HTTP body of an import call.
type ImportRequest struct {
	// Collection is the slug of the target collection.
	Collection string `json:"collection"`

	// Format is the input format: "csv" or "json".
	Format string `json:"format"`

	// Data is the raw input document. For JSON imports this is the record
	// array itself; for CSV it is the file content as a JSON string.
	Data json.RawMessage `json:"data"`

	// ActorID identifies the importing user, attributed to the
	// createdBy/updatedBy audit fields of every imported record.
	ActorID any `json:"actorId"`
}

// ImportFailure describes one input row that could not be reconciled.
type ImportFailure struct {
	// Error is the failure message for this row.
	Error string `json:"error"`

	// Data is the original input row, before any mutation, so the caller can
	// correct and re-submit it.
	Data reconcile.Record `json:"data"`
}

// ImportReport summarizes a batch import. Only failures are listed;
// successfully imported rows are implied by omission.
type ImportReport struct {
	// Total is the number of parsed input rows.
	Total int `json:"total"`

	// Failed is the number of rows that could not be reconciled.
	Failed int `json:"failed"`

	// Failures lists the failed rows in input order.
	Failures []ImportFailure `json:"failures"`
}

// NewImportReport converts an engine report into the response shape.
func NewImportReport(total int, report *reconcile.Report) *ImportReport {
	failures := make([]ImportFailure, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, ImportFailure{
			Error: f.Err.Error(),
			Data:  f.Data,
		})
	}
	return &ImportReport{
		Total:    total,
		Failed:   len(failures),
		Failures: failures,
	}
}
