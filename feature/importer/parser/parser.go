// Package parser normalizes raw CSV and JSON import documents into the
// common record shape the reconcile engine consumes.
//
// A parse failure is fatal to the whole batch: no records are handed to the
// engine and no report is produced.
package parser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"content-importer/core/reconcile"
	"content-importer/core/utils"
)

// Supported input formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ParseError wraps a failure to turn a raw document into records.
type ParseError struct {
	// Format is the input format being parsed.
	Format string

	// Err is the underlying decode error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse converts a raw document into an ordered record sequence.
func Parse(format string, data []byte) ([]reconcile.Record, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(data)
	case FormatJSON:
		return ParseJSON(data)
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("unsupported format")}
	}
}

// ParseJSON decodes a top-level array of objects into records.
func ParseJSON(data []byte) ([]reconcile.Record, error) {
	var records []reconcile.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	return records, nil
}

// ParseCSV decodes a comma-separated document with a header row into records.
// Cell values are inferred: numbers, booleans and the null literal become
// typed values, and cells holding embedded JSON objects/arrays (the CSV
// encoding of nested relation data) are decoded recursively. Empty cells
// leave the attribute absent.
func ParseCSV(data []byte) ([]reconcile.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: FormatCSV, Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Format: FormatCSV, Err: fmt.Errorf("empty document")}
	}

	headers := rows[0]
	records := make([]reconcile.Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		record := make(reconcile.Record, len(headers))
		for i, header := range headers {
			if i >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			record[header] = inferValue(cell)
		}
		records = append(records, record)
	}

	return records, nil
}

// inferValue parses a CSV cell into a typed value.
func inferValue(s string) any {
	// Embedded JSON: the CSV encoding of nested relation objects/arrays.
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return decoded
		}
	}

	if s == "null" {
		return nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	switch strings.ToLower(s) {
	case "true", "false":
		return utils.ToBool(s)
	}

	return s
}
