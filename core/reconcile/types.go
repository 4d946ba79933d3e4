package reconcile

// Record is a single importable datum: a mapping from attribute name to value.
// Values are scalars, nil, a nested Record (single relation) or a sequence of
// nested records (multi relation). A truthy "id" value identifies an existing
// stored row.
type Record = map[string]any

// IDField is the attribute that carries a record's stored identifier.
const IDField = "id"

// Reserved relation attribute names. Their value is always the importing
// actor's identifier; user-supplied values for them are discarded, never
// trusted.
const (
	AttrCreatedBy = "createdBy"
	AttrUpdatedBy = "updatedBy"
)

// RelationAttribute describes one relation field of a collection: the
// attribute key and the collection its related records live in. Cardinality
// is not part of the schema; it is inferred per record from whether the
// field's value is a sequence.
type RelationAttribute struct {
	// Name is the attribute key on the record.
	Name string `json:"name"`

	// Target is the collection the related records belong to.
	Target string `json:"target"`
}

// IsAudit reports whether this attribute is one of the reserved audit
// relations.
func (r RelationAttribute) IsAudit() bool {
	return r.Name == AttrCreatedBy || r.Name == AttrUpdatedBy
}

// Actor identifies who is performing the import. Its ID is attributed to the
// createdBy/updatedBy audit relations of every reconciled record.
type Actor struct {
	ID any `json:"id"`
}

// CloneRecord returns a deep copy of a record. Nested maps and sequences are
// copied recursively; scalars are shared. The coordinator clones every input
// before reconciliation so a captured failure always carries the original,
// pre-mutation row.
func CloneRecord(rec Record) Record {
	if rec == nil {
		return nil
	}
	return cloneValue(rec).(Record)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Record:
		out := make(Record, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case []Record:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}
