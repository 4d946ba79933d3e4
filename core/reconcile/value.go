package reconcile

// relationKind is the shape of a relation field's value, decided exactly once
// per field before any branching. Explicit Null and Absent kinds keep nil from
// ever reaching the nested-record path.
type relationKind int

const (
	// relAbsent: the record has no such key.
	relAbsent relationKind = iota
	// relNull: the key is present with an explicit nil ("no relation").
	relNull
	// relScalar: the value is already an identifier or other scalar.
	relScalar
	// relSingle: the value is one nested record.
	relSingle
	// relMany: the value is a sequence of nested records or identifiers.
	relMany
)

// classifyRelation inspects the value of one relation field and returns its
// kind plus a normalized value: relSingle yields a Record, relMany yields a
// []any regardless of the concrete slice type the decoder produced.
func classifyRelation(rec Record, name string) (relationKind, any) {
	value, ok := rec[name]
	if !ok {
		return relAbsent, nil
	}
	if value == nil {
		return relNull, nil
	}

	switch v := value.(type) {
	case Record:
		return relSingle, v
	case []any:
		return relMany, v
	case []Record:
		seq := make([]any, len(v))
		for i, elem := range v {
			seq[i] = elem
		}
		return relMany, seq
	default:
		return relScalar, value
	}
}

// TruthyID reports whether an id value identifies an existing row and should
// trigger the update path. nil, empty strings, numeric zero and false all
// count as absent; anything else is a usable identifier.
func TruthyID(v any) bool {
	switch id := v.(type) {
	case nil:
		return false
	case string:
		return id != ""
	case bool:
		return id
	case int:
		return id != 0
	case int32:
		return id != 0
	case int64:
		return id != 0
	case uint:
		return id != 0
	case uint32:
		return id != 0
	case uint64:
		return id != 0
	case float32:
		return id != 0
	case float64:
		return id != 0
	default:
		return true
	}
}
