package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"content-importer/core/reconcile"
)

// Collection describes one importable collection: the table that backs it and
// its relation attributes, in declaration order.
type Collection struct {
	// Name is the collection slug used by import requests.
	Name string `json:"name"`

	// Table is the database table backing the collection. Defaults to Name.
	Table string `json:"table"`

	// Relations lists the relation attributes of the collection, ordered.
	Relations []reconcile.RelationAttribute `json:"relations"`
}

// document is the on-disk shape of a schema file.
type document struct {
	Collections []Collection `json:"collections"`
}

// Registry holds the loaded collection schemas.
type Registry struct {
	collections map[string]Collection
}

// Parse builds a registry from a raw JSON schema document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}

	collections := make(map[string]Collection, len(doc.Collections))
	for _, col := range doc.Collections {
		if col.Name == "" {
			return nil, fmt.Errorf("schema document contains a collection without a name")
		}
		if _, exists := collections[col.Name]; exists {
			return nil, fmt.Errorf("duplicate collection %q in schema document", col.Name)
		}
		if col.Table == "" {
			col.Table = col.Name
		}
		for _, rel := range col.Relations {
			if rel.Name == "" || rel.Target == "" {
				return nil, fmt.Errorf("collection %q has a relation without name or target", col.Name)
			}
		}
		collections[col.Name] = col
	}

	return &Registry{collections: collections}, nil
}

// LoadFile reads and parses a schema document from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Collection returns the schema of a collection, or an error for an unknown
// slug.
func (r *Registry) Collection(name string) (Collection, error) {
	col, ok := r.collections[name]
	if !ok {
		return Collection{}, fmt.Errorf("unknown collection %q", name)
	}
	return col, nil
}

// Relations returns the ordered relation attributes of a collection.
func (r *Registry) Relations(name string) ([]reconcile.RelationAttribute, error) {
	col, err := r.Collection(name)
	if err != nil {
		return nil, err
	}
	return col.Relations, nil
}

// Names returns the names of all registered collections.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	return names
}
