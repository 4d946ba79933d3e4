// Package schema provides the collection schema registry.
//
// The registry knows, for every importable collection, which table backs it
// and which of its attributes are relations (and what collection those
// relations target). It is the data source behind the reconcile engine's
// DescribeRelations calls.
//
// Schemas are declared in a JSON document, typically checked in next to the
// deployment configuration:
//
//	{
//	  "collections": [
//	    {
//	      "name": "articles",
//	      "table": "articles",
//	      "relations": [
//	        {"name": "author", "target": "users"},
//	        {"name": "tags", "target": "tags"},
//	        {"name": "createdBy", "target": "users"},
//	        {"name": "updatedBy", "target": "users"}
//	      ]
//	    }
//	  ]
//	}
//
// The registry is immutable after loading, so it is safe for the concurrent
// describe calls the engine issues while resolving one record's relations.
package schema
