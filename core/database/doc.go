// Package database handles database connections and table inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to
// properly configure MySQL connections based on the application's
// configuration.
//
// # Connect
//
// The Connect function establishes a connection to the content database with
// sane pool settings and DSN-level timeouts.
//
// # Table Inspection
//
// The package includes tools to inspect the physical schema. VerifyTables
// checks that every table the collection registry points at actually exists,
// so a misconfigured schema document surfaces at startup instead of on the
// first import.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.VerifyTables(db, registryTables)
package database
