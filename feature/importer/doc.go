// Package importer exposes batch record imports as an application feature.
//
// It glues three collaborators together: the parser (raw CSV/JSON bytes to
// records), the reconcile engine (recursive upsert of each record and its
// nested relations), and the HTTP/CLI surfaces that accept import requests.
//
// A batch import never fails as a whole once parsing succeeded: individual
// record failures are collected into the report while the remaining records
// continue. Parse failures are fatal and produce no report.
package importer
