// Package mdb provides record ingestion into Mongo from Go.
//
// The Access struct contains the current Mongo client and a registry of Database handles.
// It is returned from the Connect() function which also pings the server.
// Visible variables can be used to change default configuration and timeouts.
// The Access object provides a Disconnect() method suitable for use with defer.
//
// Database and Collection handles are provisioned lazily by name
// and cached for the life of the Access object,
// so asking for the same name twice returns the same handle.
// CreateCollection() takes an optional list of "finisher" functions
// intended to create indices or otherwise configure the collection
// the first time it is provisioned.
//
// Records to be written are passed as the Records type,
// constructed by One() for a single document or Many() for a sequence.
// Untyped payloads (e.g. decoded JSON) can be converted with RecordsOf(),
// which returns ErrTypeMismatch for anything that is not a mapping
// or a sequence of mappings.
// InsertRecord() provisions any missing handles and then writes the records.
// BulkInsert() does the same for an entire CSV or Excel file using package mdbtab.
//
// The AccessTestSuite struct is provided to wrap database connect/disconnect
// for use in tests that actually hit the database.
// The use of '//go:build database' separates these so that they are only run
// when using 'go test -tags database', without this tag only unit tests are run.
package mdb
