// Package store contains relational implementations of geolib.Store.
//
// There are 2 backends: SQLite (modernc.org/sqlite, no cgo) which is
// good for a single instance and tests, and PostgreSQL with PostGIS
// which keeps coordinates as geometry points.
//
// Both backends use the same relational layout: languages, locations,
// a many-to-many table between them and geolocations which reference
// a location with ON DELETE SET NULL.
package store
