// This package provides a set of structs and functions which are used
// to ingest geolocation records for given IP addresses or hostnames.
//
// geolib is core of the geolocations project. The rest of the
// application is wiring: how to read configuration, how to build
// providers, how to pick a store.
//
// Ingester is a main entity of the geolib. It accepts a lookup key,
// asks exactly one upstream provider (rich online API first for IP
// addresses with a single fallback to an offline database), normalizes
// a response into a Record and persists it with a Store.
//
// Providers return one of two payload shapes: RichPayload or
// CompactPayload. Normalize is a pure function which converts any of
// them into a canonical Record or returns ValidationError with all
// offending fields.
package geolib
