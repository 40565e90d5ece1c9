// Geolocations is a service which collects geolocation records for IP
// addresses and hostnames and keeps them in a relational database.
//
// An IP address is resolved with an online API (ipstack) first. If it
// fails for any reason, an offline MaxMind GeoLite2 database is asked
// once. Hostnames are resolved and looked up in the offline database
// only. Every successful lookup becomes a new record.
//
// The service is organized into 3 parts:
//
// Geolib
//
// geolib contains domain logic: normalization and validation of
// provider payloads, ingestion, HTTP API, HTTP client with rate
// limiting and circuit breaker and an updater of offline databases.
//
// Providers
//
// Implementations of rich (ipstack) and offline (MaxMind) providers.
//
// Store
//
// SQLite and PostgreSQL (PostGIS) implementations of geolib.Store.
//
// A main package wires everything together, reads HJSON config and
// secrets from environment and starts HTTP server.
package main
