package geolib

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// HTTPClient is an interface of the HTTP client which is used by
// providers. *http.Client conforms to it.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// RichProvider is an online API which returns rich payloads for IP
// addresses.
type RichProvider interface {
	Name() string
	Lookup(context.Context, net.IP) (*RichPayload, error)
}

// OfflineProvider is a local database which returns compact payloads.
// It can resolve both IP addresses and hostnames.
type OfflineProvider interface {
	Name() string
	LookupIP(context.Context, net.IP) (*CompactPayload, error)
	LookupHost(context.Context, string) (*CompactPayload, error)
}

// UpdatableProvider is a provider which keeps its database on a
// filesystem and refreshes it periodically.
//
// Download gets a filesystem rooted at an empty directory and has to
// populate it. Open gets a filesystem rooted at a directory which was
// populated by Download before.
type UpdatableProvider interface {
	Name() string
	UpdateEvery() time.Duration
	BaseDirectory() string
	Open(*afero.BasePathFs) error
	Download(context.Context, afero.Fs) error
	Shutdown()
}

// Store persists geolocations, locations and languages.
//
// CreateGeoLocation has to be atomic: either location, its languages
// and geolocation are all created or nothing is. UpdateGeoLocation
// has the same guarantee; a nil Location of the record keeps the
// stored one untouched.
type Store interface {
	EnsureSchema(context.Context) error
	Close() error

	CreateGeoLocation(context.Context, *Record) (*GeoLocation, error)
	GetGeoLocation(context.Context, int64) (*GeoLocation, error)
	ListGeoLocations(context.Context) ([]GeoLocation, error)
	UpdateGeoLocation(context.Context, int64, *Record) (*GeoLocation, error)
	DeleteGeoLocation(context.Context, int64) error

	CreateLocation(context.Context, *LocationChanges) (*Location, error)
	GetLocation(context.Context, int64) (*Location, error)
	ListLocations(context.Context) ([]Location, error)
	UpdateLocation(context.Context, int64, *LocationChanges) (*Location, error)
	DeleteLocation(context.Context, int64) error

	CreateLanguage(context.Context, LanguageDraft) (*Language, error)
	GetLanguage(context.Context, int64) (*Language, error)
	ListLanguages(context.Context) ([]Language, error)
	UpdateLanguage(context.Context, int64, LanguageDraft) (*Language, error)
	DeleteLanguage(context.Context, int64) error
}

// Logger defines a set of methods which are used to track events
// which happen during ingestion.
type Logger interface {
	LookupError(key, provider string, err error)
	IngestInfo(key string, shape Shape, id int64)
	IngestError(key string, err error)
	UpdateInfo(provider, msg string)
	UpdateError(provider string, err error)
}
