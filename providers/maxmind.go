package providers

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/9seconds/geolocations/geolib"
	"github.com/oschwald/maxminddb-golang"
	"github.com/spf13/afero"
)

const maxmindFileName = "database.mmdb"

// Resolver resolves hostnames into IP addresses. *net.Resolver conforms
// to it.
type Resolver interface {
	LookupIPAddr(context.Context, string) ([]net.IPAddr, error)
}

type maxmindReader interface {
	Lookup(net.IP, any) error
	Close() error
}

type maxmindNames struct {
	En string `maxminddb:"en"`
}

type maxmindRecord struct {
	City struct {
		Names maxmindNames `maxminddb:"names"`
	} `maxminddb:"city"`
	Continent struct {
		Code  string       `maxminddb:"code"`
		Names maxmindNames `maxminddb:"names"`
	} `maxminddb:"continent"`
	Country struct {
		IsoCode           string       `maxminddb:"iso_code"`
		IsInEuropeanUnion bool         `maxminddb:"is_in_european_union"`
		Names             maxmindNames `maxminddb:"names"`
	} `maxminddb:"country"`
	Location struct {
		Latitude  *float64 `maxminddb:"latitude"`
		Longitude *float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
	Postal struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"postal"`
	Subdivisions []struct {
		IsoCode string `maxminddb:"iso_code"`
	} `maxminddb:"subdivisions"`
}

func (m *maxmindRecord) toPayload() *geolib.CompactPayload {
	rv := &geolib.CompactPayload{
		ContinentCode:     maxmindString(m.Continent.Code),
		ContinentName:     maxmindString(m.Continent.Names.En),
		CountryCode:       maxmindString(m.Country.IsoCode),
		CountryName:       maxmindString(m.Country.Names.En),
		City:              maxmindString(m.City.Names.En),
		PostalCode:        maxmindString(m.Postal.Code),
		IsInEuropeanUnion: m.Country.IsInEuropeanUnion,
	}

	// ISO 3166-2 codes of some countries are longer than region column.
	if len(m.Subdivisions) > 0 && utf8.RuneCountInString(m.Subdivisions[0].IsoCode) <= geolib.MaxRegionCodeLength {
		rv.Region = maxmindString(m.Subdivisions[0].IsoCode)
	}

	if m.Location.Latitude != nil {
		rv.Latitude = geolib.Some(*m.Location.Latitude)
	}

	if m.Location.Longitude != nil {
		rv.Longitude = geolib.Some(*m.Location.Longitude)
	}

	return rv
}

func maxmindString(value string) geolib.Value[string] {
	if value == "" {
		return geolib.Value[string]{}
	}

	return geolib.Some(value)
}

// Maxmind is an offline provider which works with GeoLite2-City
// database from MaxMind.
//
//	Identifier: maxmind_lite
//	Provider type: offline
//	Website: https://maxmind.com
//
// Database is downloaded with a license key and has to be opened
// before the first lookup.
type Maxmind struct {
	dbReader     maxmindReader
	dbReaderLock sync.RWMutex

	resolver      Resolver
	httpClient    geolib.HTTPClient
	baseDirectory string
	licenseKey    string
	updateEvery   time.Duration
}

func (m *Maxmind) Name() string {
	return NameMaxmindLite
}

func (m *Maxmind) UpdateEvery() time.Duration {
	return m.updateEvery
}

func (m *Maxmind) BaseDirectory() string {
	return m.baseDirectory
}

func (m *Maxmind) Shutdown() {
	m.dbReaderLock.Lock()
	defer m.dbReaderLock.Unlock()

	if m.dbReader != nil {
		m.dbReader.Close() // nolint: errcheck
		m.dbReader = nil
	}
}

// Open replaces a current database reader with a new one. Lookups
// which are in progress finish with an old reader.
func (m *Maxmind) Open(fs *afero.BasePathFs) error {
	filepath, err := fs.RealPath(maxmindFileName)
	if err != nil {
		return fmt.Errorf("cannot resolve a file name of the database: %w", err)
	}

	reader, err := maxminddb.Open(filepath)
	if err != nil {
		return fmt.Errorf("cannot initialize a reader of maxminddb: %w", err)
	}

	m.setReader(reader)

	return nil
}

func (m *Maxmind) setReader(reader maxmindReader) {
	m.dbReaderLock.Lock()
	defer m.dbReaderLock.Unlock()

	if m.dbReader != nil {
		m.dbReader.Close() // nolint: errcheck
	}

	m.dbReader = reader
}

func (m *Maxmind) LookupIP(ctx context.Context, ip net.IP) (*geolib.CompactPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.dbReaderLock.RLock()
	defer m.dbReaderLock.RUnlock()

	if m.dbReader == nil {
		return nil, ErrDatabaseIsNotReadyYet
	}

	record := maxmindRecord{}

	if err := m.dbReader.Lookup(ip, &record); err != nil {
		return nil, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	if record.Continent.Code == "" && record.Country.IsoCode == "" {
		return nil, geolib.ErrAddressNotFound
	}

	return record.toPayload(), nil
}

// LookupHost resolves a hostname and looks up its first address.
func (m *Maxmind) LookupHost(ctx context.Context, host string) (*geolib.CompactPayload, error) {
	addrs, err := m.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", host, err)
	}

	if len(addrs) == 0 {
		return nil, ErrNoAddresses
	}

	return m.LookupIP(ctx, addrs[0].IP)
}

// NewMaxmindLite returns a new instance which works with lite
// databases from MaxMind. licenseKey is required only to download
// databases. If resolver is nil, net.DefaultResolver is used.
func NewMaxmindLite(httpClient geolib.HTTPClient,
	resolver Resolver,
	updateEvery time.Duration,
	baseDirectory string,
	licenseKey string) *Maxmind {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	return &Maxmind{
		resolver:      resolver,
		httpClient:    httpClient,
		updateEvery:   updateEvery,
		baseDirectory: baseDirectory,
		licenseKey:    licenseKey,
	}
}
