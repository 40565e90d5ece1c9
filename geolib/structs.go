package geolib

import (
	"encoding/json"
	"net"
	"time"
)

// IPType is a classification of the IP address stored with a
// geolocation.
type IPType string

const (
	IPTypeV4          IPType = "ipv4"
	IPTypeV6          IPType = "ipv6"
	IPTypeNotProvided IPType = ""
)

// ClassifyIP returns a type of the given IP address.
//
// IPv4-mapped IPv6 addresses (::ffff:1.2.3.4) are ipv4: net.IP keeps
// them in the same form as plain IPv4 and renders them as 1.2.3.4, so
// stored address and its type always agree.
func ClassifyIP(ip net.IP) IPType {
	switch {
	case ip == nil:
		return IPTypeNotProvided
	case ip.To4() != nil:
		return IPTypeV4
	case ip.To16() != nil:
		return IPTypeV6
	}

	return IPTypeNotProvided
}

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Language struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Native    string    `json:"native"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Location struct {
	ID        int64      `json:"id"`
	GeonameID *int64     `json:"geoname_id"`
	Capital   string     `json:"capital"`
	IsEU      bool       `json:"is_eu"`
	Languages []Language `json:"languages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GeoLocation is a persisted geolocation record. Location is populated
// only if LocationID is not nil.
type GeoLocation struct {
	ID            int64       `json:"id"`
	IP            net.IP      `json:"ip"`
	IPType        IPType      `json:"ip_type"`
	ContinentCode string      `json:"continent_code"`
	ContinentName string      `json:"continent_name"`
	CountryCode   string      `json:"country_code"`
	CountryName   string      `json:"country_name"`
	RegionCode    string      `json:"region_code"`
	RegionName    string      `json:"region_name"`
	City          string      `json:"city"`
	PostalCode    string      `json:"postal_code"`
	Coordinates   Coordinates `json:"coordinates"`
	IsEU          bool        `json:"is_eu"`
	LocationID    *int64      `json:"-"`
	Location      *Location   `json:"location"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// MarshalJSON renders nil IP as null instead of an empty string.
func (g GeoLocation) MarshalJSON() ([]byte, error) {
	type alias GeoLocation

	var ip *string

	if g.IP != nil {
		str := g.IP.String()
		ip = &str
	}

	return json.Marshal(struct {
		alias
		IP *string `json:"ip"`
	}{
		alias: alias(g),
		IP:    ip,
	})
}

// LanguageDraft is a language which is not persisted yet.
type LanguageDraft struct {
	Code   string
	Name   string
	Native string
}

// LocationDraft is a location which is going to be created together
// with a geolocation.
type LocationDraft struct {
	GeonameID *int64
	Capital   string
	IsEU      bool
	Languages []LanguageDraft
}

// LocationChanges is a set of location fields sent by a caller. Absent
// values keep stored ones on update and take defaults on create.
// LanguageIDs replaces the whole set of languages.
type LocationChanges struct {
	GeonameID   Value[int64]   `json:"geoname_id"`
	Capital     Value[string]  `json:"capital"`
	IsEU        Value[bool]    `json:"is_eu"`
	LanguageIDs Value[[]int64] `json:"languages"`
}

// Apply writes present changes into a location.
func (l *LocationChanges) Apply(location *Location) {
	switch {
	case l.GeonameID.Null:
		location.GeonameID = nil
	case l.GeonameID.Present:
		geonameID := l.GeonameID.V
		location.GeonameID = &geonameID
	}

	if l.Capital.Valid() {
		location.Capital = l.Capital.V
	}

	if l.IsEU.Valid() {
		location.IsEU = l.IsEU.V
	}
}

// Record is a canonical, validated geolocation ready for persistence.
// Location is nil if geolocation should not reference any location.
type Record struct {
	IP            net.IP
	IPType        IPType
	ContinentCode string
	ContinentName string
	CountryCode   string
	CountryName   string
	RegionCode    string
	RegionName    string
	City          string
	PostalCode    string
	Coordinates   Coordinates
	IsEU          bool
	Location      *LocationDraft
}
