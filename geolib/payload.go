package geolib

import (
	"bytes"
	"encoding/json"
)

// Shape tells which upstream provider has produced a payload.
type Shape int

const (
	ShapeRich Shape = iota + 1
	ShapeCompact
)

func (s Shape) String() string {
	switch s {
	case ShapeRich:
		return "rich"
	case ShapeCompact:
		return "compact"
	}

	return "unknown"
}

// Payload is a closed set of upstream response shapes: *RichPayload or
// *CompactPayload.
type Payload interface {
	Shape() Shape

	sealed()
}

// RichPayload is a response of the online IP geolocation API.
type RichPayload struct {
	IP            Value[string]       `json:"ip"`
	Type          Value[string]       `json:"type"`
	ContinentCode Value[string]       `json:"continent_code"`
	ContinentName Value[string]       `json:"continent_name"`
	CountryCode   Value[string]       `json:"country_code"`
	CountryName   Value[string]       `json:"country_name"`
	RegionCode    Value[string]       `json:"region_code"`
	RegionName    Value[string]       `json:"region_name"`
	City          Value[string]       `json:"city"`
	Zip           Value[string]       `json:"zip"`
	Latitude      Value[float64]      `json:"latitude"`
	Longitude     Value[float64]      `json:"longitude"`
	Location      Value[RichLocation] `json:"location"`
}

func (r *RichPayload) Shape() Shape {
	return ShapeRich
}

func (r *RichPayload) sealed() {}

type RichLocation struct {
	GeonameID Value[int64]   `json:"geoname_id"`
	Capital   Value[string]  `json:"capital"`
	Languages []RichLanguage `json:"languages"`
	IsEU      Value[bool]    `json:"is_eu"`
}

type RichLanguage struct {
	Code   Value[string] `json:"code"`
	Name   Value[string] `json:"name"`
	Native Value[string] `json:"native"`
}

// RichFailure is a structured failure which online API may return
// instead of a payload.
type RichFailure struct {
	Success json.RawMessage `json:"success"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// Failed checks if the response has an explicit failure flag. API is
// known to send both false and "false".
func (r *RichFailure) Failed() bool {
	success := bytes.TrimSpace(r.Success)

	switch {
	case bytes.Equal(success, []byte("false")), bytes.Equal(success, []byte(`"false"`)):
		return true
	case len(success) == 0 && r.Error.Code != 0:
		return true
	}

	return false
}

// CompactPayload is a record of the offline geolocation database.
type CompactPayload struct {
	ContinentCode     Value[string]  `json:"continent_code"`
	ContinentName     Value[string]  `json:"continent_name"`
	CountryCode       Value[string]  `json:"country_code"`
	CountryName       Value[string]  `json:"country_name"`
	City              Value[string]  `json:"city"`
	Region            Value[string]  `json:"region"`
	PostalCode        Value[string]  `json:"postal_code"`
	Latitude          Value[float64] `json:"latitude"`
	Longitude         Value[float64] `json:"longitude"`
	IsInEuropeanUnion bool           `json:"is_in_european_union"`
}

func (c *CompactPayload) Shape() Shape {
	return ShapeCompact
}

func (c *CompactPayload) sealed() {}

// ParsePayload decodes a request body into a payload. A body with a
// truthy is_in_european_union flag is compact, anything else is rich.
func ParsePayload(data []byte) (Payload, error) {
	flag := struct {
		IsInEuropeanUnion json.RawMessage `json:"is_in_european_union"`
	}{}

	if err := json.Unmarshal(data, &flag); err != nil {
		return nil, err
	}

	if bytes.Equal(bytes.TrimSpace(flag.IsInEuropeanUnion), []byte("true")) {
		rv := &CompactPayload{}

		return rv, json.Unmarshal(data, rv)
	}

	rv := &RichPayload{}

	return rv, json.Unmarshal(data, rv)
}
