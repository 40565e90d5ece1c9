package geolib

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Limits of the canonical schema. They are shared by both payload
// shapes.
const (
	MaxContinentCodeLength = 2
	MaxContinentNameLength = 13
	MaxCountryCodeLength   = 2
	MaxCountryNameLength   = 56
	MaxRegionCodeLength    = 2
	MaxRegionNameLength    = 85
	MaxCityLength          = 163
	MaxPostalCodeLength    = 12
	MaxCapitalLength       = 163
	MaxLanguageCodeLength  = 2
	MaxLanguageNameLength  = 25

	latitudeMaxDigits      = 15
	latitudeDecimalPlaces  = 13
	longitudeMaxDigits     = 17
	longitudeDecimalPlaces = 14
)

const (
	msgRequired      = "This field is required."
	msgNull          = "This field may not be null."
	msgBlank         = "This field may not be blank."
	msgMaxLength     = "Ensure this field has no more than %d characters."
	msgMaxValue      = "Ensure this value is less than or equal to %s."
	msgMinValue      = "Ensure this value is greater than or equal to %s."
	msgMaxDigits     = "Ensure that there are no more than %d digits in total."
	msgDecimalPlaces = "Ensure that there are no more than %d decimal places."
	msgWholeDigits   = "Ensure that there are no more than %d digits before the decimal point."
	msgInvalidNumber = "A valid number is required."
	msgInvalidIP     = "Enter a valid IPv4 or IPv6 address."
	msgInvalidChoice = "\"%s\" is not a valid choice."
	msgInvalidPK     = "Invalid pk \"%d\" - object does not exist."
)

// Normalize converts a payload of any shape into a canonical record.
// It does no I/O. If any field is invalid, it returns
// *ValidationError which lists all of them.
func Normalize(payload Payload) (*Record, error) {
	switch p := payload.(type) {
	case *RichPayload:
		return normalizeRich(p)
	case *CompactPayload:
		return normalizeCompact(p)
	}

	return nil, fmt.Errorf("unsupported payload %T", payload)
}

func normalizeRich(p *RichPayload) (*Record, error) {
	v := &ValidationError{}
	rec := &Record{
		IP:            v.ip("ip", p.IP),
		IPType:        v.ipType("type", p.Type),
		ContinentCode: v.requiredString("continent_code", p.ContinentCode, MaxContinentCodeLength),
		ContinentName: v.requiredString("continent_name", p.ContinentName, MaxContinentNameLength),
		CountryCode:   v.requiredString("country_code", p.CountryCode, MaxCountryCodeLength),
		CountryName:   v.requiredString("country_name", p.CountryName, MaxCountryNameLength),
		RegionCode:    v.optionalString("region_code", p.RegionCode, MaxRegionCodeLength),
		RegionName:    v.optionalString("region_name", p.RegionName, MaxRegionNameLength),
		City:          v.optionalString("city", p.City, MaxCityLength),
		PostalCode:    v.optionalString("zip", p.Zip, MaxPostalCodeLength),
		Coordinates:   v.coordinates(p.Latitude, p.Longitude),
	}

	switch {
	case !p.Location.Present:
		v.add("location", msgRequired)
	case p.Location.Null:
		v.add("location", msgNull)
	default:
		rec.Location = v.richLocation("location", &p.Location.V)
		rec.IsEU = rec.Location.IsEU
	}

	if !v.empty() {
		return nil, v
	}

	return rec, nil
}

func normalizeCompact(p *CompactPayload) (*Record, error) {
	v := &ValidationError{}
	rec := &Record{
		ContinentCode: v.requiredString("continent_code", p.ContinentCode, MaxContinentCodeLength),
		ContinentName: v.requiredString("continent_name", p.ContinentName, MaxContinentNameLength),
		CountryCode:   v.requiredString("country_code", p.CountryCode, MaxCountryCodeLength),
		CountryName:   v.requiredString("country_name", p.CountryName, MaxCountryNameLength),
		RegionCode:    v.optionalString("region", p.Region, MaxRegionCodeLength),
		City:          v.optionalString("city", p.City, MaxCityLength),
		PostalCode:    v.optionalString("postal_code", p.PostalCode, MaxPostalCodeLength),
		Coordinates:   v.coordinates(p.Latitude, p.Longitude),
		IsEU:          p.IsInEuropeanUnion,
		Location: &LocationDraft{
			IsEU: p.IsInEuropeanUnion,
		},
	}

	if !v.empty() {
		return nil, v
	}

	return rec, nil
}

func (v *ValidationError) richLocation(prefix string, loc *RichLocation) *LocationDraft {
	rv := &LocationDraft{
		Capital:   v.optionalString(prefix+".capital", loc.Capital, MaxCapitalLength),
		IsEU:      loc.IsEU.Valid() && loc.IsEU.V,
		Languages: make([]LanguageDraft, 0, len(loc.Languages)),
	}

	if loc.GeonameID.Valid() {
		if loc.GeonameID.V < 0 {
			v.add(prefix+".geoname_id", fmt.Sprintf(msgMinValue, "0"))
		} else {
			geonameID := loc.GeonameID.V
			rv.GeonameID = &geonameID
		}
	}

	for i, lang := range loc.Languages {
		name := fmt.Sprintf("%s.languages.%d.", prefix, i)

		rv.Languages = append(rv.Languages, LanguageDraft{
			Code:   v.requiredString(name+"code", lang.Code, MaxLanguageCodeLength),
			Name:   v.requiredString(name+"name", lang.Name, MaxLanguageNameLength),
			Native: v.requiredString(name+"native", lang.Native, MaxLanguageNameLength),
		})
	}

	return rv
}

func (v *ValidationError) requiredString(name string, value Value[string], maxLength int) string {
	switch {
	case !value.Present:
		v.add(name, msgRequired)

		return ""
	case value.Null:
		v.add(name, msgNull)

		return ""
	}

	str := strings.TrimSpace(value.V)

	if str == "" {
		v.add(name, msgBlank)

		return ""
	}

	return v.maxLength(name, str, maxLength)
}

func (v *ValidationError) optionalString(name string, value Value[string], maxLength int) string {
	if !value.Valid() {
		return ""
	}

	return v.maxLength(name, strings.TrimSpace(value.V), maxLength)
}

func (v *ValidationError) maxLength(name, value string, maxLength int) string {
	if utf8.RuneCountInString(value) > maxLength {
		v.add(name, fmt.Sprintf(msgMaxLength, maxLength))
	}

	return value
}

func (v *ValidationError) ip(name string, value Value[string]) net.IP {
	str := strings.TrimSpace(value.V)

	switch {
	case !value.Present:
		v.add(name, msgRequired)
	case value.Null:
		v.add(name, msgNull)
	case str == "":
		v.add(name, msgBlank)
	default:
		if ip := net.ParseIP(str); ip != nil {
			return ip
		}

		v.add(name, msgInvalidIP)
	}

	return nil
}

func (v *ValidationError) ipType(name string, value Value[string]) IPType {
	if !value.Valid() {
		return IPTypeNotProvided
	}

	switch ipType := IPType(value.V); ipType {
	case IPTypeV4, IPTypeV6, IPTypeNotProvided:
		return ipType
	}

	v.add(name, fmt.Sprintf(msgInvalidChoice, value.V))

	return IPTypeNotProvided
}

func (v *ValidationError) coordinates(latitude, longitude Value[float64]) Coordinates {
	return Coordinates{
		Latitude: v.decimal("latitude", latitude, 90,
			latitudeMaxDigits, latitudeDecimalPlaces),
		Longitude: v.decimal("longitude", longitude, 180,
			longitudeMaxDigits, longitudeDecimalPlaces),
	}
}

// decimal validates a number as a fixed precision decimal in range
// [-limit, limit]. Precision is checked on the shortest decimal
// representation of the float.
func (v *ValidationError) decimal(name string, value Value[float64], limit float64, maxDigits, decimalPlaces int) float64 {
	switch {
	case !value.Present:
		v.add(name, msgRequired)

		return 0
	case value.Null:
		v.add(name, msgNull)

		return 0
	case math.IsNaN(value.V) || math.IsInf(value.V, 0):
		v.add(name, msgInvalidNumber)

		return 0
	}

	repr := strconv.FormatFloat(math.Abs(value.V), 'f', -1, 64)
	whole, fraction, _ := strings.Cut(repr, ".")
	whole = strings.TrimLeft(whole, "0")
	wholeDigits := len(whole)
	fractionDigits := len(fraction)

	switch {
	case wholeDigits+fractionDigits > maxDigits:
		v.add(name, fmt.Sprintf(msgMaxDigits, maxDigits))
	case fractionDigits > decimalPlaces:
		v.add(name, fmt.Sprintf(msgDecimalPlaces, decimalPlaces))
	case wholeDigits > maxDigits-decimalPlaces:
		v.add(name, fmt.Sprintf(msgWholeDigits, maxDigits-decimalPlaces))
	case value.V > limit:
		v.add(name, fmt.Sprintf(msgMaxValue, strconv.FormatFloat(limit, 'f', -1, 64)))
	case value.V < -limit:
		v.add(name, fmt.Sprintf(msgMinValue, strconv.FormatFloat(-limit, 'f', -1, 64)))
	}

	return value.V
}

// NormalizePatch applies a partial rich payload to a stored
// geolocation. Only fields which are present in the patch are
// validated, the rest are taken from the stored geolocation. Location
// of the result is nil unless the patch has it: stored location is
// kept as is.
func NormalizePatch(current *GeoLocation, patch *RichPayload) (*Record, error) {
	v := &ValidationError{}
	rec := &Record{
		IP:            current.IP,
		IPType:        current.IPType,
		ContinentCode: current.ContinentCode,
		ContinentName: current.ContinentName,
		CountryCode:   current.CountryCode,
		CountryName:   current.CountryName,
		RegionCode:    current.RegionCode,
		RegionName:    current.RegionName,
		City:          current.City,
		PostalCode:    current.PostalCode,
		Coordinates:   current.Coordinates,
		IsEU:          current.IsEU,
	}

	if patch.IP.Present {
		rec.IP = v.ip("ip", patch.IP)
	}

	if patch.Type.Present {
		rec.IPType = v.ipType("type", patch.Type)
	}

	requiredStrings := []struct {
		name      string
		value     Value[string]
		target    *string
		maxLength int
	}{
		{"continent_code", patch.ContinentCode, &rec.ContinentCode, MaxContinentCodeLength},
		{"continent_name", patch.ContinentName, &rec.ContinentName, MaxContinentNameLength},
		{"country_code", patch.CountryCode, &rec.CountryCode, MaxCountryCodeLength},
		{"country_name", patch.CountryName, &rec.CountryName, MaxCountryNameLength},
	}

	for _, field := range requiredStrings {
		if field.value.Present {
			*field.target = v.requiredString(field.name, field.value, field.maxLength)
		}
	}

	optionalStrings := []struct {
		name      string
		value     Value[string]
		target    *string
		maxLength int
	}{
		{"region_code", patch.RegionCode, &rec.RegionCode, MaxRegionCodeLength},
		{"region_name", patch.RegionName, &rec.RegionName, MaxRegionNameLength},
		{"city", patch.City, &rec.City, MaxCityLength},
		{"zip", patch.Zip, &rec.PostalCode, MaxPostalCodeLength},
	}

	for _, field := range optionalStrings {
		if field.value.Present {
			*field.target = v.optionalString(field.name, field.value, field.maxLength)
		}
	}

	if patch.Latitude.Present {
		rec.Coordinates.Latitude = v.decimal("latitude", patch.Latitude, 90,
			latitudeMaxDigits, latitudeDecimalPlaces)
	}

	if patch.Longitude.Present {
		rec.Coordinates.Longitude = v.decimal("longitude", patch.Longitude, 180,
			longitudeMaxDigits, longitudeDecimalPlaces)
	}

	switch {
	case patch.Location.Null:
		v.add("location", msgNull)
	case patch.Location.Present:
		rec.Location = v.richLocation("location", &patch.Location.V)
		rec.IsEU = rec.Location.IsEU
	}

	if !v.empty() {
		return nil, v
	}

	return rec, nil
}

// NormalizeLocation validates changes of a standalone location.
func NormalizeLocation(changes *LocationChanges) error {
	v := &ValidationError{}

	if changes.GeonameID.Valid() && changes.GeonameID.V < 0 {
		v.add("geoname_id", fmt.Sprintf(msgMinValue, "0"))
	}

	switch {
	case changes.Capital.Null:
		v.add("capital", msgNull)
	case changes.Capital.Present:
		changes.Capital.V = v.maxLength("capital", strings.TrimSpace(changes.Capital.V), MaxCapitalLength)
	}

	if changes.IsEU.Null {
		v.add("is_eu", msgNull)
	}

	if changes.LanguageIDs.Null {
		v.add("languages", msgNull)
	}

	for _, id := range changes.LanguageIDs.V {
		if id <= 0 {
			v.add("languages", fmt.Sprintf(msgInvalidPK, id))
		}
	}

	if !v.empty() {
		return v
	}

	return nil
}

// NewUnknownLanguageError reports a location which refers to a
// language that does not exist.
func NewUnknownLanguageError(id int64) *ValidationError {
	v := &ValidationError{}
	v.add("languages", fmt.Sprintf(msgInvalidPK, id))

	return v
}

// NormalizeLanguage validates a standalone language.
func NormalizeLanguage(lang RichLanguage) (LanguageDraft, error) {
	v := &ValidationError{}
	rv := LanguageDraft{
		Code:   v.requiredString("code", lang.Code, MaxLanguageCodeLength),
		Name:   v.requiredString("name", lang.Name, MaxLanguageNameLength),
		Native: v.requiredString("native", lang.Native, MaxLanguageNameLength),
	}

	if !v.empty() {
		return LanguageDraft{}, v
	}

	return rv, nil
}

// NormalizeLanguagePatch validates a partial update of a language.
// Absent fields are taken from the current language.
func NormalizeLanguagePatch(current *Language, patch RichLanguage) (LanguageDraft, error) {
	if !patch.Code.Present {
		patch.Code = Some(current.Code)
	}

	if !patch.Name.Present {
		patch.Name = Some(current.Name)
	}

	if !patch.Native.Present {
		patch.Native = Some(current.Native)
	}

	return NormalizeLanguage(patch)
}
