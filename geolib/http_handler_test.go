package geolib_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/9seconds/geolocations/geolib"
	"github.com/qri-io/jsonschema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var (
	jsonSchemaGeoLocation = func() *jsonschema.Schema {
		data := `{
          "type": "object",
          "required": [
            "id",
            "ip",
            "ip_type",
            "continent_code",
            "continent_name",
            "country_code",
            "country_name",
            "region_code",
            "region_name",
            "city",
            "postal_code",
            "coordinates",
            "is_eu",
            "location"
          ],
          "properties": {
            "id": {
              "type": "integer",
              "minimum": 1
            },
            "ip": {
              "anyOf": [
                {
                  "type": "null"
                },
                {
                  "type": "string",
                  "minLength": 2,
                  "maxLength": 39
                }
              ]
            },
            "ip_type": {
              "enum": ["ipv4", "ipv6", ""]
            },
            "continent_code": {
              "type": "string",
              "minLength": 2,
              "maxLength": 2
            },
            "country_code": {
              "type": "string",
              "minLength": 2,
              "maxLength": 2
            },
            "coordinates": {
              "type": "object",
              "required": [
                "latitude",
                "longitude"
              ],
              "additionalProperties": false,
              "properties": {
                "latitude": {
                  "type": "number",
                  "minimum": -90,
                  "maximum": 90
                },
                "longitude": {
                  "type": "number",
                  "minimum": -180,
                  "maximum": 180
                }
              }
            },
            "location": {
              "anyOf": [
                {
                  "type": "null"
                },
                {
                  "type": "object",
                  "required": [
                    "id",
                    "geoname_id",
                    "capital",
                    "is_eu",
                    "languages"
                  ],
                  "properties": {
                    "languages": {
                      "type": "array",
                      "items": {
                        "type": "object",
                        "required": [
                          "id",
                          "code",
                          "name",
                          "native"
                        ]
                      }
                    }
                  }
                }
              ]
            }
          }
        }`

		rv := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(data), rv); err != nil {
			panic(err)
		}

		return rv
	}()

	jsonSchemaError = func() *jsonschema.Schema {
		data := `{
          "type": "object",
          "required": [
            "error"
          ],
          "additionalProperties": false,
          "properties": {
            "error": {
              "type": "object",
              "required": [
                "message",
                "context"
              ],
              "additionalProperties": false,
              "properties": {
                "message": {
                  "type": "string",
                  "minLength": 1
                },
                "context": {
                  "type": "string"
                },
                "fields": {
                  "type": "object",
                  "additionalProperties": {
                    "type": "array",
                    "items": {
                      "type": "string"
                    }
                  }
                }
              }
            }
          }
        }`

		rv := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(data), rv); err != nil {
			panic(err)
		}

		return rv
	}()
)

type HTTPHandlerTestSuite struct {
	suite.Suite

	richMock    *geolib.RichProviderMock
	offlineMock *geolib.OfflineProviderMock
	storeMock   *geolib.StoreMock
	loggerMock  *geolib.LoggerMock
	handler     http.Handler
}

func (suite *HTTPHandlerTestSuite) SetupTest() {
	suite.richMock = &geolib.RichProviderMock{}
	suite.offlineMock = &geolib.OfflineProviderMock{}
	suite.storeMock = &geolib.StoreMock{}
	suite.loggerMock = &geolib.LoggerMock{}

	ingester := geolib.NewIngester(suite.richMock,
		suite.offlineMock,
		suite.storeMock,
		suite.loggerMock)
	suite.handler = geolib.NewHTTPHandler(ingester, suite.storeMock, time.Minute)

	suite.richMock.On("Name").Return("rich").Maybe()
	suite.offlineMock.On("Name").Return("offline").Maybe()
	suite.loggerMock.On("LookupError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	suite.loggerMock.On("IngestInfo", mock.Anything, mock.Anything, mock.Anything).Maybe()
	suite.loggerMock.On("IngestError", mock.Anything, mock.Anything).Maybe()
}

func (suite *HTTPHandlerTestSuite) TearDownTest() {
	suite.richMock.AssertExpectations(suite.T())
	suite.offlineMock.AssertExpectations(suite.T())
	suite.storeMock.AssertExpectations(suite.T())
}

func (suite *HTTPHandlerTestSuite) do(method, path, contentType string, body io.Reader) *http.Response {
	req := httptest.NewRequest(method, path, body)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()

	suite.handler.ServeHTTP(rec, req)

	return rec.Result()
}

func (suite *HTTPHandlerTestSuite) readBody(resp *http.Response, schema *jsonschema.Schema) []byte {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	suite.NoError(err)
	suite.Equal("application/json", resp.Header.Get("Content-Type"))

	if schema != nil {
		errs, err := schema.ValidateBytes(context.Background(), data)

		suite.NoError(err)
		suite.Empty(errs)
	}

	return data
}

func (suite *HTTPHandlerTestSuite) readError(resp *http.Response) (string, map[string][]string) {
	envelope := struct {
		Error struct {
			Message string              `json:"message"`
			Fields  map[string][]string `json:"fields"`
		} `json:"error"`
	}{}

	suite.NoError(json.Unmarshal(suite.readBody(resp, jsonSchemaError), &envelope))

	return envelope.Error.Message, envelope.Error.Fields
}

func (suite *HTTPHandlerTestSuite) geoLocation() *geolib.GeoLocation {
	locationID := int64(7)
	geonameID := int64(2950159)

	return &geolib.GeoLocation{
		ID:            11,
		IP:            net.ParseIP("81.2.69.142"),
		IPType:        geolib.IPTypeV4,
		ContinentCode: "EU",
		ContinentName: "Europe",
		CountryCode:   "DE",
		CountryName:   "Germany",
		RegionCode:    "BE",
		RegionName:    "Land Berlin",
		City:          "Berlin",
		PostalCode:    "10115",
		Coordinates:   geolib.Coordinates{Latitude: 52.52, Longitude: 13.405},
		IsEU:          true,
		LocationID:    &locationID,
		Location: &geolib.Location{
			ID:        locationID,
			GeonameID: &geonameID,
			Capital:   "Berlin",
			IsEU:      true,
			Languages: []geolib.Language{
				{ID: 1, Code: "de", Name: "German", Native: "Deutsch"},
			},
		},
	}
}

func (suite *HTTPHandlerTestSuite) TestIngestBothParameters() {
	resp := suite.do(http.MethodPost, "/api/geolocations?ip=1.1.1.1&url=example.com", "", nil)

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	message, _ := suite.readError(resp)

	suite.Equal("Both 'url' and 'ip' parameters provided at the same time are not supported.", message)
}

func (suite *HTTPHandlerTestSuite) TestIngestNoParameters() {
	resp := suite.do(http.MethodPost, "/api/geolocations/", "", nil)

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	message, _ := suite.readError(resp)

	suite.Equal("'url' or 'ip' parameter is required.", message)
}

func (suite *HTTPHandlerTestSuite) TestIngestInvalidIP() {
	resp := suite.do(http.MethodPost, "/api/geolocations?ip=localhost", "", nil)

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"ip": {"Enter a valid IPv4 or IPv6 address."},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestIngestUnresolvableHost() {
	suite.offlineMock.
		On("LookupHost", mock.Anything, "nonexistent.invalid").
		Return(nil, &net.DNSError{Err: "no such host", Name: "nonexistent.invalid", IsNotFound: true}).
		Once()

	resp := suite.do(http.MethodPost, "/api/geolocations?url=https://nonexistent.invalid/", "", nil)

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestIngestAddressNotInDatabase() {
	suite.offlineMock.
		On("LookupHost", mock.Anything, "wp.pl").
		Return(nil, geolib.ErrAddressNotFound).
		Once()

	resp := suite.do(http.MethodPost, "/api/geolocations?url=wp.pl", "", nil)

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestIngestOfflineDatabaseNotReady() {
	suite.offlineMock.
		On("LookupHost", mock.Anything, "wp.pl").
		Return(nil, fmt.Errorf("lookup: %w", geolib.ErrDatabaseNotReady)).
		Once()

	resp := suite.do(http.MethodPost, "/api/geolocations?url=wp.pl", "", nil)

	suite.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestIngestOfflineTimeout() {
	suite.offlineMock.
		On("LookupHost", mock.Anything, "wp.pl").
		Return(nil, context.DeadlineExceeded).
		Once()

	resp := suite.do(http.MethodPost, "/api/geolocations?url=wp.pl", "", nil)

	suite.Equal(http.StatusGatewayTimeout, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestIngestOk() {
	ip := net.ParseIP("81.2.69.142")

	suite.richMock.On("Lookup", mock.Anything, ip).Return(nil, errors.New("no access key")).Once()
	suite.offlineMock.On("LookupIP", mock.Anything, ip).Return(&geolib.CompactPayload{
		ContinentCode:     geolib.Some("EU"),
		ContinentName:     geolib.Some("Europe"),
		CountryCode:       geolib.Some("DE"),
		CountryName:       geolib.Some("Germany"),
		Latitude:          geolib.Some(52.52),
		Longitude:         geolib.Some(13.405),
		IsInEuropeanUnion: true,
	}, nil).Once()
	suite.storeMock.
		On("CreateGeoLocation", mock.Anything, mock.Anything).
		Return(suite.geoLocation(), nil).
		Once()

	resp := suite.do(http.MethodPost, "/api/geolocations?ip=81.2.69.142", "", nil)

	suite.Equal(http.StatusCreated, resp.StatusCode)

	data := suite.readBody(resp, jsonSchemaGeoLocation)
	parsed := map[string]interface{}{}

	suite.NoError(json.Unmarshal(data, &parsed))
	suite.Equal("81.2.69.142", parsed["ip"])
	suite.Equal("ipv4", parsed["ip_type"])
}

func (suite *HTTPHandlerTestSuite) TestListGeoLocations() {
	geo := suite.geoLocation()
	geo.IP = nil
	geo.IPType = geolib.IPTypeNotProvided
	geo.Location = nil
	geo.LocationID = nil

	suite.storeMock.
		On("ListGeoLocations", mock.Anything).
		Return([]geolib.GeoLocation{*geo}, nil).
		Once()

	resp := suite.do(http.MethodGet, "/api/geolocations", "", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)

	envelope := struct {
		Results []json.RawMessage `json:"results"`
	}{}

	suite.NoError(json.Unmarshal(suite.readBody(resp, nil), &envelope))
	suite.Len(envelope.Results, 1)

	errs, err := jsonSchemaGeoLocation.ValidateBytes(context.Background(), envelope.Results[0])

	suite.NoError(err)
	suite.Empty(errs)
	suite.Contains(string(envelope.Results[0]), `"ip":null`)
	suite.Contains(string(envelope.Results[0]), `"location":null`)
}

func (suite *HTTPHandlerTestSuite) TestListEmpty() {
	suite.storeMock.On("ListLanguages", mock.Anything).Return(nil, nil).Once()

	resp := suite.do(http.MethodGet, "/api/languages", "", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"results": []}`, string(suite.readBody(resp, nil)))
}

func (suite *HTTPHandlerTestSuite) TestGetGeoLocation() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(11)).Return(suite.geoLocation(), nil).Once()

	resp := suite.do(http.MethodGet, "/api/geolocations/11", "", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.readBody(resp, jsonSchemaGeoLocation)
}

func (suite *HTTPHandlerTestSuite) TestGetGeoLocationNotFound() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(12)).Return(nil, geolib.ErrNotFound).Once()

	resp := suite.do(http.MethodGet, "/api/geolocations/12", "", nil)

	suite.Equal(http.StatusNotFound, resp.StatusCode)

	message, _ := suite.readError(resp)

	suite.Equal("Not found.", message)
}

func (suite *HTTPHandlerTestSuite) TestGetGeoLocationBadID() {
	resp := suite.do(http.MethodGet, "/api/geolocations/abc", "", nil)

	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestDeleteGeoLocation() {
	suite.storeMock.On("DeleteGeoLocation", mock.Anything, int64(11)).Return(nil).Once()

	resp := suite.do(http.MethodDelete, "/api/geolocations/11", "", nil)

	suite.Equal(http.StatusNoContent, resp.StatusCode)
}

func (suite *HTTPHandlerTestSuite) TestLocations() {
	suite.storeMock.On("ListLocations", mock.Anything).Return([]geolib.Location{*suite.geoLocation().Location}, nil).Once()
	suite.storeMock.On("GetLocation", mock.Anything, int64(7)).Return(suite.geoLocation().Location, nil).Once()
	suite.storeMock.On("DeleteLocation", mock.Anything, int64(8)).Return(geolib.ErrNotFound).Once()

	resp := suite.do(http.MethodGet, "/api/locations", "", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.readBody(resp, nil)

	resp = suite.do(http.MethodGet, "/api/locations/7", "", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(suite.readBody(resp, nil)), `"native":"Deutsch"`)

	resp = suite.do(http.MethodDelete, "/api/locations/8", "", nil)

	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *HTTPHandlerTestSuite) TestCreateLanguage() {
	draft := geolib.LanguageDraft{Code: "pl", Name: "Polish", Native: "Polski"}

	suite.storeMock.
		On("CreateLanguage", mock.Anything, draft).
		Return(&geolib.Language{ID: 5, Code: "pl", Name: "Polish", Native: "Polski"}, nil).
		Once()

	resp := suite.do(http.MethodPost, "/api/languages", "application/json",
		strings.NewReader(`{"code": "pl", "name": "Polish", "native": "Polski"}`))

	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.Contains(string(suite.readBody(resp, nil)), `"id":5`)
}

func (suite *HTTPHandlerTestSuite) TestCreateLanguageConflict() {
	draft := geolib.LanguageDraft{Code: "pl", Name: "Polish", Native: "Polski"}

	suite.storeMock.
		On("CreateLanguage", mock.Anything, draft).
		Return(nil, &geolib.ConflictError{Fields: []string{"code", "name", "native"}}).
		Once()

	resp := suite.do(http.MethodPost, "/api/languages", "application/json",
		strings.NewReader(`{"code": "pl", "name": "Polish", "native": "Polski"}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"non_field_errors": {"The fields code, name, native must make a unique set."},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestCreateLanguageInvalid() {
	resp := suite.do(http.MethodPost, "/api/languages", "application/json",
		strings.NewReader(`{"code": "pol", "name": null}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"code":   {"Ensure this field has no more than 2 characters."},
		"name":   {"This field may not be null."},
		"native": {"This field is required."},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestCreateLanguageBadContent() {
	resp := suite.do(http.MethodPost, "/api/languages", "text/plain", strings.NewReader("pl"))

	suite.Equal(http.StatusUnsupportedMediaType, resp.StatusCode)
	suite.readError(resp)

	resp = suite.do(http.MethodPost, "/api/languages", "application/json", strings.NewReader("{["))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestUpdateGeoLocationRich() {
	updated := suite.geoLocation()

	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(11)).Return(suite.geoLocation(), nil).Once()
	suite.storeMock.
		On("UpdateGeoLocation", mock.Anything, int64(11), mock.MatchedBy(func(record *geolib.Record) bool {
			return record.IP.String() == "134.201.250.155" &&
				record.City == "Los Angeles" &&
				record.Location != nil &&
				len(record.Location.Languages) == 1
		})).
		Return(updated, nil).
		Once()

	resp := suite.do(http.MethodPut, "/api/geolocations/11", "application/json",
		strings.NewReader(richPayloadJSON))

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.readBody(resp, jsonSchemaGeoLocation)
}

func (suite *HTTPHandlerTestSuite) TestUpdateGeoLocationCompactKeepsAddress() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(11)).Return(suite.geoLocation(), nil).Once()
	suite.storeMock.
		On("UpdateGeoLocation", mock.Anything, int64(11), mock.MatchedBy(func(record *geolib.Record) bool {
			return record.IP.String() == "81.2.69.142" &&
				record.IPType == geolib.IPTypeV4 &&
				record.City == "Warsaw" &&
				record.Location == nil
		})).
		Return(suite.geoLocation(), nil).
		Once()

	resp := suite.do(http.MethodPut, "/api/geolocations/11", "application/json",
		strings.NewReader(`{
		  "continent_code": "EU",
		  "continent_name": "Europe",
		  "country_code": "PL",
		  "country_name": "Poland",
		  "city": "Warsaw",
		  "latitude": 52.2296,
		  "longitude": 21.0067,
		  "is_in_european_union": true
		}`))

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.readBody(resp, jsonSchemaGeoLocation)
}

func (suite *HTTPHandlerTestSuite) TestUpdateGeoLocationInvalid() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(11)).Return(suite.geoLocation(), nil).Once()

	resp := suite.do(http.MethodPut, "/api/geolocations/11", "application/json",
		strings.NewReader(`{"ip": "1.1.1.1", "type": "ipv4"}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal([]string{"This field is required."}, fields["location"])
	suite.Equal([]string{"This field is required."}, fields["latitude"])
}

func (suite *HTTPHandlerTestSuite) TestUpdateGeoLocationNotFound() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(12)).Return(nil, geolib.ErrNotFound).Once()

	resp := suite.do(http.MethodPut, "/api/geolocations/12", "application/json",
		strings.NewReader(richPayloadJSON))

	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestPatchGeoLocation() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(11)).Return(suite.geoLocation(), nil).Once()
	suite.storeMock.
		On("UpdateGeoLocation", mock.Anything, int64(11), mock.MatchedBy(func(record *geolib.Record) bool {
			return record.IP.String() == "81.2.69.142" &&
				record.City == "Potsdam" &&
				record.CountryCode == "DE" &&
				record.Location == nil
		})).
		Return(suite.geoLocation(), nil).
		Once()

	resp := suite.do(http.MethodPatch, "/api/geolocations/11", "application/json",
		strings.NewReader(`{"city": "Potsdam"}`))

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.readBody(resp, jsonSchemaGeoLocation)
}

func (suite *HTTPHandlerTestSuite) TestPatchGeoLocationInvalid() {
	suite.storeMock.On("GetGeoLocation", mock.Anything, int64(11)).Return(suite.geoLocation(), nil).Once()

	resp := suite.do(http.MethodPatch, "/api/geolocations/11", "application/json",
		strings.NewReader(`{"country_code": null, "location": null}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"country_code": {"This field may not be null."},
		"location":     {"This field may not be null."},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestCreateLocation() {
	suite.storeMock.
		On("CreateLocation", mock.Anything, &geolib.LocationChanges{
			Capital:     geolib.Some("Berlin"),
			LanguageIDs: geolib.Some([]int64{1}),
		}).
		Return(suite.geoLocation().Location, nil).
		Once()

	resp := suite.do(http.MethodPost, "/api/locations", "application/json",
		strings.NewReader(`{"capital": "  Berlin ", "languages": [1]}`))

	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.Contains(string(suite.readBody(resp, nil)), `"capital":"Berlin"`)
}

func (suite *HTTPHandlerTestSuite) TestCreateLocationUnknownLanguage() {
	suite.storeMock.
		On("CreateLocation", mock.Anything, mock.Anything).
		Return(nil, geolib.NewUnknownLanguageError(42)).
		Once()

	resp := suite.do(http.MethodPost, "/api/locations", "application/json",
		strings.NewReader(`{"languages": [42]}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"languages": {`Invalid pk "42" - object does not exist.`},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestUpdateLocation() {
	suite.storeMock.
		On("UpdateLocation", mock.Anything, int64(7), &geolib.LocationChanges{
			GeonameID: geolib.Null[int64](),
		}).
		Return(suite.geoLocation().Location, nil).
		Twice()
	suite.storeMock.
		On("UpdateLocation", mock.Anything, int64(8), mock.Anything).
		Return(nil, geolib.ErrNotFound).
		Once()

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		resp := suite.do(method, "/api/locations/7", "application/json",
			strings.NewReader(`{"geoname_id": null}`))

		suite.Equal(http.StatusOK, resp.StatusCode)
		suite.readBody(resp, nil)
	}

	resp := suite.do(http.MethodPatch, "/api/locations/8", "application/json", strings.NewReader(`{}`))

	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestUpdateLocationInvalid() {
	resp := suite.do(http.MethodPatch, "/api/locations/7", "application/json",
		strings.NewReader(`{"geoname_id": -1, "capital": null, "languages": [0]}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"geoname_id": {"Ensure this value is greater than or equal to 0."},
		"capital":    {"This field may not be null."},
		"languages":  {`Invalid pk "0" - object does not exist.`},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestGetLanguage() {
	suite.storeMock.
		On("GetLanguage", mock.Anything, int64(1)).
		Return(&geolib.Language{ID: 1, Code: "de", Name: "German", Native: "Deutsch"}, nil).
		Once()
	suite.storeMock.On("GetLanguage", mock.Anything, int64(2)).Return(nil, geolib.ErrNotFound).Once()

	resp := suite.do(http.MethodGet, "/api/languages/1", "", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(suite.readBody(resp, nil)), `"native":"Deutsch"`)

	resp = suite.do(http.MethodGet, "/api/languages/2", "", nil)

	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestUpdateLanguage() {
	draft := geolib.LanguageDraft{Code: "de", Name: "Deutsch", Native: "Deutsch"}

	suite.storeMock.
		On("UpdateLanguage", mock.Anything, int64(1), draft).
		Return(&geolib.Language{ID: 1, Code: "de", Name: "Deutsch", Native: "Deutsch"}, nil).
		Once()

	resp := suite.do(http.MethodPut, "/api/languages/1", "application/json",
		strings.NewReader(`{"code": "de", "name": "Deutsch", "native": "Deutsch"}`))

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.readBody(resp, nil)

	resp = suite.do(http.MethodPut, "/api/languages/1", "application/json",
		strings.NewReader(`{"name": "Deutsch"}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Equal(map[string][]string{
		"code":   {"This field is required."},
		"native": {"This field is required."},
	}, fields)
}

func (suite *HTTPHandlerTestSuite) TestPatchLanguage() {
	suite.storeMock.
		On("GetLanguage", mock.Anything, int64(1)).
		Return(&geolib.Language{ID: 1, Code: "de", Name: "German", Native: "Deutsch"}, nil).
		Once()
	suite.storeMock.
		On("UpdateLanguage", mock.Anything, int64(1),
			geolib.LanguageDraft{Code: "de", Name: "Deutsch", Native: "Deutsch"}).
		Return(nil, &geolib.ConflictError{Fields: []string{"code", "name", "native"}}).
		Once()

	resp := suite.do(http.MethodPatch, "/api/languages/1", "application/json",
		strings.NewReader(`{"name": "Deutsch"}`))

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	_, fields := suite.readError(resp)

	suite.Contains(fields, "non_field_errors")
}

func (suite *HTTPHandlerTestSuite) TestDeleteLanguage() {
	suite.storeMock.On("DeleteLanguage", mock.Anything, int64(1)).Return(nil).Once()
	suite.storeMock.On("DeleteLanguage", mock.Anything, int64(2)).Return(geolib.ErrNotFound).Once()

	resp := suite.do(http.MethodDelete, "/api/languages/1", "", nil)

	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp = suite.do(http.MethodDelete, "/api/languages/2", "", nil)

	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestStoreFailure() {
	suite.storeMock.On("ListLocations", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	resp := suite.do(http.MethodGet, "/api/locations", "", nil)

	suite.Equal(http.StatusInternalServerError, resp.StatusCode)
	suite.readError(resp)
}

func (suite *HTTPHandlerTestSuite) TestUnknownRoute() {
	resp := suite.do(http.MethodGet, "/api/countries", "", nil)

	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.readError(resp)

	resp = suite.do(http.MethodPut, "/api/languages", "", nil)

	suite.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
	suite.readError(resp)
}

func TestHTTPHandler(t *testing.T) {
	suite.Run(t, &HTTPHandlerTestSuite{})
}
