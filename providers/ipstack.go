package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/9seconds/geolocations/geolib"
)

const ipstackMaxResponseSize = 1 << 20

// IPStack is a rich online provider backed by ipstack.com API.
//
//	Identifier: ipstack
//	Provider type: online
//	Website: https://ipstack.com
type IPStack struct {
	client     geolib.HTTPClient
	httpScheme string
	accessKey  string
}

func (i *IPStack) Name() string {
	return NameIPStack
}

// Lookup asks API about an IP address. Any response which is not a
// payload is an error: non-200 status code, malformed JSON or a
// structured failure (*IPStackError).
func (i *IPStack) Lookup(ctx context.Context, ip net.IP) (*geolib.RichPayload, error) {
	if i.accessKey == "" {
		return nil, ErrAccessKeyIsRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.buildURL(ip), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, ipstackMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read a response: %w", err)
	}

	failure := geolib.RichFailure{}
	if err := json.Unmarshal(body, &failure); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	if failure.Failed() {
		return nil, &IPStackError{
			Code: failure.Error.Code,
			Type: failure.Error.Type,
			Info: failure.Error.Info,
		}
	}

	payload := &geolib.RichPayload{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, fmt.Errorf("cannot parse a payload: %w", err)
	}

	return payload, nil
}

func (i *IPStack) buildURL(ip net.IP) string {
	getQuery := url.Values{}

	getQuery.Set("access_key", i.accessKey)
	getQuery.Set("output", "json")
	getQuery.Set("language", "en")

	u := url.URL{
		Scheme:   i.httpScheme,
		Host:     "api.ipstack.com",
		Path:     "/" + ip.String(),
		RawQuery: getQuery.Encode(),
	}

	return u.String()
}

// NewIPStack returns a new instance of ipstack provider. Free plan of
// ipstack does not support HTTPS, so it is optional.
func NewIPStack(client geolib.HTTPClient, accessKey string, isSecure bool) *IPStack {
	scheme := "http"

	if isSecure {
		scheme = "https"
	}

	return &IPStack{
		client:     client,
		accessKey:  accessKey,
		httpScheme: scheme,
	}
}
