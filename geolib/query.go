package geolib

import (
	"net"
	"net/url"
	"strings"
)

const msgInvalidURL = "Enter a valid URL."

// LookupKey is what caller asks to ingest: either an IP address or a
// hostname. Exactly one of them is set.
type LookupKey struct {
	IP   net.IP
	Host string
}

func (l LookupKey) String() string {
	if l.IP != nil {
		return l.IP.String()
	}

	return l.Host
}

// ParseLookupKey extracts a lookup key from query parameters ip and
// url. url can be a bare hostname, host:port pair or an absolute URL.
func ParseLookupKey(query url.Values) (LookupKey, error) {
	rawIP := strings.TrimSpace(query.Get("ip"))
	rawURL := strings.TrimSpace(query.Get("url"))

	switch {
	case rawIP != "" && rawURL != "":
		return LookupKey{}, ErrBothParameters
	case rawIP == "" && rawURL == "":
		return LookupKey{}, ErrNoParameters
	case rawIP != "":
		ip := net.ParseIP(rawIP)
		if ip == nil {
			verr := &ValidationError{}
			verr.add("ip", msgInvalidIP)

			return LookupKey{}, verr
		}

		return LookupKey{IP: ip}, nil
	}

	host := extractHostname(rawURL)
	if host == "" {
		verr := &ValidationError{}
		verr.add("url", msgInvalidURL)

		return LookupKey{}, verr
	}

	return LookupKey{Host: host}, nil
}

func extractHostname(value string) string {
	if strings.Contains(value, "://") {
		parsed, err := url.Parse(value)
		if err != nil {
			return ""
		}

		return strings.ToLower(parsed.Hostname())
	}

	if idx := strings.IndexAny(value, "/?#"); idx >= 0 {
		value = value[:idx]
	}

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}

	value = strings.Trim(value, "[]")

	if strings.ContainsAny(value, " @") {
		return ""
	}

	return strings.ToLower(value)
}
