package geolib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrBothParameters  = errors.New("Both 'url' and 'ip' parameters provided at the same time are not supported.")
	ErrNoParameters    = errors.New("'url' or 'ip' parameter is required.")
	ErrNotFound        = errors.New("not found")
	ErrAddressNotFound = errors.New("address is not found in the database")

	// ErrNoAddresses is returned if hostname is resolved into an empty
	// list of addresses.
	ErrNoAddresses = errors.New("hostname has no addresses")

	// ErrDatabaseNotReady is returned by offline providers which have
	// not opened a database yet.
	ErrDatabaseNotReady = errors.New("database is not initialized yet")
)

// ValidationError is a set of field errors. Keys are field names as
// they are named in input, nested fields are joined with a dot.
type ValidationError struct {
	Fields map[string][]string
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))

	for k := range v.Fields {
		names = append(names, k)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))

	for _, k := range names {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], " "))
	}

	return "invalid fields: " + strings.Join(parts, "; ")
}

func (v *ValidationError) add(field, message string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}

	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) empty() bool {
	return len(v.Fields) == 0
}

// ResolutionError is returned if lookup key cannot be resolved into a
// geolocation: hostname is not resolvable or offline database has no
// entry for the address.
type ResolutionError struct {
	Key string
	Err error
}

func (r *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", r.Key, r.Err)
}

func (r *ResolutionError) Unwrap() error {
	return r.Err
}

// ConflictError is returned by stores if uniqueness constraint is
// violated.
type ConflictError struct {
	Fields []string
	Err    error
}

func (c *ConflictError) Error() string {
	return fmt.Sprintf("The fields %s must make a unique set.", strings.Join(c.Fields, ", "))
}

func (c *ConflictError) Unwrap() error {
	return c.Err
}

type jsonHTTPError struct {
	Error struct {
		Message string              `json:"message"`
		Context string              `json:"context"`
		Fields  map[string][]string `json:"fields,omitempty"`
	} `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	var validationErr *ValidationError

	if errors.As(h.err, &validationErr) {
		value.Error.Fields = validationErr.Fields
	}

	var conflictErr *ConflictError

	if errors.As(h.err, &conflictErr) {
		value.Error.Fields = map[string][]string{
			"non_field_errors": {conflictErr.Error()},
		}
	}

	return json.Marshal(&value)
}

// newHTTPError classifies an error into HTTP status code. All errors
// caused by caller input are 400. Server side failures are 5xx.
func newHTTPError(err error, message string) *httpError {
	statusCode := http.StatusInternalServerError

	var (
		validationErr *ValidationError
		resolutionErr *ResolutionError
		conflictErr   *ConflictError
	)

	switch {
	case errors.Is(err, ErrBothParameters), errors.Is(err, ErrNoParameters):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.As(err, &validationErr), errors.As(err, &resolutionErr), errors.As(err, &conflictErr):
		statusCode = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Not found."
	case errors.Is(err, ErrDatabaseNotReady):
		statusCode = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusGatewayTimeout
	}

	return &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}
}
