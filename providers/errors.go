package providers

import (
	"errors"
	"fmt"

	"github.com/9seconds/geolocations/geolib"
)

var (
	// ErrDatabaseIsNotReadyYet returns if you are trying to access
	// an offline provider but it haven't opened a database yet. For
	// example, it can be in process of downloading it.
	ErrDatabaseIsNotReadyYet = geolib.ErrDatabaseNotReady

	// ErrAccessKeyIsRequired is returned by online provider which is
	// configured without an access key.
	ErrAccessKeyIsRequired = errors.New("access key is required")

	// ErrLicenseKeyIsRequired is returned if offline provider has to
	// download a database but has no license key.
	ErrLicenseKeyIsRequired = errors.New("license key is required")

	// ErrNoFile is returned if provider has downloaded an archive with
	// database but this archive is empty.
	ErrNoFile = errors.New("cannot find a database file in downloaded archive")

	// ErrNoAddresses is returned if hostname is resolved into an empty
	// list of addresses.
	ErrNoAddresses = geolib.ErrNoAddresses
)

// IPStackError is a structured failure returned by ipstack API instead
// of a payload. For example, when access key is invalid or monthly
// limit is reached.
type IPStackError struct {
	Code int
	Type string
	Info string
}

func (i *IPStackError) Error() string {
	return fmt.Sprintf("failed response: code=%d, type=%s, info=%s", i.Code, i.Type, i.Info)
}
