package store

import (
	"net"

	"github.com/9seconds/geolocations/geolib"
)

func languageConflict(err error) *geolib.ConflictError {
	return &geolib.ConflictError{
		Fields: []string{"code", "name", "native"},
		Err:    err,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func ipString(ip net.IP) *string {
	if ip == nil {
		return nil
	}

	str := ip.String()

	return &str
}

func parseIP(ip *string) net.IP {
	if ip == nil {
		return nil
	}

	return net.ParseIP(*ip)
}

func scanLanguage(row rowScanner) (geolib.Language, error) {
	rv := geolib.Language{}
	err := row.Scan(&rv.ID, &rv.Code, &rv.Name, &rv.Native, &rv.CreatedAt, &rv.UpdatedAt)

	return rv, err
}

// scanLocation reads a location without languages.
func scanLocation(row rowScanner) (geolib.Location, error) {
	rv := geolib.Location{}
	err := row.Scan(&rv.ID, &rv.GeonameID, &rv.Capital, &rv.IsEU, &rv.CreatedAt, &rv.UpdatedAt)

	return rv, err
}

// uniqueIDs drops duplicates and keeps the order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	rv := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			rv = append(rv, id)
		}
	}

	return rv
}
