package geolib

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Ingester resolves lookup keys into geolocations and persists them.
//
// Hostnames are resolved with an offline provider only. IP addresses
// go to a rich provider first. Any failure of the rich provider is
// logged and followed by exactly one offline lookup of the same
// address. Rich provider is never retried.
type Ingester struct {
	rich    RichProvider
	offline OfflineProvider
	store   Store
	logger  Logger
}

// Ingest resolves a lookup key, normalizes a payload and stores a
// result. Nothing is stored if any of these steps fails.
func (i *Ingester) Ingest(ctx context.Context, key LookupKey) (*GeoLocation, error) {
	payload, err := i.resolve(ctx, key)
	if err != nil {
		i.logger.IngestError(key.String(), err)

		return nil, err
	}

	record, err := Normalize(payload)
	if err != nil {
		i.logger.IngestError(key.String(), err)

		return nil, err
	}

	if payload.Shape() == ShapeCompact && key.IP != nil {
		record.IP = key.IP
		record.IPType = ClassifyIP(key.IP)
	}

	geo, err := i.store.CreateGeoLocation(ctx, record)
	if err != nil {
		i.logger.IngestError(key.String(), err)

		return nil, fmt.Errorf("cannot store a geolocation: %w", err)
	}

	i.logger.IngestInfo(key.String(), payload.Shape(), geo.ID)

	return geo, nil
}

func (i *Ingester) resolve(ctx context.Context, key LookupKey) (Payload, error) {
	if key.IP == nil {
		payload, err := i.offline.LookupHost(ctx, key.Host)
		if err != nil {
			i.logger.LookupError(key.Host, i.offline.Name(), err)

			return nil, i.offlineError(key.Host, err)
		}

		return payload, nil
	}

	payload, err := i.rich.Lookup(ctx, key.IP)
	if err == nil {
		return payload, nil
	}

	i.logger.LookupError(key.String(), i.rich.Name(), err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	compact, err := i.offline.LookupIP(ctx, key.IP)
	if err != nil {
		i.logger.LookupError(key.String(), i.offline.Name(), err)

		return nil, i.offlineError(key.String(), err)
	}

	return compact, nil
}

// offlineError tells caller errors from provider faults. Only a
// hostname which does not exist or an address which is absent in the
// database are caller errors.
func (i *Ingester) offlineError(key string, err error) error {
	var dnsErr *net.DNSError

	switch {
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound,
		errors.Is(err, ErrNoAddresses),
		errors.Is(err, ErrAddressNotFound):
		return &ResolutionError{Key: key, Err: err}
	}

	return fmt.Errorf("cannot lookup %s with %s: %w", key, i.offline.Name(), err)
}

// NewIngester creates a new ingester. All parameters are mandatory.
func NewIngester(rich RichProvider, offline OfflineProvider, store Store, logger Logger) *Ingester {
	return &Ingester{
		rich:    rich,
		offline: offline,
		store:   store,
		logger:  logger,
	}
}
