package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/9seconds/geolocations/geolib"
	"github.com/9seconds/geolocations/providers"
	"github.com/9seconds/geolocations/store"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeStore(ctx context.Context, conf *config) (geolib.Store, error) {
	var (
		st  geolib.Store
		err error
	)

	switch conf.GetDatabaseDriver() {
	case DatabaseDriverPostgres:
		st, err = store.NewPostgres(ctx, conf.GetDatabaseDSN())
	default:
		if err := os.MkdirAll(conf.GetRootDirectory(), 0o750); err != nil {
			return nil, fmt.Errorf("cannot create root directory: %w", err)
		}

		st, err = store.NewSQLite(conf.GetDatabaseDSN())
	}

	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close() // nolint: errcheck

		return nil, fmt.Errorf("cannot ensure database schema: %w", err)
	}

	return st, nil
}

func makeRichProvider(conf *config) (geolib.RichProvider, error) {
	prov := providers.NewIPStack(makeNewHTTPClient(conf.IPStack.configHTTPClient),
		conf.GetIPStackAccessKey(),
		conf.IPStack.Secure)

	cached, err := geolib.NewCachingRichProvider(prov,
		conf.IPStack.GetCacheSize(),
		conf.IPStack.GetCacheTTL())
	if err != nil {
		return nil, fmt.Errorf("cannot create a cache for ipstack provider: %w", err)
	}

	return cached, nil
}

func makeOfflineProvider(conf *config) (*providers.Maxmind, error) {
	baseDir := filepath.Join(conf.GetRootDirectory(), conf.Maxmind.GetDirectory())
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("cannot create base directory for maxmind provider: %w", err)
	}

	return providers.NewMaxmindLite(makeNewHTTPClient(conf.Maxmind.configHTTPClient),
		nil,
		conf.Maxmind.GetUpdateEvery(),
		baseDir,
		conf.GetMaxmindLicenseKey()), nil
}

func makeNewHTTPClient(conf configHTTPClient) geolib.HTTPClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{
		Timeout: conf.GetTimeout(),
		Jar:     jar,
	}

	return geolib.NewHTTPClient(httpClient,
		"geolocations/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}
