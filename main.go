package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/9seconds/geolocations/geolib"
	"gopkg.in/alecthomas/kingpin.v2"
)

var version = "dev"

var (
	app = kingpin.New(
		"geolocations",
		"Service which stores geolocations of IP addresses and hostnames")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOLOCATIONS_DEBUG").
		Bool()
	configFile = app.Arg("config-path", "Path to the config.").
			Required().
			File()
)

func main() {
	app.Version(version)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	defer (*configFile).Close() // nolint: errcheck

	if err := loadDotEnv(); err != nil {
		return err
	}

	conf, err := parseConfig(*configFile)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	log := newLogger(os.Stderr, *debug)

	st, err := makeStore(ctx, conf)
	if err != nil {
		return err
	}

	defer st.Close() // nolint: errcheck

	richProvider, err := makeRichProvider(conf)
	if err != nil {
		return err
	}

	offlineProvider, err := makeOfflineProvider(conf)
	if err != nil {
		return err
	}

	updater := geolib.NewUpdater(offlineProvider, log)
	if err := updater.Start(ctx); err != nil {
		return fmt.Errorf("cannot start updater of offline database: %w", err)
	}

	defer updater.Shutdown()

	ingester := geolib.NewIngester(richProvider, offlineProvider, st, log)
	handler := geolib.NewHTTPHandler(ingester, st, conf.GetRequestTimeout())

	srv := &http.Server{
		Addr:              conf.GetListen(),
		Handler:           withBasicAuth(handler, conf.GetBasicAuthUser(), conf.GetBasicAuthPassword()),
		ReadHeaderTimeout: conf.GetRequestTimeout(),
	}

	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.GetShutdownTimeout())
		defer shutdownCancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	serverErr := srv.ListenAndServe()

	cancel()
	<-shutdownDone

	if !errors.Is(serverErr, http.ErrServerClosed) {
		return fmt.Errorf("server is closed: %w", serverErr)
	}

	return nil
}
