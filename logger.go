package main

import (
	"io"

	"github.com/9seconds/geolocations/geolib"
	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog zerolog.Logger
	ingestLog zerolog.Logger
	updateLog zerolog.Logger
}

func (l *logger) LookupError(key, provider string, err error) {
	l.lookupLog.Warn().Str("provider", provider).Str("key", key).Err(err).Msg("")
}

func (l *logger) IngestInfo(key string, shape geolib.Shape, id int64) {
	l.ingestLog.Info().Str("key", key).Stringer("shape", shape).Int64("id", id).Msg("Geolocation was created")
}

func (l *logger) IngestError(key string, err error) {
	l.ingestLog.Error().Str("key", key).Err(err).Msg("")
}

func (l *logger) UpdateInfo(provider, msg string) {
	l.updateLog.Info().Str("provider", provider).Msg(msg)
}

func (l *logger) UpdateError(provider string, err error) {
	l.updateLog.Error().Str("provider", provider).Err(err).Msg("")
}

func newLogger(writer io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	root := zerolog.New(writer).Level(level).With().Timestamp().Logger()

	return &logger{
		lookupLog: root.With().Str("event_name", "lookup").Logger(),
		ingestLog: root.With().Str("event_name", "ingest").Logger(),
		updateLog: root.With().Str("event_name", "update").Logger(),
	}
}
