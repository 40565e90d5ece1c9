package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/9seconds/geolocations/geolib"
	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS languages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	code       TEXT NOT NULL,
	name       TEXT NOT NULL,
	native     TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (code, name, native)
);

CREATE TABLE IF NOT EXISTS locations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	geoname_id INTEGER CHECK (geoname_id >= 0),
	capital    TEXT NOT NULL DEFAULT '',
	is_eu      BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS location_languages (
	location_id INTEGER NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
	language_id INTEGER NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
	PRIMARY KEY (location_id, language_id)
);

CREATE TABLE IF NOT EXISTS geolocations (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	ip             TEXT,
	ip_type        TEXT NOT NULL DEFAULT '',
	continent_code TEXT NOT NULL DEFAULT '',
	continent_name TEXT NOT NULL DEFAULT '',
	country_code   TEXT NOT NULL DEFAULT '',
	country_name   TEXT NOT NULL DEFAULT '',
	region_code    TEXT NOT NULL DEFAULT '',
	region_name    TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT '',
	postal_code    TEXT NOT NULL DEFAULT '',
	latitude       REAL NOT NULL,
	longitude      REAL NOT NULL,
	is_eu          BOOLEAN NOT NULL DEFAULT 0,
	location_id    INTEGER UNIQUE REFERENCES locations(id) ON DELETE SET NULL,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_location_languages_language_id ON location_languages(language_id);
CREATE INDEX IF NOT EXISTS idx_geolocations_ip ON geolocations(ip);
`

const sqliteGeoLocationColumns = `id, ip, ip_type,
	continent_code, continent_name, country_code, country_name,
	region_code, region_name, city, postal_code,
	latitude, longitude, is_eu, location_id, created_at, updated_at`

const sqliteLocationLanguagesQuery = `SELECT l.id, l.code, l.name, l.native, l.created_at, l.updated_at
	FROM languages l
	JOIN location_languages ll ON ll.language_id = l.id
	WHERE ll.location_id = ?
	ORDER BY l.id`

type sqliteQuerier interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// SQLite is a store which keeps everything in a SQLite database. It
// works with a single connection so writes are serialized.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a database at the given DSN. A DSN is either a
// path or a file: URI. Foreign keys are always enabled.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close() // nolint: errcheck

		return nil, eris.Wrap(err, "sqlite: ping")
	}

	return &SQLite{db: db}, nil
}

func sqliteDSN(dsn string) string {
	separator := "?"

	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)

	return eris.Wrap(err, "sqlite: ensure schema")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) CreateGeoLocation(ctx context.Context, record *geolib.Record) (*geolib.GeoLocation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}

	defer tx.Rollback() // nolint: errcheck

	now := time.Now().UTC()

	var locationID *int64

	if record.Location != nil {
		id, err := sqliteCreateLocation(ctx, tx, record.Location, now)
		if err != nil {
			return nil, err
		}

		locationID = &id
	}

	var id int64

	err = tx.QueryRowContext(ctx,
		`INSERT INTO geolocations (
			ip, ip_type, continent_code, continent_name, country_code, country_name,
			region_code, region_name, city, postal_code, latitude, longitude,
			is_eu, location_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		ipString(record.IP), string(record.IPType),
		record.ContinentCode, record.ContinentName,
		record.CountryCode, record.CountryName,
		record.RegionCode, record.RegionName,
		record.City, record.PostalCode,
		record.Coordinates.Latitude, record.Coordinates.Longitude,
		record.IsEU, locationID, now, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert geolocation")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return s.GetGeoLocation(ctx, id)
}

func sqliteCreateLocation(ctx context.Context, tx *sql.Tx, draft *geolib.LocationDraft, now time.Time) (int64, error) {
	var locationID int64

	err := tx.QueryRowContext(ctx,
		`INSERT INTO locations (geoname_id, capital, is_eu, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		draft.GeonameID, draft.Capital, draft.IsEU, now, now,
	).Scan(&locationID)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert location")
	}

	if err := sqliteLinkLanguageDrafts(ctx, tx, locationID, draft.Languages, now); err != nil {
		return 0, err
	}

	return locationID, nil
}

func sqliteUpdateLocationDraft(ctx context.Context, tx *sql.Tx, id int64, draft *geolib.LocationDraft, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE locations SET geoname_id = ?, capital = ?, is_eu = ?, updated_at = ?
		WHERE id = ?`,
		draft.GeonameID, draft.Capital, draft.IsEU, now, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update location %d", id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM location_languages WHERE location_id = ?`, id); err != nil {
		return eris.Wrapf(err, "sqlite: unlink languages of location %d", id)
	}

	return sqliteLinkLanguageDrafts(ctx, tx, id, draft.Languages, now)
}

func sqliteLinkLanguageDrafts(ctx context.Context, tx *sql.Tx, locationID int64, languages []geolib.LanguageDraft, now time.Time) error {
	for _, lang := range languages {
		var languageID int64

		// An existing language is reused, no-op update makes RETURNING
		// produce a row on conflict.
		err := tx.QueryRowContext(ctx,
			`INSERT INTO languages (code, name, native, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (code, name, native) DO UPDATE SET code = excluded.code
			RETURNING id`,
			lang.Code, lang.Name, lang.Native, now, now,
		).Scan(&languageID)
		if err != nil {
			return eris.Wrapf(err, "sqlite: get or create language %s", lang.Code)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO location_languages (location_id, language_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING`,
			locationID, languageID)
		if err != nil {
			return eris.Wrap(err, "sqlite: link language")
		}
	}

	return nil
}

// sqliteSetLanguageIDs replaces languages of a location with existing
// languages. Unknown ids are reported as a validation error.
func sqliteSetLanguageIDs(ctx context.Context, tx *sql.Tx, locationID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM location_languages WHERE location_id = ?`, locationID); err != nil {
		return eris.Wrapf(err, "sqlite: unlink languages of location %d", locationID)
	}

	for _, id := range uniqueIDs(ids) {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO location_languages (location_id, language_id)
			SELECT ?, id FROM languages WHERE id = ?`,
			locationID, id)
		if err != nil {
			return eris.Wrapf(err, "sqlite: link language %d", id)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return eris.Wrap(err, "sqlite: rows affected")
		}

		if affected == 0 {
			return geolib.NewUnknownLanguageError(id)
		}
	}

	return nil
}

func (s *SQLite) GetGeoLocation(ctx context.Context, id int64) (*geolib.GeoLocation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteGeoLocationColumns+` FROM geolocations WHERE id = ?`,
		id)

	geoLocation, err := sqliteScanGeoLocation(row)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "sqlite: geolocation %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "sqlite: get geolocation %d", id)
	}

	geoLocations := []geolib.GeoLocation{geoLocation}

	if err := s.attachLocations(ctx, geoLocations); err != nil {
		return nil, err
	}

	return &geoLocations[0], nil
}

func (s *SQLite) ListGeoLocations(ctx context.Context) ([]geolib.GeoLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteGeoLocationColumns+` FROM geolocations ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list geolocations")
	}

	rv := []geolib.GeoLocation{}

	for rows.Next() {
		geoLocation, err := sqliteScanGeoLocation(rows)
		if err != nil {
			rows.Close() // nolint: errcheck

			return nil, eris.Wrap(err, "sqlite: scan geolocation")
		}

		rv = append(rv, geoLocation)
	}

	// Single connection is busy until rows are closed.
	if err := rows.Close(); err != nil {
		return nil, eris.Wrap(err, "sqlite: close rows")
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate geolocations")
	}

	if err := s.attachLocations(ctx, rv); err != nil {
		return nil, err
	}

	return rv, nil
}

func (s *SQLite) UpdateGeoLocation(ctx context.Context, id int64, record *geolib.Record) (*geolib.GeoLocation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}

	defer tx.Rollback() // nolint: errcheck

	var locationID *int64

	err = tx.QueryRowContext(ctx, `SELECT location_id FROM geolocations WHERE id = ?`, id).Scan(&locationID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "sqlite: geolocation %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "sqlite: get geolocation %d", id)
	}

	now := time.Now().UTC()

	switch {
	case record.Location == nil:
	case locationID != nil:
		if err := sqliteUpdateLocationDraft(ctx, tx, *locationID, record.Location, now); err != nil {
			return nil, err
		}
	default:
		newID, err := sqliteCreateLocation(ctx, tx, record.Location, now)
		if err != nil {
			return nil, err
		}

		locationID = &newID
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE geolocations SET
			ip = ?, ip_type = ?, continent_code = ?, continent_name = ?,
			country_code = ?, country_name = ?, region_code = ?, region_name = ?,
			city = ?, postal_code = ?, latitude = ?, longitude = ?,
			is_eu = ?, location_id = ?, updated_at = ?
		WHERE id = ?`,
		ipString(record.IP), string(record.IPType),
		record.ContinentCode, record.ContinentName,
		record.CountryCode, record.CountryName,
		record.RegionCode, record.RegionName,
		record.City, record.PostalCode,
		record.Coordinates.Latitude, record.Coordinates.Longitude,
		record.IsEU, locationID, now, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update geolocation %d", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return s.GetGeoLocation(ctx, id)
}

func (s *SQLite) attachLocations(ctx context.Context, geoLocations []geolib.GeoLocation) error {
	for i := range geoLocations {
		if geoLocations[i].LocationID == nil {
			continue
		}

		location, err := sqliteGetLocation(ctx, s.db, *geoLocations[i].LocationID)
		if err != nil {
			return err
		}

		geoLocations[i].Location = location
	}

	return nil
}

func (s *SQLite) DeleteGeoLocation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geolocations WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete geolocation %d", id)
	}

	return sqliteCheckRowsAffected(res, "geolocation", id)
}

func (s *SQLite) CreateLocation(ctx context.Context, changes *geolib.LocationChanges) (*geolib.Location, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}

	defer tx.Rollback() // nolint: errcheck

	location := geolib.Location{}
	now := time.Now().UTC()

	changes.Apply(&location)

	err = tx.QueryRowContext(ctx,
		`INSERT INTO locations (geoname_id, capital, is_eu, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		location.GeonameID, location.Capital, location.IsEU, now, now,
	).Scan(&location.ID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert location")
	}

	if err := sqliteSetLanguageIDs(ctx, tx, location.ID, changes.LanguageIDs.V); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return s.GetLocation(ctx, location.ID)
}

func (s *SQLite) UpdateLocation(ctx context.Context, id int64, changes *geolib.LocationChanges) (*geolib.Location, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}

	defer tx.Rollback() // nolint: errcheck

	row := tx.QueryRowContext(ctx,
		`SELECT id, geoname_id, capital, is_eu, created_at, updated_at
		FROM locations WHERE id = ?`,
		id)

	location, err := scanLocation(row)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "sqlite: location %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "sqlite: get location %d", id)
	}

	changes.Apply(&location)

	_, err = tx.ExecContext(ctx,
		`UPDATE locations SET geoname_id = ?, capital = ?, is_eu = ?, updated_at = ?
		WHERE id = ?`,
		location.GeonameID, location.Capital, location.IsEU, time.Now().UTC(), id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update location %d", id)
	}

	if changes.LanguageIDs.Present {
		if err := sqliteSetLanguageIDs(ctx, tx, id, changes.LanguageIDs.V); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return s.GetLocation(ctx, id)
}

func (s *SQLite) GetLocation(ctx context.Context, id int64) (*geolib.Location, error) {
	return sqliteGetLocation(ctx, s.db, id)
}

func sqliteGetLocation(ctx context.Context, q sqliteQuerier, id int64) (*geolib.Location, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, geoname_id, capital, is_eu, created_at, updated_at
		FROM locations WHERE id = ?`,
		id)

	location, err := scanLocation(row)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "sqlite: location %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "sqlite: get location %d", id)
	}

	languages, err := sqliteListLanguages(ctx, q, sqliteLocationLanguagesQuery, id)
	if err != nil {
		return nil, err
	}

	location.Languages = languages

	return &location, nil
}

func (s *SQLite) ListLocations(ctx context.Context) ([]geolib.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, geoname_id, capital, is_eu, created_at, updated_at
		FROM locations ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list locations")
	}

	rv := []geolib.Location{}

	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			rows.Close() // nolint: errcheck

			return nil, eris.Wrap(err, "sqlite: scan location")
		}

		rv = append(rv, location)
	}

	if err := rows.Close(); err != nil {
		return nil, eris.Wrap(err, "sqlite: close rows")
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate locations")
	}

	for i := range rv {
		languages, err := sqliteListLanguages(ctx, s.db, sqliteLocationLanguagesQuery, rv[i].ID)
		if err != nil {
			return nil, err
		}

		rv[i].Languages = languages
	}

	return rv, nil
}

// DeleteLocation removes a location. Geolocations which reference it
// are kept, their reference becomes NULL.
func (s *SQLite) DeleteLocation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete location %d", id)
	}

	return sqliteCheckRowsAffected(res, "location", id)
}

func (s *SQLite) CreateLanguage(ctx context.Context, draft geolib.LanguageDraft) (*geolib.Language, error) {
	now := time.Now().UTC()
	rv := &geolib.Language{
		Code:      draft.Code,
		Name:      draft.Name,
		Native:    draft.Native,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO languages (code, name, native, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		draft.Code, draft.Name, draft.Native, now, now,
	).Scan(&rv.ID)

	var sqliteErr *sqlite.Error

	switch {
	case errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return nil, languageConflict(err)
	case err != nil:
		return nil, eris.Wrap(err, "sqlite: insert language")
	}

	return rv, nil
}

func (s *SQLite) GetLanguage(ctx context.Context, id int64) (*geolib.Language, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, native, created_at, updated_at
		FROM languages WHERE id = ?`,
		id)

	language, err := scanLanguage(row)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "sqlite: language %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "sqlite: get language %d", id)
	}

	return &language, nil
}

func (s *SQLite) UpdateLanguage(ctx context.Context, id int64, draft geolib.LanguageDraft) (*geolib.Language, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE languages SET code = ?, name = ?, native = ?, updated_at = ?
		WHERE id = ?`,
		draft.Code, draft.Name, draft.Native, time.Now().UTC(), id)

	var sqliteErr *sqlite.Error

	switch {
	case errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return nil, languageConflict(err)
	case err != nil:
		return nil, eris.Wrapf(err, "sqlite: update language %d", id)
	}

	if err := sqliteCheckRowsAffected(res, "language", id); err != nil {
		return nil, err
	}

	return s.GetLanguage(ctx, id)
}

// DeleteLanguage removes a language and detaches it from all
// locations.
func (s *SQLite) DeleteLanguage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM languages WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete language %d", id)
	}

	return sqliteCheckRowsAffected(res, "language", id)
}

func (s *SQLite) ListLanguages(ctx context.Context) ([]geolib.Language, error) {
	return sqliteListLanguages(ctx, s.db,
		`SELECT id, code, name, native, created_at, updated_at
		FROM languages ORDER BY id`)
}

func sqliteListLanguages(ctx context.Context, q sqliteQuerier, query string, args ...any) ([]geolib.Language, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list languages")
	}

	defer rows.Close()

	rv := []geolib.Language{}

	for rows.Next() {
		language, err := scanLanguage(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan language")
		}

		rv = append(rv, language)
	}

	return rv, eris.Wrap(rows.Err(), "sqlite: iterate languages")
}

func sqliteCheckRowsAffected(res sql.Result, entity string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}

	if affected == 0 {
		return eris.Wrapf(geolib.ErrNotFound, "sqlite: %s %d", entity, id)
	}

	return nil
}

func sqliteScanGeoLocation(row rowScanner) (geolib.GeoLocation, error) {
	var (
		rv     geolib.GeoLocation
		ip     *string
		ipType string
	)

	err := row.Scan(&rv.ID, &ip, &ipType,
		&rv.ContinentCode, &rv.ContinentName,
		&rv.CountryCode, &rv.CountryName,
		&rv.RegionCode, &rv.RegionName,
		&rv.City, &rv.PostalCode,
		&rv.Coordinates.Latitude, &rv.Coordinates.Longitude,
		&rv.IsEU, &rv.LocationID, &rv.CreatedAt, &rv.UpdatedAt)

	rv.IP = parseIP(ip)
	rv.IPType = geolib.IPType(ipType)

	return rv, err
}
