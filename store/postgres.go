package store

import (
	"context"
	"errors"
	"time"

	"github.com/9seconds/geolocations/geolib"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

const (
	postgresSRID            = 4326
	postgresUniqueViolation = "23505"
)

const postgresGeoLocationColumns = `id, host(ip), ip_type,
	continent_code, continent_name, country_code, country_name,
	region_code, region_name, city, postal_code,
	ST_AsEWKB(coordinates), is_eu, location_id, created_at, updated_at`

const postgresLocationLanguagesQuery = `SELECT l.id, l.code, l.name, l.native, l.created_at, l.updated_at
	FROM languages l
	JOIN location_languages ll ON ll.language_id = l.id
	WHERE ll.location_id = $1
	ORDER BY l.id`

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS languages (
	id         BIGSERIAL PRIMARY KEY,
	code       VARCHAR(2) NOT NULL,
	name       VARCHAR(25) NOT NULL,
	native     VARCHAR(25) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (code, name, native)
);

CREATE TABLE IF NOT EXISTS locations (
	id         BIGSERIAL PRIMARY KEY,
	geoname_id BIGINT CHECK (geoname_id >= 0),
	capital    VARCHAR(163) NOT NULL DEFAULT '',
	is_eu      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS location_languages (
	location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
	language_id BIGINT NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
	PRIMARY KEY (location_id, language_id)
);

CREATE TABLE IF NOT EXISTS geolocations (
	id             BIGSERIAL PRIMARY KEY,
	ip             INET,
	ip_type        VARCHAR(4) NOT NULL DEFAULT '',
	continent_code VARCHAR(2) NOT NULL DEFAULT '',
	continent_name VARCHAR(13) NOT NULL DEFAULT '',
	country_code   VARCHAR(2) NOT NULL DEFAULT '',
	country_name   VARCHAR(56) NOT NULL DEFAULT '',
	region_code    VARCHAR(2) NOT NULL DEFAULT '',
	region_name    VARCHAR(85) NOT NULL DEFAULT '',
	city           VARCHAR(163) NOT NULL DEFAULT '',
	postal_code    VARCHAR(12) NOT NULL DEFAULT '',
	coordinates    geometry(Point, 4326) NOT NULL,
	is_eu          BOOLEAN NOT NULL DEFAULT FALSE,
	location_id    BIGINT UNIQUE REFERENCES locations(id) ON DELETE SET NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_location_languages_language_id ON location_languages(language_id);
CREATE INDEX IF NOT EXISTS idx_geolocations_ip ON geolocations(ip);
CREATE INDEX IF NOT EXISTS idx_geolocations_coordinates ON geolocations USING GIST (coordinates);
`

type postgresQuerier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Pool is a subset of *pgxpool.Pool which is used by Postgres store.
type Pool interface {
	postgresQuerier

	Begin(context.Context) (pgx.Tx, error)
}

// Postgres is a store which keeps data in PostgreSQL. PostGIS
// extension is required: coordinates are stored as points in WGS 84.
type Postgres struct {
	pool    Pool
	closeFn func()
}

// NewPostgres connects to a database and checks that connection is
// alive.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, eris.Wrap(err, "postgres: ping")
	}

	return NewPostgresWithPool(pool, pool.Close), nil
}

// NewPostgresWithPool builds a store on top of existing pool. closeFn
// is called on Close, it could be nil.
func NewPostgresWithPool(pool Pool, closeFn func()) *Postgres {
	return &Postgres{
		pool:    pool,
		closeFn: closeFn,
	}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)

	return eris.Wrap(err, "postgres: ensure schema")
}

func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}

	return nil
}

func (p *Postgres) CreateGeoLocation(ctx context.Context, record *geolib.Record) (*geolib.GeoLocation, error) {
	coordinates, err := encodeCoordinates(record.Coordinates)
	if err != nil {
		return nil, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}

	defer tx.Rollback(ctx) // nolint: errcheck

	now := time.Now().UTC()

	var locationID *int64

	if record.Location != nil {
		id, err := postgresCreateLocation(ctx, tx, record.Location, now)
		if err != nil {
			return nil, err
		}

		locationID = &id
	}

	var id int64

	err = tx.QueryRow(ctx,
		`INSERT INTO geolocations (
			ip, ip_type, continent_code, continent_name, country_code, country_name,
			region_code, region_name, city, postal_code, coordinates,
			is_eu, location_id, created_at, updated_at
		) VALUES (
			$1::inet, $2, $3, $4, $5, $6, $7, $8, $9, $10, ST_GeomFromEWKB($11),
			$12, $13, $14, $15
		) RETURNING id`,
		ipString(record.IP), string(record.IPType),
		record.ContinentCode, record.ContinentName,
		record.CountryCode, record.CountryName,
		record.RegionCode, record.RegionName,
		record.City, record.PostalCode, coordinates,
		record.IsEU, locationID, now, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert geolocation")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}

	return p.GetGeoLocation(ctx, id)
}

func postgresCreateLocation(ctx context.Context, tx pgx.Tx, draft *geolib.LocationDraft, now time.Time) (int64, error) {
	var locationID int64

	err := tx.QueryRow(ctx,
		`INSERT INTO locations (geoname_id, capital, is_eu, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		draft.GeonameID, draft.Capital, draft.IsEU, now, now,
	).Scan(&locationID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert location")
	}

	if err := postgresLinkLanguageDrafts(ctx, tx, locationID, draft.Languages, now); err != nil {
		return 0, err
	}

	return locationID, nil
}

func postgresUpdateLocationDraft(ctx context.Context, tx pgx.Tx, id int64, draft *geolib.LocationDraft, now time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE locations SET geoname_id = $1, capital = $2, is_eu = $3, updated_at = $4
		WHERE id = $5`,
		draft.GeonameID, draft.Capital, draft.IsEU, now, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update location %d", id)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM location_languages WHERE location_id = $1`, id); err != nil {
		return eris.Wrapf(err, "postgres: unlink languages of location %d", id)
	}

	return postgresLinkLanguageDrafts(ctx, tx, id, draft.Languages, now)
}

func postgresLinkLanguageDrafts(ctx context.Context, tx pgx.Tx, locationID int64, languages []geolib.LanguageDraft, now time.Time) error {
	for _, lang := range languages {
		var languageID int64

		err := tx.QueryRow(ctx,
			`INSERT INTO languages (code, name, native, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code, name, native) DO UPDATE SET code = EXCLUDED.code
			RETURNING id`,
			lang.Code, lang.Name, lang.Native, now, now,
		).Scan(&languageID)
		if err != nil {
			return eris.Wrapf(err, "postgres: get or create language %s", lang.Code)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO location_languages (location_id, language_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			locationID, languageID)
		if err != nil {
			return eris.Wrap(err, "postgres: link language")
		}
	}

	return nil
}

// postgresSetLanguageIDs replaces languages of a location with
// existing languages. Unknown ids are reported as a validation error.
func postgresSetLanguageIDs(ctx context.Context, tx pgx.Tx, locationID int64, ids []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM location_languages WHERE location_id = $1`, locationID); err != nil {
		return eris.Wrapf(err, "postgres: unlink languages of location %d", locationID)
	}

	for _, id := range uniqueIDs(ids) {
		tag, err := tx.Exec(ctx,
			`INSERT INTO location_languages (location_id, language_id)
			SELECT $1, id FROM languages WHERE id = $2`,
			locationID, id)
		if err != nil {
			return eris.Wrapf(err, "postgres: link language %d", id)
		}

		if tag.RowsAffected() == 0 {
			return geolib.NewUnknownLanguageError(id)
		}
	}

	return nil
}

func (p *Postgres) GetGeoLocation(ctx context.Context, id int64) (*geolib.GeoLocation, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+postgresGeoLocationColumns+` FROM geolocations WHERE id = $1`,
		id)

	geoLocation, err := postgresScanGeoLocation(row)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "postgres: geolocation %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "postgres: get geolocation %d", id)
	}

	geoLocations := []geolib.GeoLocation{geoLocation}

	if err := p.attachLocations(ctx, geoLocations); err != nil {
		return nil, err
	}

	return &geoLocations[0], nil
}

func (p *Postgres) ListGeoLocations(ctx context.Context) ([]geolib.GeoLocation, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+postgresGeoLocationColumns+` FROM geolocations ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list geolocations")
	}

	rv := []geolib.GeoLocation{}

	for rows.Next() {
		geoLocation, err := postgresScanGeoLocation(rows)
		if err != nil {
			rows.Close()

			return nil, eris.Wrap(err, "postgres: scan geolocation")
		}

		rv = append(rv, geoLocation)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate geolocations")
	}

	if err := p.attachLocations(ctx, rv); err != nil {
		return nil, err
	}

	return rv, nil
}

func (p *Postgres) UpdateGeoLocation(ctx context.Context, id int64, record *geolib.Record) (*geolib.GeoLocation, error) {
	coordinates, err := encodeCoordinates(record.Coordinates)
	if err != nil {
		return nil, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}

	defer tx.Rollback(ctx) // nolint: errcheck

	var locationID *int64

	err = tx.QueryRow(ctx,
		`SELECT location_id FROM geolocations WHERE id = $1 FOR UPDATE`,
		id).Scan(&locationID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "postgres: geolocation %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "postgres: get geolocation %d", id)
	}

	now := time.Now().UTC()

	switch {
	case record.Location == nil:
	case locationID != nil:
		if err := postgresUpdateLocationDraft(ctx, tx, *locationID, record.Location, now); err != nil {
			return nil, err
		}
	default:
		newID, err := postgresCreateLocation(ctx, tx, record.Location, now)
		if err != nil {
			return nil, err
		}

		locationID = &newID
	}

	_, err = tx.Exec(ctx,
		`UPDATE geolocations SET
			ip = $1::inet, ip_type = $2, continent_code = $3, continent_name = $4,
			country_code = $5, country_name = $6, region_code = $7, region_name = $8,
			city = $9, postal_code = $10, coordinates = ST_GeomFromEWKB($11),
			is_eu = $12, location_id = $13, updated_at = $14
		WHERE id = $15`,
		ipString(record.IP), string(record.IPType),
		record.ContinentCode, record.ContinentName,
		record.CountryCode, record.CountryName,
		record.RegionCode, record.RegionName,
		record.City, record.PostalCode, coordinates,
		record.IsEU, locationID, now, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update geolocation %d", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}

	return p.GetGeoLocation(ctx, id)
}

func (p *Postgres) attachLocations(ctx context.Context, geoLocations []geolib.GeoLocation) error {
	for i := range geoLocations {
		if geoLocations[i].LocationID == nil {
			continue
		}

		location, err := p.GetLocation(ctx, *geoLocations[i].LocationID)
		if err != nil {
			return err
		}

		geoLocations[i].Location = location
	}

	return nil
}

func (p *Postgres) DeleteGeoLocation(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM geolocations WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete geolocation %d", id)
	}

	if tag.RowsAffected() == 0 {
		return eris.Wrapf(geolib.ErrNotFound, "postgres: geolocation %d", id)
	}

	return nil
}

func (p *Postgres) CreateLocation(ctx context.Context, changes *geolib.LocationChanges) (*geolib.Location, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}

	defer tx.Rollback(ctx) // nolint: errcheck

	location := geolib.Location{}
	now := time.Now().UTC()

	changes.Apply(&location)

	err = tx.QueryRow(ctx,
		`INSERT INTO locations (geoname_id, capital, is_eu, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		location.GeonameID, location.Capital, location.IsEU, now, now,
	).Scan(&location.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert location")
	}

	if err := postgresSetLanguageIDs(ctx, tx, location.ID, changes.LanguageIDs.V); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}

	return p.GetLocation(ctx, location.ID)
}

func (p *Postgres) UpdateLocation(ctx context.Context, id int64, changes *geolib.LocationChanges) (*geolib.Location, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}

	defer tx.Rollback(ctx) // nolint: errcheck

	row := tx.QueryRow(ctx,
		`SELECT id, geoname_id, capital, is_eu, created_at, updated_at
		FROM locations WHERE id = $1 FOR UPDATE`,
		id)

	location, err := scanLocation(row)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "postgres: location %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "postgres: get location %d", id)
	}

	changes.Apply(&location)

	_, err = tx.Exec(ctx,
		`UPDATE locations SET geoname_id = $1, capital = $2, is_eu = $3, updated_at = $4
		WHERE id = $5`,
		location.GeonameID, location.Capital, location.IsEU, time.Now().UTC(), id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update location %d", id)
	}

	if changes.LanguageIDs.Present {
		if err := postgresSetLanguageIDs(ctx, tx, id, changes.LanguageIDs.V); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}

	return p.GetLocation(ctx, id)
}

func (p *Postgres) GetLocation(ctx context.Context, id int64) (*geolib.Location, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, geoname_id, capital, is_eu, created_at, updated_at
		FROM locations WHERE id = $1`,
		id)

	location, err := scanLocation(row)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "postgres: location %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "postgres: get location %d", id)
	}

	location.Languages, err = postgresListLanguages(ctx, p.pool, postgresLocationLanguagesQuery, id)
	if err != nil {
		return nil, err
	}

	return &location, nil
}

func (p *Postgres) ListLocations(ctx context.Context) ([]geolib.Location, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, geoname_id, capital, is_eu, created_at, updated_at
		FROM locations ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list locations")
	}

	rv := []geolib.Location{}

	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			rows.Close()

			return nil, eris.Wrap(err, "postgres: scan location")
		}

		rv = append(rv, location)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate locations")
	}

	for i := range rv {
		rv[i].Languages, err = postgresListLanguages(ctx, p.pool, postgresLocationLanguagesQuery, rv[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return rv, nil
}

// DeleteLocation removes a location. Geolocations which reference it
// are kept, their reference becomes NULL.
func (p *Postgres) DeleteLocation(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete location %d", id)
	}

	if tag.RowsAffected() == 0 {
		return eris.Wrapf(geolib.ErrNotFound, "postgres: location %d", id)
	}

	return nil
}

func (p *Postgres) CreateLanguage(ctx context.Context, draft geolib.LanguageDraft) (*geolib.Language, error) {
	now := time.Now().UTC()
	rv := &geolib.Language{
		Code:      draft.Code,
		Name:      draft.Name,
		Native:    draft.Native,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := p.pool.QueryRow(ctx,
		`INSERT INTO languages (code, name, native, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		draft.Code, draft.Name, draft.Native, now, now,
	).Scan(&rv.ID)

	var pgErr *pgconn.PgError

	switch {
	case errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation:
		return nil, languageConflict(err)
	case err != nil:
		return nil, eris.Wrap(err, "postgres: insert language")
	}

	return rv, nil
}

func (p *Postgres) GetLanguage(ctx context.Context, id int64) (*geolib.Language, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, code, name, native, created_at, updated_at
		FROM languages WHERE id = $1`,
		id)

	language, err := scanLanguage(row)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "postgres: language %d", id)
	case err != nil:
		return nil, eris.Wrapf(err, "postgres: get language %d", id)
	}

	return &language, nil
}

func (p *Postgres) UpdateLanguage(ctx context.Context, id int64, draft geolib.LanguageDraft) (*geolib.Language, error) {
	language := &geolib.Language{
		Code:   draft.Code,
		Name:   draft.Name,
		Native: draft.Native,
	}

	err := p.pool.QueryRow(ctx,
		`UPDATE languages SET code = $1, name = $2, native = $3, updated_at = $4
		WHERE id = $5
		RETURNING id, created_at, updated_at`,
		draft.Code, draft.Name, draft.Native, time.Now().UTC(), id,
	).Scan(&language.ID, &language.CreatedAt, &language.UpdatedAt)

	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, eris.Wrapf(geolib.ErrNotFound, "postgres: language %d", id)
	case errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation:
		return nil, languageConflict(err)
	case err != nil:
		return nil, eris.Wrapf(err, "postgres: update language %d", id)
	}

	return language, nil
}

// DeleteLanguage removes a language and detaches it from all
// locations.
func (p *Postgres) DeleteLanguage(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM languages WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete language %d", id)
	}

	if tag.RowsAffected() == 0 {
		return eris.Wrapf(geolib.ErrNotFound, "postgres: language %d", id)
	}

	return nil
}

func (p *Postgres) ListLanguages(ctx context.Context) ([]geolib.Language, error) {
	return postgresListLanguages(ctx, p.pool,
		`SELECT id, code, name, native, created_at, updated_at
		FROM languages ORDER BY id`)
}

func postgresListLanguages(ctx context.Context, q postgresQuerier, query string, args ...any) ([]geolib.Language, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list languages")
	}

	defer rows.Close()

	rv := []geolib.Language{}

	for rows.Next() {
		language, err := scanLanguage(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan language")
		}

		rv = append(rv, language)
	}

	return rv, eris.Wrap(rows.Err(), "postgres: iterate languages")
}

func postgresScanGeoLocation(row rowScanner) (geolib.GeoLocation, error) {
	var (
		rv          geolib.GeoLocation
		ip          *string
		ipType      string
		coordinates []byte
	)

	err := row.Scan(&rv.ID, &ip, &ipType,
		&rv.ContinentCode, &rv.ContinentName,
		&rv.CountryCode, &rv.CountryName,
		&rv.RegionCode, &rv.RegionName,
		&rv.City, &rv.PostalCode, &coordinates,
		&rv.IsEU, &rv.LocationID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return rv, err
	}

	rv.IP = parseIP(ip)
	rv.IPType = geolib.IPType(ipType)
	rv.Coordinates, err = decodeCoordinates(coordinates)

	return rv, err
}

// encodeCoordinates builds EWKB of a point. X is longitude, Y is
// latitude.
func encodeCoordinates(coords geolib.Coordinates) ([]byte, error) {
	point := geom.NewPointFlat(geom.XY, []float64{coords.Longitude, coords.Latitude}).
		SetSRID(postgresSRID)

	data, err := ewkb.Marshal(point, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode coordinates")
	}

	return data, nil
}

func decodeCoordinates(data []byte) (geolib.Coordinates, error) {
	value, err := ewkb.Unmarshal(data)
	if err != nil {
		return geolib.Coordinates{}, eris.Wrap(err, "postgres: decode coordinates")
	}

	point, ok := value.(*geom.Point)
	if !ok {
		return geolib.Coordinates{}, eris.Errorf("postgres: unexpected geometry %T", value)
	}

	return geolib.Coordinates{
		Latitude:  point.Y(),
		Longitude: point.X(),
	}, nil
}
