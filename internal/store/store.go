// Package store is the reference data persistence layer (§3 "Persistence
// (added)", §6): a SQLite database loaded once at engine start, scanned
// into tagged structs through jmoiron/sqlx, and fed into the pipeline's
// tries asynchronously behind an initialization barrier (§5).
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// Store wraps the SQLite handle and the tables mirroring the row types of
// §3 1:1 (prefectures, cities, towns, rsdt_blks, rsdt_dsps, parcels).
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to (and, if absent, creates) the SQLite file at path using
// the cgo-free modernc.org/sqlite driver, so the reference store never
// requires a C toolchain.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS prefectures (
	pref_key TEXT PRIMARY KEY,
	lg_code  TEXT NOT NULL,
	pref     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cities (
	key       TEXT PRIMARY KEY,
	pref_key  TEXT NOT NULL,
	city_key  TEXT NOT NULL,
	lg_code   TEXT NOT NULL,
	pref      TEXT NOT NULL,
	county    TEXT,
	city      TEXT,
	ward      TEXT
);
CREATE TABLE IF NOT EXISTS towns (
	key           TEXT PRIMARY KEY,
	pref_key      TEXT NOT NULL,
	city_key      TEXT NOT NULL,
	town_key      TEXT NOT NULL,
	rsdt_addr_flg INTEGER NOT NULL DEFAULT 0,
	rep_lat       REAL,
	rep_lon       REAL,
	koaza         TEXT,
	pref          TEXT,
	county        TEXT,
	city          TEXT,
	ward          TEXT,
	lg_code       TEXT,
	oaza_cho      TEXT,
	machiaza_id   TEXT,
	chome         TEXT
);
CREATE TABLE IF NOT EXISTS rsdt_blks (
	key         TEXT PRIMARY KEY,
	rsdtblk_key TEXT NOT NULL,
	town_key    TEXT NOT NULL,
	block       TEXT,
	block_id    TEXT,
	rep_lat     REAL,
	rep_lon     REAL
);
CREATE TABLE IF NOT EXISTS rsdt_dsps (
	key         TEXT PRIMARY KEY,
	rsdtdsp_key TEXT NOT NULL,
	town_key    TEXT NOT NULL,
	rsdt_num    TEXT,
	rsdt_id     TEXT,
	rsdt_num2   TEXT,
	rsdt2_id    TEXT,
	rep_lat     REAL,
	rep_lon     REAL
);
CREATE TABLE IF NOT EXISTS parcels (
	key      TEXT PRIMARY KEY,
	prc_id   TEXT NOT NULL,
	town_key TEXT NOT NULL,
	prc_num1 TEXT,
	prc_num2 TEXT,
	prc_num3 TEXT,
	rep_lat  REAL,
	rep_lon  REAL
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// LoadPrefectures scans the entire prefectures table.
func (s *Store) LoadPrefectures(ctx context.Context) ([]addr.PrefectureInfo, error) {
	var rows []addr.PrefectureInfo
	err := s.db.SelectContext(ctx, &rows, `SELECT pref_key, lg_code, pref FROM prefectures`)
	return rows, err
}

// LoadCities scans the entire cities table.
func (s *Store) LoadCities(ctx context.Context) ([]addr.CityPattern, error) {
	var rows []addr.CityPattern
	err := s.db.SelectContext(ctx, &rows, `SELECT pref_key, city_key, lg_code, pref,
		COALESCE(county, '') AS county, COALESCE(city, '') AS city, COALESCE(ward, '') AS ward, key FROM cities`)
	return rows, err
}

// LoadTowns scans the entire towns table.
func (s *Store) LoadTowns(ctx context.Context) ([]addr.TownMatchingInfo, error) {
	var rows []addr.TownMatchingInfo
	err := s.db.SelectContext(ctx, &rows, `SELECT pref_key, city_key, town_key, rsdt_addr_flg, rep_lat, rep_lon,
		koaza, pref, county, city, ward, lg_code, oaza_cho, machiaza_id, chome, key FROM towns`)
	return rows, err
}

// LoadRsdtBlks scans the entire rsdt_blks table.
func (s *Store) LoadRsdtBlks(ctx context.Context) ([]addr.RsdtBlkInfo, error) {
	var rows []addr.RsdtBlkInfo
	err := s.db.SelectContext(ctx, &rows, `SELECT rsdtblk_key, town_key, block, block_id, rep_lat, rep_lon, key FROM rsdt_blks`)
	return rows, err
}

// LoadRsdtDsps scans the entire rsdt_dsps table.
func (s *Store) LoadRsdtDsps(ctx context.Context) ([]addr.RsdtDspInfo, error) {
	var rows []addr.RsdtDspInfo
	err := s.db.SelectContext(ctx, &rows, `SELECT rsdtdsp_key, town_key, rsdt_num, rsdt_id, rsdt_num2, rsdt2_id, rep_lat, rep_lon, key FROM rsdt_dsps`)
	return rows, err
}

// LoadParcels scans the entire parcels table.
func (s *Store) LoadParcels(ctx context.Context) ([]addr.ParcelInfo, error) {
	var rows []addr.ParcelInfo
	err := s.db.SelectContext(ctx, &rows, `SELECT prc_id, town_key, prc_num1, prc_num2, prc_num3, rep_lat, rep_lon, key FROM parcels`)
	return rows, err
}
