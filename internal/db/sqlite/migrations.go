package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion is the version reached after every migration.
const CurrentSchemaVersion = "1.2.0"

// Migration is one versioned schema change.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations lists every migration in order.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up, Down: migrationV1Down},
	{Version: "1.1.0", Up: migrationV11Up, Down: migrationV11Down},
	{Version: "1.2.0", Up: migrationV12Up, Down: migrationV12Down},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS buildings_table_2 (
    building_id INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    "titleEn" TEXT NOT NULL DEFAULT '',
    "buildingTypes" TEXT NOT NULL DEFAULT '',
    "buildingTypesEn" TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    "locationEn_from_datasheetChunkEn" TEXT NOT NULL DEFAULT '',
    "completionYears" TEXT NOT NULL DEFAULT '',
    lat REAL,
    lng REAL,
    description TEXT NOT NULL DEFAULT '',
    history TEXT NOT NULL DEFAULT '',
    technical_info TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS building_architects (
    building_id INTEGER NOT NULL,
    architect_id INTEGER NOT NULL,
    PRIMARY KEY (building_id, architect_id)
);

CREATE INDEX IF NOT EXISTS idx_building_architects_architect ON building_architects(architect_id);

CREATE TABLE IF NOT EXISTS architect_compositions (
    architect_id INTEGER NOT NULL,
    individual_architect_id INTEGER NOT NULL,
    order_index INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (architect_id, individual_architect_id)
);

CREATE INDEX IF NOT EXISTS idx_compositions_individual ON architect_compositions(individual_architect_id);

CREATE TABLE IF NOT EXISTS individual_architects (
    individual_architect_id INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name_ja TEXT NOT NULL DEFAULT '',
    name_en TEXT NOT NULL DEFAULT '',
    birth_year INTEGER,
    death_year INTEGER,
    biography TEXT NOT NULL DEFAULT '',
    awards TEXT NOT NULL DEFAULT ''
);
`

const migrationV1Down = `
DROP TABLE IF EXISTS individual_architects;
DROP TABLE IF EXISTS architect_compositions;
DROP TABLE IF EXISTS building_architects;
DROP TABLE IF EXISTS buildings_table_2;
DROP TABLE IF EXISTS schema_version;
`

// Ranked search index. rowid is the building id; body holds the searchable
// fields and architect names with CJK runes split into single tokens.
const migrationV11Up = `
CREATE VIRTUAL TABLE IF NOT EXISTS buildings_fts USING fts5(
    body,
    tokenize = 'unicode61'
);
`

const migrationV11Down = `
DROP TABLE IF EXISTS buildings_fts;
`

// One index column per searchable field so a phrase never spans two fields
// and queries can be restricted to them. Open rebuilds the emptied index.
const migrationV12Up = `
DROP TABLE IF EXISTS buildings_fts;
CREATE VIRTUAL TABLE buildings_fts USING fts5(
    title,
    title_en,
    building_types,
    building_types_en,
    location,
    location_en,
    tokenize = 'unicode61'
);
`

const migrationV12Down = `
DROP TABLE IF EXISTS buildings_fts;
CREATE VIRTUAL TABLE buildings_fts USING fts5(
    body,
    tokenize = 'unicode61'
);
`

// SchemaVersion returns the last applied version, 0.0.0 on a fresh database.
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("check schema_version table: %w", err)
	}

	var v string
	err = db.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC, rowid DESC LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && v == "") {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}

	current, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid schema version %s: %w", v, err)
	}
	return current, nil
}

// ApplyMigrations runs every migration newer than the recorded version.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}

		if _, err := db.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		current = v
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for i := len(AllMigrations) - 1; i >= 0; i-- {
		m := AllMigrations[i]
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !v.Equal(current) {
			continue
		}

		if _, err := db.ExecContext(ctx, m.Down); err != nil {
			return fmt.Errorf("rollback migration %s: %w", m.Version, err)
		}
		// the first migration drops schema_version itself
		if i == 0 {
			return nil
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", m.Version); err != nil {
			return fmt.Errorf("remove migration record %s: %w", m.Version, err)
		}
		return nil
	}
	return fmt.Errorf("no migration to roll back from %s", current)
}
