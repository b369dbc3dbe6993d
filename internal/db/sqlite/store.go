// Package sqlite is the embedded catalog store: filterable queries over the
// catalog tables and FTS5 ranked search over a derived index.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/db/dataset"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store implements db.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with the connection settings the
// store relies on.
func openDatabase(path string) (*sql.DB, error) {
	conn, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// single writer; also keeps ":memory:" on one connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	return conn, nil
}

// Open opens the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := ApplyMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, &db.Error{Op: db.OpMigrate, Err: err}
	}
	s := &Store{db: conn}
	if err := s.ensureIndex(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// ensureIndex rebuilds the ranked index when it is empty but the catalog
// is not, as after a migration that recreated it.
func (s *Store) ensureIndex(ctx context.Context) error {
	if s.SupportsRankedSearch(ctx) {
		return nil
	}
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM buildings_table_2 LIMIT 1").Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return &db.Error{Op: db.OpReindex, Err: err}
	}
	return s.Reindex(ctx)
}

// OpenUnmigrated opens the database without touching its schema.
func OpenUnmigrated(path string) (*Store, error) {
	conn, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: conn}, nil
}

// DB exposes the handle for maintenance commands.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.Ping(ctx) == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Query runs a filterable query against one table.
func (s *Store) Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	stmt, args := buildSelect(q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	out, err := scanRows(rows)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func buildSelect(q *db.RecordQuery) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	if len(q.Fields) == 0 {
		b.WriteString("*")
	} else {
		cols := make([]string, len(q.Fields))
		for i, f := range q.Fields {
			cols[i] = quote(f)
		}
		b.WriteString(strings.Join(cols, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(quote(q.Table))

	if !q.Filter.IsZero() {
		b.WriteString(" WHERE ")
		args = writePredicate(&b, q.Filter, args)
	}

	if len(q.Order) > 0 {
		terms := make([]string, len(q.Order))
		for i, o := range q.Order {
			terms[i] = quote(o.Field)
			if o.Desc {
				terms[i] += " DESC"
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if q.Limit > 0 || q.Offset > 0 {
		limit := q.Limit
		if limit == 0 {
			limit = -1
		}
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, q.Offset)
	}
	return b.String(), args
}

// writePredicate renders p as SQL. Contains uses instr() so the match stays
// case-sensitive and free of LIKE wildcards.
func writePredicate(b *strings.Builder, p predicate.Predicate, args []any) []any {
	switch p.Op() {
	case predicate.OpContains:
		b.WriteString("instr(" + quote(p.Field()) + ", ?) > 0")
		return append(args, p.Value())
	case predicate.OpEq:
		b.WriteString(quote(p.Field()) + " = ?")
		return append(args, p.Value())
	case predicate.OpIn:
		b.WriteString(quote(p.Field()) + " IN (")
		for i, v := range p.Values() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, v)
		}
		b.WriteString(")")
		return args
	case predicate.OpOr, predicate.OpAnd:
		sep := " OR "
		if p.Op() == predicate.OpAnd {
			sep = " AND "
		}
		b.WriteString("(")
		for i, c := range p.Children() {
			if i > 0 {
				b.WriteString(sep)
			}
			args = writePredicate(b, c, args)
		}
		b.WriteString(")")
		return args
	default:
		b.WriteString("1")
		return args
	}
}

func scanRows(rows *sql.Rows) ([]db.Row, error) {
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []db.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(db.Row, len(cols))
		for i, c := range cols {
			if raw, ok := vals[i].([]byte); ok {
				row[c] = string(raw)
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SupportsRankedSearch reports whether the FTS index holds any rows.
func (s *Store) SupportsRankedSearch(ctx context.Context) bool {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM buildings_fts LIMIT 1").Scan(&one)
	return err == nil
}

// SearchRanked runs an FTS5 query. bm25 scores are mapped into [0,1),
// higher is better.
func (s *Store) SearchRanked(ctx context.Context, q *db.TextQuery) (*db.RankedResult, error) {
	expr, err := matchExpr(q.Terms)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchRanked, Err: fmt.Errorf("%w: %w", db.ErrUnsupported, err)}
	}

	var total int
	err = s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM buildings_fts WHERE buildings_fts MATCH ?", expr).Scan(&total)
	if err != nil {
		return nil, &db.Error{Op: db.OpCount, Err: err}
	}
	if total == 0 || q.Offset >= total {
		return &db.RankedResult{Total: total}, nil
	}

	cols := make([]string, len(db.BuildingProjection))
	for i, c := range db.BuildingProjection {
		cols[i] = "b." + quote(c)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	stmt := "SELECT " + strings.Join(cols, ", ") + ", -bm25(buildings_fts) AS " + db.ColRank +
		" FROM buildings_fts JOIN " + quote(db.TableBuildings) + " b ON b.building_id = buildings_fts.rowid" +
		" WHERE buildings_fts MATCH ?" +
		" ORDER BY bm25(buildings_fts), b.building_id LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, stmt, expr, limit, q.Offset)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchRanked, Err: err}
	}
	scanned, err := scanRows(rows)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchRanked, Err: err}
	}

	out := &db.RankedResult{Total: total, Rows: make([]db.RankedRow, 0, len(scanned))}
	for _, row := range scanned {
		score := 0.0
		if f := row.Float(db.ColRank); f != nil && *f > 0 {
			score = *f / (1 + *f)
		}
		delete(row, db.ColRank)
		out.Rows = append(out.Rows, db.RankedRow{Row: row, Rank: score})
	}
	return out, nil
}

// Import replaces every catalog table with the dataset and rebuilds the
// ranked search index in one transaction.
func (s *Store) Import(ctx context.Context, d *dataset.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpImport, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	tables := d.Rows()
	for _, table := range []string{
		db.TableBuildings, db.TableBuildingArchitects, db.TableCompositions, db.TableIndividuals,
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quote(table)); err != nil {
			return &db.Error{Op: db.OpImport, Err: fmt.Errorf("clear %s: %w", table, err)}
		}
		for _, row := range tables[table] {
			if err := insertRow(ctx, tx, table, row); err != nil {
				return &db.Error{Op: db.OpImport, Err: fmt.Errorf("insert into %s: %w", table, err)}
			}
		}
	}

	if err := reindex(ctx, tx); err != nil {
		return &db.Error{Op: db.OpImport, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpImport, Err: err}
	}
	return nil
}

func insertRow(ctx context.Context, tx *sql.Tx, table string, row db.Row) error {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	slices.Sort(cols)

	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
		args[i] = row[c]
	}
	stmt := "INSERT INTO " + quote(table) + " (" + strings.Join(quoted, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	_, err := tx.ExecContext(ctx, stmt, args...)
	return err
}

// Reindex rebuilds the ranked search index from the catalog tables.
func (s *Store) Reindex(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpReindex, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := reindex(ctx, tx); err != nil {
		return &db.Error{Op: db.OpReindex, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpReindex, Err: err}
	}
	return nil
}

// indexSource collects the six searchable columns in indexColumns order.
const indexSource = `
SELECT building_id, title, "titleEn", "buildingTypes", "buildingTypesEn",
       location, "locationEn_from_datasheetChunkEn"
FROM buildings_table_2
ORDER BY building_id`

type indexEntry struct {
	id     int64
	fields [6]string
}

func reindex(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, indexSource)
	if err != nil {
		return fmt.Errorf("read index source: %w", err)
	}

	var entries []indexEntry
	for rows.Next() {
		var e indexEntry
		if err := rows.Scan(&e.id, &e.fields[0], &e.fields[1], &e.fields[2], &e.fields[3],
			&e.fields[4], &e.fields[5]); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan index source: %w", err)
		}
		for i := range e.fields {
			e.fields[i] = segment(e.fields[i])
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("read index source: %w", err)
	}
	_ = rows.Close()

	if _, err := tx.ExecContext(ctx, "DELETE FROM buildings_fts"); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	insert := "INSERT INTO buildings_fts (rowid, " + strings.Join(indexColumns, ", ") +
		") VALUES (?" + strings.Repeat(", ?", len(indexColumns)) + ")"
	for _, e := range entries {
		args := make([]any, 0, len(e.fields)+1)
		args = append(args, e.id)
		for _, f := range e.fields {
			args = append(args, f)
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("index building %d: %w", e.id, err)
		}
	}
	return nil
}
