//go:build cgo_sqlite

package sqlite

// cgo build against the system SQLite amalgamation. FTS5 needs the
// driver's own tag as well:
//
//	CGO_ENABLED=1 go build -tags "cgo_sqlite sqlite_fts5" ./...
import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver name.
	DriverName = "sqlite3"

	// BuildMode describes the driver selected at build time.
	BuildMode = "cgo"
)
