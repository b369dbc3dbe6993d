//go:build !cgo_sqlite

package sqlite

// Default build: pure Go SQLite, no C toolchain required. FTS5 is
// compiled in.
//
//	CGO_ENABLED=0 go build ./...
import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver name.
	DriverName = "sqlite"

	// BuildMode describes the driver selected at build time.
	BuildMode = "purego"
)
