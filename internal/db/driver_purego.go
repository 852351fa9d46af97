//go:build !cgo_sqlite

package db

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteDriverName = "sqlite"
