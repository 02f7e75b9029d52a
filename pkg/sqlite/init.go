// Package sqlite registers the "sqlite3_vec" database/sql driver: the stock
// mattn driver with the sqlite-vec extension loaded into every connection.
package sqlite

import (
	"database/sql"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

func init() {
	// sqlite3_auto_extension under the hood; applies to all connections
	// opened after this point.
	sqlitevec.Auto()

	sql.Register("sqlite3_vec", &sqlite3.SQLiteDriver{})
}
