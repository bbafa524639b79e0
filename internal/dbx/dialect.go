package dbx

import (
	"github.com/doug-martin/goqu/v9"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

// Dialect returns the goqu SQL dialect matching a database/sql driver name.
// Unknown drivers get the postgres dialect.
func Dialect(driver string) goqu.DialectWrapper {
	if driver == DriverSQLite {
		return goqu.Dialect("sqlite3")
	}
	return goqu.Dialect("postgres")
}

// SQLiteDSN builds a modernc sqlite DSN for a database file with foreign keys
// on, a busy timeout and lexically sortable time values.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}
