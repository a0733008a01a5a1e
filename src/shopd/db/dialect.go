package db

import "fmt"

// Dialect hides the differences between the supported SQL backends
type Dialect interface {
	// Name returns "sqlite" or "postgres"
	Name() string

	// DriverName returns the database/sql driver name
	DriverName() string

	// Placeholder returns the parameter placeholder for a 1-based index
	Placeholder(index int) string
}

// DialectFor returns the dialect for a configured driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", DriverSQLite:
		return sqliteDialect{}, nil
	case DriverPostgres:
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q (use %q or %q)", driver, DriverSQLite, DriverPostgres)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string           { return DriverSQLite }
func (sqliteDialect) DriverName() string     { return "sqlite3" }
func (sqliteDialect) Placeholder(int) string { return "?" }

// postgresDialect goes through pgx/stdlib
type postgresDialect struct{}

func (postgresDialect) Name() string       { return DriverPostgres }
func (postgresDialect) DriverName() string { return "pgx" }
func (postgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}
