package shared

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Database wraps [sql.DB] with the name of the driver behind it so queries
// written with "?" placeholders can be rebound for Postgres.
type Database struct {
	*sql.DB
	Driver string
}

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
//
// Foreign keys are enforced on every connection.
func NewDatabase(path string) (*Database, error) {
	db, err := Open(context.Background(), DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenDatabase opens the database described by cfg and applies its pool settings.
func OpenDatabase(ctx context.Context, cfg DatabaseConfig) (*Database, error) {
	source := cfg.Path
	if cfg.Driver == DriverPostgres {
		source = cfg.DSN
	}

	db, err := Open(ctx, cfg.Driver, source)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite && source == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	return db, nil
}

// Open opens and pings a database with the named driver.
func Open(ctx context.Context, driver, source string) (*Database, error) {
	switch driver {
	case DriverSQLite:
		source = withSQLiteForeignKeys(source)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, driver)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: driver}, nil
}

// ConfigureDatabase sets connection pool settings for the database.
func ConfigureDatabase(db *Database, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

// Rebind rewrites "?" placeholders to "$1", "$2", ... when the driver is Postgres.
//
// Placeholders inside single-quoted literals are left alone.
func (d *Database) Rebind(query string) string {
	if d.Driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// withSQLiteForeignKeys appends the go-sqlite3 DSN flag that enables foreign keys.
func withSQLiteForeignKeys(source string) string {
	if strings.Contains(source, "_foreign_keys") || strings.Contains(source, "_fk=") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "_foreign_keys=1"
}
