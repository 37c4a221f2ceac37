package shared

import (
	"context"
	"errors"
	"testing"
)

func TestRebind(t *testing.T) {
	tc := []struct {
		name   string
		driver string
		query  string
		want   string
	}{
		{name: "sqlite untouched", driver: DriverSQLite, query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = ? AND b = ?"},
		{name: "postgres numbered", driver: DriverPostgres, query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{name: "quoted placeholder kept", driver: DriverPostgres, query: "SELECT '?' FROM t WHERE a = ?", want: "SELECT '?' FROM t WHERE a = $1"},
		{name: "no placeholders", driver: DriverPostgres, query: "SELECT 1", want: "SELECT 1"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{Driver: tt.driver}
			if got := db.Rebind(tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		if _, err := Open(context.Background(), "mysql", "x"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("OpenDatabase sqlite memory", func(t *testing.T) {
		db, err := OpenDatabase(context.Background(), DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"})
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		defer db.Close()

		if db.Driver != DriverSQLite {
			t.Errorf("expected sqlite3 driver, got %s", db.Driver)
		}

		var fk int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("pragma failed: %v", err)
		}
		if fk != 1 {
			t.Errorf("expected foreign keys enabled, got %d", fk)
		}
	})

	t.Run("withSQLiteForeignKeys", func(t *testing.T) {
		if got := withSQLiteForeignKeys("./a.db"); got != "./a.db?_foreign_keys=1" {
			t.Errorf("unexpected dsn %q", got)
		}
		if got := withSQLiteForeignKeys("file:a.db?cache=shared"); got != "file:a.db?cache=shared&_foreign_keys=1" {
			t.Errorf("unexpected dsn %q", got)
		}
		if got := withSQLiteForeignKeys("a.db?_foreign_keys=0"); got != "a.db?_foreign_keys=0" {
			t.Errorf("explicit setting should be kept, got %q", got)
		}
	})
}
