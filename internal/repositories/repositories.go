// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type on top of
// [shared.Database], so the same queries run against SQLite and Postgres.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/shared"
)

// store is embedded by every repository.
type store struct {
	db  *shared.Database
	pub realtime.Publisher
}

func newStore(db *shared.Database, pub realtime.Publisher) store {
	return store{db: db, pub: pub}
}

func (s store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return result, shared.MapDBError(err)
}

func (s store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.db.Rebind(query), args...)
}

func (s store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.db.Rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row; zero rows is [shared.ErrRecordNotFound].
func (s store) execOne(ctx context.Context, what, id, query string, args ...any) error {
	result, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, what, id)
	}
	return nil
}

func (s store) publish(table string, typ realtime.EventType, id string, newRow, oldRow any) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(realtime.Event{Table: table, Type: typ, ID: id, New: newRow, Old: oldRow, At: time.Now().UTC()})
}

// notFound converts [sql.ErrNoRows] into [shared.ErrRecordNotFound].
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, what, id)
	}
	return fmt.Errorf("failed to scan %s: %w", what, err)
}

// nullTime stores the zero time as NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// nullString stores the empty string as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}
