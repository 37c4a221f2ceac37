package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication and authorization errors
	ErrNotAuthenticated = fmt.Errorf("login required")
	ErrForbidden        = fmt.Errorf("insufficient user level")

	// External API errors
	ErrInvalidURL       = fmt.Errorf("not a valid YouTube URL")
	ErrNotFound         = fmt.Errorf("not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ErrNotFound)
	ErrChannelNotFound  = fmt.Errorf("channel %w", ErrNotFound)
	ErrVideoNotFound    = fmt.Errorf("video %w", ErrNotFound)
	ErrTransport        = fmt.Errorf("request to external service failed")

	// Ingestion errors
	ErrIngestion   = fmt.Errorf("failed to fetch playlist items")
	ErrNotReady    = fmt.Errorf("playlist info must be checked first")
	ErrSessionBusy = fmt.Errorf("ingestion already in progress")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrDuplicate      = fmt.Errorf("record already exists")
	ErrForeignKey     = fmt.Errorf("referenced record does not exist")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// Postgres SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapDBError translates driver-level constraint failures into [ErrDuplicate] or [ErrForeignKey].
//
// Other errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", ErrForeignKey, err)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.ConstraintName)
		}
	}

	// Errors wrapped by hand lose their driver type.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint"):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	}

	return err
}
