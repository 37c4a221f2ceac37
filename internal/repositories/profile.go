package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/shared"
)

const profileColumns = `id, email, display_name, user_level, created_at, updated_at`

// ProfileRepository implements [models.Repository] for [models.Profile] persistence.
type ProfileRepository struct {
	store
}

// NewProfileRepository creates a new [ProfileRepository]. pub may be nil.
func NewProfileRepository(db *shared.Database, pub realtime.Publisher) *ProfileRepository {
	return &ProfileRepository{store: newStore(db, pub)}
}

// Create inserts a new profile with a generated ID
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID() == "" {
		profile.SetID(shared.GenerateID())
	}

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.exec(ctx, query,
		profile.ID(), profile.Email(), profile.DisplayName(), string(profile.Level()),
		profile.CreatedAt(), profile.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	r.publish(realtime.TableProfiles, realtime.Insert, profile.ID(), profile, nil)
	return nil
}

// Get retrieves a profile by ID
func (r *ProfileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`

	profile, err := scanProfile(r.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "profile", id)
	}
	return profile, nil
}

// GetByEmail retrieves a profile by email, ignoring case
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(email) = LOWER(?)`

	profile, err := scanProfile(r.queryRow(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err, "profile", email)
	}
	return profile, nil
}

// Update modifies the display name and level of an existing profile
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	query := `UPDATE profiles SET display_name = ?, user_level = ?, updated_at = ? WHERE id = ?`
	if err := r.execOne(ctx, "profile", profile.ID(), query,
		profile.DisplayName(), string(profile.Level()), now, profile.ID(),
	); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	profile.SetUpdatedAt(now)
	r.publish(realtime.TableProfiles, realtime.Update, profile.ID(), profile, nil)
	return nil
}

// SetLevel changes only the user level of a profile
func (r *ProfileRepository) SetLevel(ctx context.Context, id string, level models.UserLevel) error {
	if _, err := models.ParseUserLevel(string(level)); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	query := `UPDATE profiles SET user_level = ?, updated_at = ? WHERE id = ?`
	if err := r.execOne(ctx, "profile", id, query, string(level), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to set user level: %w", err)
	}

	r.publish(realtime.TableProfiles, realtime.Update, id, level, nil)
	return nil
}

// Delete removes a profile; its playlists, playlist items and library videos cascade
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "profile", id, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	r.publish(realtime.TableProfiles, realtime.Delete, id, nil, nil)
	return nil
}

// List retrieves profiles ordered by email, optionally filtered by "email" or "user_level"
func (r *ProfileRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE 1 = 1`
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	if level, ok := criteria["user_level"].(string); ok && level != "" {
		query += " AND user_level = ?"
		args = append(args, level)
	}

	query += " ORDER BY email ASC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	return collect(rows, scanProfile)
}

func scanProfile(row scanner) (*models.Profile, error) {
	var (
		id, email, name, level string
		createdAt, updatedAt   time.Time
	)

	if err := row.Scan(&id, &email, &name, &level, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return models.RestoreProfile(id, email, name, models.UserLevel(level), createdAt, updatedAt), nil
}
