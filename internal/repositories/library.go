package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/shared"
)

const libraryColumns = `id, user_id, title, description, video_url, subtitle_text, created_at, updated_at`

// LibraryVideoRepository implements models.Repository[*models.LibraryVideo] for the video library.
type LibraryVideoRepository struct {
	store
}

// NewLibraryVideoRepository creates a new LibraryVideoRepository. pub may be nil.
func NewLibraryVideoRepository(db *shared.Database, pub realtime.Publisher) *LibraryVideoRepository {
	return &LibraryVideoRepository{store: newStore(db, pub)}
}

// Create inserts a new library video with a generated ID
func (r *LibraryVideoRepository) Create(ctx context.Context, video *models.LibraryVideo) error {
	if video.ID() == "" {
		video.SetID(shared.GenerateID())
	}

	if err := video.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `INSERT INTO videos (` + libraryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.exec(ctx, query,
		video.ID(),
		video.UserID,
		video.Title,
		video.Description,
		video.VideoURL,
		nullString(video.SubtitleText),
		video.CreatedAt(),
		video.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert library video: %w", err)
	}

	r.publish(realtime.TableVideos, realtime.Insert, video.ID(), video, nil)
	return nil
}

// Get retrieves a library video by ID
func (r *LibraryVideoRepository) Get(ctx context.Context, id string) (*models.LibraryVideo, error) {
	query := `SELECT ` + libraryColumns + ` FROM videos WHERE id = ?`

	video, err := scanLibraryVideo(r.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "library video", id)
	}
	return video, nil
}

// GetByOwnerURL retrieves userID's most recent library video with videoURL
func (r *LibraryVideoRepository) GetByOwnerURL(ctx context.Context, userID, videoURL string) (*models.LibraryVideo, error) {
	query := `SELECT ` + libraryColumns + ` FROM videos WHERE user_id = ? AND video_url = ? ORDER BY created_at DESC LIMIT 1`

	video, err := scanLibraryVideo(r.queryRow(ctx, query, userID, videoURL))
	if err != nil {
		return nil, notFound(err, "library video", videoURL)
	}
	return video, nil
}

// Update modifies title, description and subtitle text
func (r *LibraryVideoRepository) Update(ctx context.Context, video *models.LibraryVideo) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	query := `UPDATE videos SET title = ?, description = ?, subtitle_text = ?, updated_at = ? WHERE id = ?`
	err := r.execOne(ctx, "library video", video.ID(), query,
		video.Title, video.Description, nullString(video.SubtitleText), now, video.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update library video: %w", err)
	}

	video.SetUpdatedAt(now)
	r.publish(realtime.TableVideos, realtime.Update, video.ID(), video, nil)
	return nil
}

// Delete removes a library video
func (r *LibraryVideoRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "library video", id, `DELETE FROM videos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete library video: %w", err)
	}

	r.publish(realtime.TableVideos, realtime.Delete, id, nil, nil)
	return nil
}

// List retrieves library videos newest first, optionally filtered by "user_id"
func (r *LibraryVideoRepository) List(ctx context.Context, criteria map[string]any) ([]*models.LibraryVideo, error) {
	query := `SELECT ` + libraryColumns + ` FROM videos WHERE 1 = 1`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library videos: %w", err)
	}
	return collect(rows, scanLibraryVideo)
}

func scanLibraryVideo(row scanner) (*models.LibraryVideo, error) {
	var (
		id                   string
		subtitle             sql.NullString
		createdAt, updatedAt time.Time
		v                    models.LibraryVideo
	)

	err := row.Scan(&id, &v.UserID, &v.Title, &v.Description, &v.VideoURL, &subtitle, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	video := models.RestoreLibraryVideo(id, createdAt, updatedAt)
	video.UserID = v.UserID
	video.Title = v.Title
	video.Description = v.Description
	video.VideoURL = v.VideoURL
	video.SubtitleText = subtitle.String
	return video, nil
}
