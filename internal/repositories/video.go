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

const externalVideoColumns = `id, playlist_id, video_link, title, description, origin_update, target_update, created_at`

// ExternalVideoRepository persists playlist items.
//
// Items are insert-only: re-ingesting a playlist appends new rows rather than replacing old ones.
type ExternalVideoRepository struct {
	store
}

// NewExternalVideoRepository creates a new ExternalVideoRepository. pub may be nil.
func NewExternalVideoRepository(db *shared.Database, pub realtime.Publisher) *ExternalVideoRepository {
	return &ExternalVideoRepository{store: newStore(db, pub)}
}

// Create inserts one playlist item with a generated ID
func (r *ExternalVideoRepository) Create(ctx context.Context, video *models.ExternalVideo) error {
	if video.ID() == "" {
		video.SetID(shared.GenerateID())
	}

	if err := video.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `INSERT INTO external_videos (` + externalVideoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.exec(ctx, query,
		video.ID(),
		video.PlaylistID,
		video.VideoLink,
		video.Title,
		video.Description,
		nullTime(video.OriginUpdate),
		video.TargetUpdate,
		video.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	r.publish(realtime.TableExternalVideos, realtime.Insert, video.ID(), video, nil)
	return nil
}

// Get retrieves a playlist item by ID
func (r *ExternalVideoRepository) Get(ctx context.Context, id string) (*models.ExternalVideo, error) {
	query := `SELECT ` + externalVideoColumns + ` FROM external_videos WHERE id = ?`

	video, err := scanExternalVideo(r.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "video", id)
	}
	return video, nil
}

// ListByPlaylist retrieves a playlist's items, most recently published first
func (r *ExternalVideoRepository) ListByPlaylist(ctx context.Context, playlistID string) ([]*models.ExternalVideo, error) {
	query := `
		SELECT ` + externalVideoColumns + `
		FROM external_videos
		WHERE playlist_id = ?
		ORDER BY origin_update DESC NULLS LAST, created_at ASC
	`

	rows, err := r.query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	return collect(rows, scanExternalVideo)
}

// CountByPlaylist returns the number of stored items of a playlist
func (r *ExternalVideoRepository) CountByPlaylist(ctx context.Context, playlistID string) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM external_videos WHERE playlist_id = ?`, playlistID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return n, nil
}

// Delete removes a single playlist item
func (r *ExternalVideoRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "video", id, `DELETE FROM external_videos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	r.publish(realtime.TableExternalVideos, realtime.Delete, id, nil, nil)
	return nil
}

func scanExternalVideo(row scanner) (*models.ExternalVideo, error) {
	var (
		id                      string
		origin                  sql.NullTime
		targetUpdate, createdAt time.Time
		v                       models.ExternalVideo
	)

	err := row.Scan(&id, &v.PlaylistID, &v.VideoLink, &v.Title, &v.Description, &origin, &targetUpdate, &createdAt)
	if err != nil {
		return nil, err
	}

	video := models.RestoreExternalVideo(id, createdAt)
	video.PlaylistID = v.PlaylistID
	video.VideoLink = v.VideoLink
	video.Title = v.Title
	video.Description = v.Description
	video.TargetUpdate = targetUpdate
	if origin.Valid {
		video.OriginUpdate = origin.Time
	}
	return video, nil
}
