package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/shared"
)

const playlistColumns = `id, user_id, list_url, list_name, video_qty, channel_url, channel_subscriber, created_at, updated_at`

// PlaylistRepository implements models.Repository[*models.ExternalPlaylist] for mirrored YouTube playlists.
//
// A playlist URL is unique per owner.
type PlaylistRepository struct {
	store
}

// NewPlaylistRepository creates a new PlaylistRepository. pub may be nil.
func NewPlaylistRepository(db *shared.Database, pub realtime.Publisher) *PlaylistRepository {
	return &PlaylistRepository{store: newStore(db, pub)}
}

// Create inserts a new playlist with a generated ID
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.ExternalPlaylist) error {
	if playlist.ID() == "" {
		playlist.SetID(shared.GenerateID())
	}

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `INSERT INTO external_playlists (` + playlistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.exec(ctx, query,
		playlist.ID(),
		playlist.UserID,
		playlist.ListURL,
		playlist.ListName,
		playlist.VideoQty,
		playlist.ChannelURL,
		playlist.ChannelSubscriber,
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	r.publish(realtime.TableExternalPlaylists, realtime.Insert, playlist.ID(), playlist, nil)
	return nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.ExternalPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM external_playlists WHERE id = ?`

	playlist, err := scanPlaylist(r.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "playlist", id)
	}
	return playlist, nil
}

// GetByURL retrieves the playlist userID stored for listURL
func (r *PlaylistRepository) GetByURL(ctx context.Context, userID, listURL string) (*models.ExternalPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM external_playlists WHERE user_id = ? AND list_url = ?`

	playlist, err := scanPlaylist(r.queryRow(ctx, query, userID, listURL))
	if err != nil {
		return nil, notFound(err, "playlist", listURL)
	}
	return playlist, nil
}

// Update overwrites the API-derived columns of an existing playlist
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.ExternalPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE external_playlists
		SET list_url = ?, list_name = ?, video_qty = ?, channel_url = ?, channel_subscriber = ?, updated_at = ?
		WHERE id = ?
	`
	err := r.execOne(ctx, "playlist", playlist.ID(), query,
		playlist.ListURL,
		playlist.ListName,
		playlist.VideoQty,
		playlist.ChannelURL,
		playlist.ChannelSubscriber,
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	playlist.SetUpdatedAt(now)
	r.publish(realtime.TableExternalPlaylists, realtime.Update, playlist.ID(), playlist, nil)
	return nil
}

// Delete removes a playlist and, by cascade, its items
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "playlist", id, `DELETE FROM external_playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	r.publish(realtime.TableExternalPlaylists, realtime.Delete, id, nil, nil)
	return nil
}

// List retrieves playlists newest first, optionally filtered by "user_id"
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.ExternalPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM external_playlists WHERE 1 = 1`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	return collect(rows, scanPlaylist)
}

func scanPlaylist(row scanner) (*models.ExternalPlaylist, error) {
	var (
		id                   string
		createdAt, updatedAt time.Time
		p                    models.ExternalPlaylist
	)

	err := row.Scan(&id, &p.UserID, &p.ListURL, &p.ListName, &p.VideoQty, &p.ChannelURL, &p.ChannelSubscriber, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	playlist := models.RestoreExternalPlaylist(id, createdAt, updatedAt)
	playlist.UserID = p.UserID
	playlist.ListURL = p.ListURL
	playlist.ListName = p.ListName
	playlist.VideoQty = p.VideoQty
	playlist.ChannelURL = p.ChannelURL
	playlist.ChannelSubscriber = p.ChannelSubscriber
	return playlist, nil
}
