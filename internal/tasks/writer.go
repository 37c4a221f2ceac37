package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
)

// PlaylistStore persists playlist rows. Implemented by [repositories.PlaylistRepository].
type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.ExternalPlaylist) error
	Get(ctx context.Context, id string) (*models.ExternalPlaylist, error)
	Update(ctx context.Context, playlist *models.ExternalPlaylist) error
}

// VideoStore persists playlist items. Implemented by [repositories.ExternalVideoRepository].
type VideoStore interface {
	Create(ctx context.Context, video *models.ExternalVideo) error
}

// PlaylistData is what a check collects for the playlist row.
type PlaylistData struct {
	ListURL string
	Info    models.PlaylistInfo
	Channel models.ChannelInfo
}

// WriteResult tallies a [Writer.WriteItems] run.
type WriteResult struct {
	Attempted int
	Written   int
	Failed    int
}

// Writer stores playlists and their items.
type Writer struct {
	playlists PlaylistStore
	videos    VideoStore
	logger    *log.Logger
}

// NewWriter creates a Writer. logger may be nil.
func NewWriter(playlists PlaylistStore, videos VideoStore, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Writer{playlists: playlists, videos: videos, logger: logger}
}

// UpsertPlaylist inserts a playlist row for ownerID when existingID is empty and
// otherwise overwrites the row existingID with data. It returns the row id.
func (w *Writer) UpsertPlaylist(ctx context.Context, existingID, ownerID string, data PlaylistData) (string, error) {
	if existingID == "" {
		playlist := models.NewExternalPlaylist(ownerID, data.ListURL, data.Info, data.Channel)
		if err := w.playlists.Create(ctx, playlist); err != nil {
			return "", fmt.Errorf("failed to create playlist: %w", err)
		}
		return playlist.ID(), nil
	}

	playlist, err := w.playlists.Get(ctx, existingID)
	if err != nil {
		return "", fmt.Errorf("failed to load playlist: %w", err)
	}

	playlist.Apply(data.ListURL, data.Info, data.Channel)
	if err := w.playlists.Update(ctx, playlist); err != nil {
		return "", fmt.Errorf("failed to update playlist: %w", err)
	}
	return playlist.ID(), nil
}

// WriteItems inserts one row per item. A failed insert is logged and skipped, so the
// batch itself never fails. Cancelling ctx stops the batch before the next item.
func (w *Writer) WriteItems(ctx context.Context, playlistID string, items []models.VideoInfo, progress chan<- ProgressUpdate) WriteResult {
	var res WriteResult
	total := len(items)
	sendProgress(ctx, progress, writeStartUpdate(total))

	for i, item := range items {
		if ctx.Err() != nil {
			w.logger.Warn("write cancelled", "playlist", playlistID, "written", res.Written, "remaining", total-i)
			break
		}
		video := models.NewExternalVideo(playlistID, shared.VideoLink(item.VideoID), item)

		res.Attempted++
		if err := w.videos.Create(ctx, video); err != nil {
			res.Failed++
			w.logger.Error("failed to save video", "playlist", playlistID, "video", item.VideoID, "error", err)
		} else {
			res.Written++
		}

		sendProgress(ctx, progress, writeItemUpdate(i+1, total))
	}

	sendProgress(ctx, progress, writeDoneUpdate(total))
	return res
}
