package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultPageInterval is the pause between playlist item pages.
const DefaultPageInterval = 100 * time.Millisecond

// MetadataClient resolves YouTube playlists and channels and pages through playlist items.
//
// Implemented by [services.YouTubeService].
type MetadataClient interface {
	GetPlaylistInfo(ctx context.Context, playlistID string) (*models.PlaylistInfo, error)
	GetChannelInfo(ctx context.Context, channelID string) (*models.ChannelInfo, error)
	ListPlaylistItems(ctx context.Context, playlistID, pageToken string) (*models.PlaylistItemsPage, error)
}

// Fetcher retrieves every item of a playlist, one page at a time.
type Fetcher struct {
	client   MetadataClient
	interval time.Duration
	logger   *log.Logger
}

// NewFetcher creates a Fetcher pausing interval between pages; zero disables the pause.
func NewFetcher(client MetadataClient, interval time.Duration, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{client: client, interval: interval, logger: logger}
}

// Fetch resolves the declared item count, then follows continuation tokens until a page
// comes back without one. The declared count only feeds progress; it never ends the loop.
//
// Any failure discards the items gathered so far and is reported as [shared.ErrIngestion].
func (f *Fetcher) Fetch(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) ([]models.VideoInfo, error) {
	info, err := f.client.GetPlaylistInfo(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrIngestion, err)
	}
	total := info.ItemCount
	sendProgress(ctx, progress, fetchStartUpdate(total))

	limit := rate.Inf
	if f.interval > 0 {
		limit = rate.Every(f.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	var (
		items []models.VideoInfo
		token string
	)
	for page := 1; ; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrIngestion, err)
		}

		resp, err := f.client.ListPlaylistItems(ctx, playlistID, token)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", shared.ErrIngestion, page, err)
		}

		items = append(items, resp.Items...)
		f.logger.Debug("fetched playlist page", "playlist", playlistID, "page", page, "items", len(items), "declared", total)
		sendProgress(ctx, progress, fetchPageUpdate(len(items), total))

		if resp.NextPageToken == "" {
			break
		}
		if resp.NextPageToken == token {
			return nil, fmt.Errorf("%w: page %d repeated continuation token %q", shared.ErrIngestion, page, token)
		}
		token = resp.NextPageToken
	}

	sendProgress(ctx, progress, fetchDoneUpdate(len(items), total))
	return items, nil
}
