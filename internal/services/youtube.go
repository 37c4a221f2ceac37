// YouTube Data API v3 client
//
// Resolves playlists and channels and pages through playlist items. Every call is a
// fresh round trip; nothing is cached.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultYTBaseURL = "https://www.googleapis.com/youtube/v3"

	// PageSize is the fixed maxResults for playlistItems requests.
	PageSize = 50
)

// youtubeThumbnail is one entry of snippet.thumbnails.
type youtubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type playlistListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string                      `json:"title"`
			Description string                      `json:"description"`
			PublishedAt string                      `json:"publishedAt"`
			ChannelID   string                      `json:"channelId"`
			Thumbnails  map[string]youtubeThumbnail `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			ItemCount int `json:"itemCount"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			// the API encodes counts as strings
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistItemListResponse struct {
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			ResourceID  *struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// YouTubeService talks to the YouTube Data API with an API key and, optionally, an OAuth2 bearer token.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// YouTubeOption configures a [YouTubeService].
type YouTubeOption func(*YouTubeService)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) YouTubeOption {
	return func(y *YouTubeService) {
		if c != nil {
			y.httpClient = c
		}
	}
}

// WithAccessToken sends token as a bearer credential through an [oauth2.StaticTokenSource].
func WithAccessToken(ctx context.Context, token string) YouTubeOption {
	if token == "" {
		return func(*YouTubeService) {}
	}
	return WithTokenSource(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// WithTokenSource authorizes every request with tokens from ts, refreshing them as ts does.
// Options are applied in order, so a custom client must come first.
func WithTokenSource(ctx context.Context, ts oauth2.TokenSource) YouTubeOption {
	return func(y *YouTubeService) {
		if ts == nil {
			return
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, y.httpClient)
		y.httpClient = oauth2.NewClient(ctx, ts)
	}
}

// NewYouTubeService creates a client for the Data API at baseURL (defaults to the public endpoint).
func NewYouTubeService(baseURL, apiKey string, opts ...YouTubeOption) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	y := &YouTubeService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// doRequest GETs endpoint with params plus the API key and decodes the JSON body into result.
//
// Transport failures, non-2xx statuses and undecodable bodies are reported as [shared.ErrTransport].
func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if y.apiKey != "" {
		params.Set("key", y.apiKey)
	}
	apiURL := y.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: youtube API error (status %d): %s", shared.ErrTransport, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: youtube API error: status %d", shared.ErrTransport, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrTransport, err)
	}
	return nil
}

// GetPlaylistInfo resolves a playlist's title, declared item count, publish time and owning channel.
//
// Calls GET /playlists?part=snippet,contentDetails&id={playlistID}.
func (y *YouTubeService) GetPlaylistInfo(ctx context.Context, playlistID string) (*models.PlaylistInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", playlistID)

	var resp playlistListResponse
	if err := y.doRequest(ctx, "/playlists", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	item := resp.Items[0]
	return &models.PlaylistInfo{
		ID:          playlistID,
		Title:       item.Snippet.Title,
		ItemCount:   item.ContentDetails.ItemCount,
		PublishedAt: parseTimestamp(item.Snippet.PublishedAt),
		ChannelID:   item.Snippet.ChannelID,
	}, nil
}

// GetChannelInfo resolves a channel's URL, subscriber count and publish time.
//
// Calls GET /channels?part=snippet,statistics&id={channelID}.
func (y *YouTubeService) GetChannelInfo(ctx context.Context, channelID string) (*models.ChannelInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := y.doRequest(ctx, "/channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrChannelNotFound, channelID)
	}

	item := resp.Items[0]
	// hidden subscriber counts come back empty
	subscribers, _ := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)

	return &models.ChannelInfo{
		ID:              channelID,
		URL:             shared.ChannelURL(channelID),
		SubscriberCount: subscribers,
		PublishedAt:     parseTimestamp(item.Snippet.PublishedAt),
	}, nil
}

// ListPlaylistItems fetches one page of up to [PageSize] items starting at pageToken ("" for the first page).
//
// Calls GET /playlistItems?part=snippet&maxResults=50&playlistId={id}&pageToken={token}.
// Entries without a resourceId (deleted or private videos) are skipped.
func (y *YouTubeService) ListPlaylistItems(ctx context.Context, playlistID, pageToken string) (*models.PlaylistItemsPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(PageSize))
	params.Set("playlistId", playlistID)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp playlistItemListResponse
	if err := y.doRequest(ctx, "/playlistItems", params, &resp); err != nil {
		return nil, err
	}

	page := &models.PlaylistItemsPage{
		Items:         make([]models.VideoInfo, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, it := range resp.Items {
		if it.Snippet.ResourceID == nil || it.Snippet.ResourceID.VideoID == "" {
			continue
		}
		page.Items = append(page.Items, models.VideoInfo{
			VideoID:     it.Snippet.ResourceID.VideoID,
			Title:       it.Snippet.Title,
			Description: it.Snippet.Description,
			PublishedAt: parseTimestamp(it.Snippet.PublishedAt),
		})
	}
	return page, nil
}

// GetVideoInfo resolves a single video's title, description and publish time.
//
// Calls GET /videos?part=snippet&id={videoID}.
func (y *YouTubeService) GetVideoInfo(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)

	var resp videoListResponse
	if err := y.doRequest(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, videoID)
	}

	item := resp.Items[0]
	return &models.VideoInfo{
		VideoID:     videoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		PublishedAt: parseTimestamp(item.Snippet.PublishedAt),
	}, nil
}

// parseTimestamp parses RFC 3339 timestamps and returns the zero time for anything else.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
