package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakePlaylist describes a playlist served by [FakeYouTube].
type FakePlaylist struct {
	ID        string
	Title     string
	ChannelID string
	Declared  int // contentDetails.itemCount
	Items     int // items actually served across pages
	FailPage  int // 1-based page that answers 500; 0 never fails
	LastPage  int // stop sending nextPageToken after this page; 0 follows Items
}

// FakeChannel describes a channel served by [FakeYouTube].
type FakeChannel struct {
	ID          string
	Subscribers string
}

// FakeYouTube is an in-memory stand-in for the YouTube Data API playlists, channels,
// playlistItems and videos endpoints.
type FakeYouTube struct {
	APIKey    string
	Playlists map[string]FakePlaylist
	Channels  map[string]FakeChannel

	mu       sync.Mutex
	requests map[string]int
	tokens   []string
}

// FakeBaseTime is the publishedAt of item 0; item i is i hours later.
var FakeBaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewFakeYouTube creates an empty fake expecting apiKey.
func NewFakeYouTube(apiKey string) *FakeYouTube {
	return &FakeYouTube{
		APIKey:    apiKey,
		Playlists: make(map[string]FakePlaylist),
		Channels:  make(map[string]FakeChannel),
		requests:  make(map[string]int),
	}
}

// AddPlaylist registers a playlist and its channel (subscriber count "1000").
func (f *FakeYouTube) AddPlaylist(p FakePlaylist) {
	if p.ChannelID == "" {
		p.ChannelID = "UC" + p.ID
	}
	if p.Title == "" {
		p.Title = "Playlist " + p.ID
	}
	f.Playlists[p.ID] = p
	if _, ok := f.Channels[p.ChannelID]; !ok {
		f.Channels[p.ChannelID] = FakeChannel{ID: p.ChannelID, Subscribers: "1000"}
	}
}

// Requests returns how many times endpoint (e.g. "/playlistItems") was hit.
func (f *FakeYouTube) Requests(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[endpoint]
}

// PageTokens returns the pageToken values received by /playlistItems in order.
func (f *FakeYouTube) PageTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

// TotalRequests sums requests over all endpoints.
func (f *FakeYouTube) TotalRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		n += c
	}
	return n
}

// FakeVideoID is the id of item i of playlist id.
func FakeVideoID(playlistID string, i int) string {
	return fmt.Sprintf("%s-v%03d", playlistID, i)
}

// Server starts an httptest server for the fake, closed when t finishes.
func (f *FakeYouTube) Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func (f *FakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	endpoint := "/" + r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	q := r.URL.Query()

	f.mu.Lock()
	f.requests[endpoint]++
	if endpoint == "/playlistItems" {
		f.tokens = append(f.tokens, q.Get("pageToken"))
	}
	f.mu.Unlock()

	if f.APIKey != "" && q.Get("key") != f.APIKey {
		writeAPIError(w, http.StatusForbidden, "API key not valid")
		return
	}

	switch endpoint {
	case "/playlists":
		f.playlists(w, q.Get("id"))
	case "/channels":
		f.channels(w, q.Get("id"))
	case "/playlistItems":
		f.playlistItems(w, q.Get("playlistId"), q.Get("pageToken"), q.Get("maxResults"))
	case "/videos":
		f.videos(w, q.Get("id"))
	default:
		writeAPIError(w, http.StatusNotFound, "unknown endpoint")
	}
}

func (f *FakeYouTube) playlists(w http.ResponseWriter, id string) {
	items := []any{}
	if p, ok := f.Playlists[id]; ok {
		items = append(items, map[string]any{
			"id": p.ID,
			"snippet": map[string]any{
				"title":       p.Title,
				"publishedAt": FakeBaseTime.Format(time.RFC3339),
				"channelId":   p.ChannelID,
			},
			"contentDetails": map[string]any{"itemCount": p.Declared},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (f *FakeYouTube) channels(w http.ResponseWriter, id string) {
	items := []any{}
	if c, ok := f.Channels[id]; ok {
		items = append(items, map[string]any{
			"id":         c.ID,
			"snippet":    map[string]any{"title": "Channel " + c.ID, "publishedAt": FakeBaseTime.Format(time.RFC3339)},
			"statistics": map[string]any{"subscriberCount": c.Subscribers},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (f *FakeYouTube) playlistItems(w http.ResponseWriter, id, token, maxResults string) {
	p, ok := f.Playlists[id]
	if !ok {
		writeAPIError(w, http.StatusNotFound, "playlistNotFound")
		return
	}

	size, err := strconv.Atoi(maxResults)
	if err != nil || size <= 0 {
		size = 5
	}
	offset := 0
	if token != "" {
		if offset, err = strconv.Atoi(strings.TrimPrefix(token, "page-")); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid page token")
			return
		}
	}
	page := offset/size + 1

	if p.FailPage == page {
		writeAPIError(w, http.StatusInternalServerError, "backend error")
		return
	}

	items := []any{}
	for i := offset; i < offset+size && i < p.Items; i++ {
		items = append(items, map[string]any{
			"snippet": map[string]any{
				"title":       fmt.Sprintf("Video %d", i),
				"description": fmt.Sprintf("Description %d", i),
				"publishedAt": FakeBaseTime.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
				"resourceId":  map[string]any{"kind": "youtube#video", "videoId": FakeVideoID(id, i)},
			},
		})
	}

	resp := map[string]any{
		"items":    items,
		"pageInfo": map[string]any{"totalResults": p.Declared, "resultsPerPage": size},
	}
	more := offset+size < p.Items
	if p.LastPage > 0 {
		more = page < p.LastPage
	}
	if more {
		resp["nextPageToken"] = "page-" + strconv.Itoa(offset+size)
	}
	writeJSON(w, resp)
}

func (f *FakeYouTube) videos(w http.ResponseWriter, id string) {
	items := []any{}
	for pid, p := range f.Playlists {
		for i := 0; i < p.Items; i++ {
			if FakeVideoID(pid, i) == id {
				items = append(items, map[string]any{
					"id": id,
					"snippet": map[string]any{
						"title":       fmt.Sprintf("Video %d", i),
						"description": fmt.Sprintf("Description %d", i),
						"publishedAt": FakeBaseTime.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
					},
				})
			}
		}
	}
	writeJSON(w, map[string]any{"items": items})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": msg}})
}
