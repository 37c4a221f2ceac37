package models

import "time"

// PlaylistInfo is the playlist metadata returned by the YouTube Data API.
type PlaylistInfo struct {
	ID          string
	Title       string
	ItemCount   int // declared by the API, may disagree with the items actually returned
	PublishedAt time.Time
	ChannelID   string
}

// ChannelInfo is the channel metadata denormalized onto an [ExternalPlaylist].
type ChannelInfo struct {
	ID              string
	URL             string
	SubscriberCount int64
	PublishedAt     time.Time
}

// VideoInfo is one playlist item.
type VideoInfo struct {
	VideoID     string
	Title       string
	Description string
	PublishedAt time.Time
}

// PlaylistItemsPage is one page of playlist items.
//
// An empty NextPageToken marks the last page.
type PlaylistItemsPage struct {
	Items         []VideoInfo
	NextPageToken string
}

// PlaylistExport bundles a stored playlist with its stored items for export.
type PlaylistExport struct {
	Playlist *ExternalPlaylist
	Videos   []*ExternalVideo
}
