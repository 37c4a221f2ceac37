package shared

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	playlistIDPattern = regexp.MustCompile(`(?i)[&?]list=([^&]+)`)
	videoIDPattern    = regexp.MustCompile(`[?&]v=([^&]+)`)
)

const (
	watchURLPrefix   = "https://www.youtube.com/watch?v="
	channelURLPrefix = "https://www.youtube.com/channel/"
)

// ExtractPlaylistID returns the value of the "list" query parameter of a YouTube playlist URL.
func ExtractPlaylistID(playlistURL string) (string, error) {
	m := playlistIDPattern.FindStringSubmatch(playlistURL)
	if m == nil || m[1] == "" {
		return "", fmt.Errorf("%w: %q has no playlist id", ErrInvalidURL, playlistURL)
	}
	return m[1], nil
}

// ExtractVideoID returns the value of the "v" query parameter of a YouTube watch URL.
func ExtractVideoID(videoURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(videoURL)
	if m == nil || m[1] == "" {
		return "", fmt.Errorf("%w: %q has no video id", ErrInvalidURL, videoURL)
	}
	return m[1], nil
}

// VideoLink builds the watch URL stored for an ingested item.
func VideoLink(videoID string) string {
	return watchURLPrefix + url.QueryEscape(videoID)
}

// ChannelURL builds the public channel URL for a channel id.
func ChannelURL(channelID string) string {
	return channelURLPrefix + url.PathEscape(channelID)
}

// PlaylistURL builds a canonical playlist URL for a playlist id.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + url.QueryEscape(playlistID)
}
