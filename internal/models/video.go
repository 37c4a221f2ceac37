package models

import (
	"fmt"
	"time"
)

// ExternalVideo is one playlist item ingested from YouTube.
type ExternalVideo struct {
	record
	PlaylistID   string
	VideoLink    string
	Title        string
	Description  string
	OriginUpdate time.Time // publish time reported by YouTube
	TargetUpdate time.Time // local ingestion time
}

// NewExternalVideo builds an unsaved row for an item; link is the watch URL.
func NewExternalVideo(playlistID, link string, item VideoInfo) *ExternalVideo {
	r := newRecord()
	return &ExternalVideo{
		record:       r,
		PlaylistID:   playlistID,
		VideoLink:    link,
		Title:        item.Title,
		Description:  item.Description,
		OriginUpdate: item.PublishedAt,
		TargetUpdate: r.createdAt,
	}
}

// RestoreExternalVideo rebuilds a video loaded from storage.
func RestoreExternalVideo(id string, createdAt time.Time) *ExternalVideo {
	return &ExternalVideo{record: record{id: id, createdAt: createdAt, updatedAt: createdAt}}
}

// Validate checks required fields.
func (v *ExternalVideo) Validate() error {
	if v.PlaylistID == "" {
		return fmt.Errorf("playlist reference is required")
	}
	if v.VideoLink == "" {
		return fmt.Errorf("video link is required")
	}
	return nil
}

// LibraryVideo is an entry of the user's video library: either a file uploaded into
// object storage (VideoURL is the object path) or a YouTube video added by link.
type LibraryVideo struct {
	record
	UserID       string
	Title        string
	Description  string
	VideoURL     string
	SubtitleText string
}

// NewLibraryVideo builds an unsaved library row.
func NewLibraryVideo(userID, title, description, videoURL string) *LibraryVideo {
	return &LibraryVideo{
		record:      newRecord(),
		UserID:      userID,
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
	}
}

// RestoreLibraryVideo rebuilds a library row loaded from storage.
func RestoreLibraryVideo(id string, createdAt, updatedAt time.Time) *LibraryVideo {
	return &LibraryVideo{record: record{id: id, createdAt: createdAt, updatedAt: updatedAt}}
}

// Validate checks required fields.
func (v *LibraryVideo) Validate() error {
	switch {
	case v.UserID == "":
		return fmt.Errorf("owner is required")
	case v.Title == "":
		return fmt.Errorf("title is required")
	case v.VideoURL == "":
		return fmt.Errorf("video url is required")
	}
	return nil
}
