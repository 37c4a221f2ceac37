package models

import (
	"fmt"
	"strings"
	"time"
)

// ExternalPlaylist is a YouTube playlist mirrored for one owner.
//
// VideoQty is the item count reported by the API at ingestion time and is not
// kept in sync with the number of stored [ExternalVideo] rows.
type ExternalPlaylist struct {
	record
	UserID            string
	ListURL           string
	ListName          string
	VideoQty          int
	ChannelURL        string
	ChannelSubscriber int64
}

// NewExternalPlaylist builds an unsaved playlist row from fetched playlist and channel info.
func NewExternalPlaylist(userID, listURL string, info PlaylistInfo, channel ChannelInfo) *ExternalPlaylist {
	p := &ExternalPlaylist{record: newRecord(), UserID: userID}
	p.Apply(listURL, info, channel)
	return p
}

// RestoreExternalPlaylist rebuilds a playlist loaded from storage.
func RestoreExternalPlaylist(id string, createdAt, updatedAt time.Time) *ExternalPlaylist {
	return &ExternalPlaylist{record: record{id: id, createdAt: createdAt, updatedAt: updatedAt}}
}

// Apply copies refreshed API data onto the row.
func (p *ExternalPlaylist) Apply(listURL string, info PlaylistInfo, channel ChannelInfo) {
	p.ListURL = listURL
	p.ListName = info.Title
	p.VideoQty = info.ItemCount
	p.ChannelURL = channel.URL
	p.ChannelSubscriber = channel.SubscriberCount
}

// Validate checks required fields.
func (p *ExternalPlaylist) Validate() error {
	switch {
	case p.UserID == "":
		return fmt.Errorf("playlist owner is required")
	case strings.TrimSpace(p.ListURL) == "":
		return fmt.Errorf("playlist url is required")
	case p.VideoQty < 0:
		return fmt.Errorf("video quantity cannot be negative")
	}
	return nil
}
