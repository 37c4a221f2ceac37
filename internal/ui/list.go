package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = videoItem{}
)

// playlistItem wraps [models.ExternalPlaylist] to implement [list.Item].
type playlistItem struct {
	playlist *models.ExternalPlaylist
}

func (i playlistItem) FilterValue() string { return i.playlist.ListName }
func (i playlistItem) Title() string       { return i.playlist.ListName }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d videos • %s subscribers • %s",
		i.playlist.VideoQty,
		shared.FormatCount(i.playlist.ChannelSubscriber),
		shared.FormatDate(i.playlist.UpdatedAt()),
	)
}

// videoItem wraps [models.ExternalVideo] to implement [list.Item].
type videoItem struct {
	video *models.ExternalVideo
}

func (i videoItem) FilterValue() string { return i.video.Title }
func (i videoItem) Title() string       { return i.video.Title }
func (i videoItem) Description() string {
	desc := shared.FormatDate(i.video.OriginUpdate)
	if i.video.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, shared.Truncate(i.video.Description, 60))
	}
	return desc
}
