package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/realtime"
	"github.com/desertthunder/vidhub/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsLoaded MsgKind = iota
	MsgVideosLoaded
	MsgProgressUpdate
	MsgChecked
	MsgSaved
	MsgChanged
)

type playlistsLoaded struct {
	playlists []*models.ExternalPlaylist
	err       error
}

type videosLoaded struct {
	playlist *models.ExternalPlaylist
	videos   []*models.ExternalVideo
	err      error
}

type checked struct {
	info *tasks.SessionInfo
	err  error
}

type saved struct {
	result *tasks.SaveResult
	err    error
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(playlists []*models.ExternalPlaylist, err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: playlistsLoaded{playlists, err}}
}

// videosLoadedMsg is the constructor for [MsgVideosLoaded]
func videosLoadedMsg(playlist *models.ExternalPlaylist, videos []*models.ExternalVideo, err error) Msg {
	return Msg{kind: MsgVideosLoaded, data: videosLoaded{playlist, videos, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// checkedMsg is the constructor for [MsgChecked]
func checkedMsg(info *tasks.SessionInfo, err error) Msg {
	return Msg{kind: MsgChecked, data: checked{info, err}}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(result *tasks.SaveResult, err error) Msg {
	return Msg{kind: MsgSaved, data: saved{result, err}}
}

// changedMsg is the constructor for [MsgChanged]
func changedMsg(e realtime.Event) Msg {
	return Msg{kind: MsgChanged, data: e}
}
