// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks a signed-in user through playlist ingestion:
//  1. [PlaylistListView] : Browse the stored playlists
//  2. [VideoListView] : Browse a playlist's stored videos
//  3. [InputView] : Enter a playlist URL to check
//  4. [ConfirmView] : Review the checked playlist and confirm the save
//  5. [ProgressView] : Follow check, fetch and write progress
//  6. [ResultView] : Show what was stored, or why it failed
//
// Progress updates flow through a channel from the ingestion [tasks.Session]. When a change feed
// is supplied, the playlist list reloads whenever a playlist row changes.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a, r, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
