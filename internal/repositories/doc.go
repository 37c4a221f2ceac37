// Package repositories implements SQLite and Postgres persistence for all domain entities.
//
// Queries are written with "?" placeholders and rebound by [shared.Database] for the
// active driver. Constraint violations surface as [shared.ErrDuplicate] or
// [shared.ErrForeignKey]; missing rows as [shared.ErrRecordNotFound].
//
// Key Implementations:
//   - [ProfileRepository] : console users and their levels
//   - [PlaylistRepository] : mirrored YouTube playlists, unique per owner and URL
//   - [ExternalVideoRepository] : insert-only playlist items
//   - [LibraryVideoRepository] : uploaded or linked library videos with subtitles
//
// Every successful write is published to an optional [realtime.Publisher].
package repositories
