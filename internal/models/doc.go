// Package models defines domain entities and persistence interfaces for vidhub.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): values returned by the YouTube Data API client
//   - [PlaylistInfo] : title, declared item count, publish time, owning channel
//   - [ChannelInfo] : channel URL, subscriber count, publish time
//   - [VideoInfo] : one playlist item
//   - [PlaylistItemsPage] : one page of items plus the continuation token
//
// 2. Persistent Entities
//   - [Profile] : console user with a [UserLevel]
//   - [ExternalPlaylist] : a YouTube playlist mirrored for a user, with channel info denormalized onto it
//   - [ExternalVideo] : one ingested playlist item
//   - [LibraryVideo] : an uploaded file or a YouTube video added to a user's library
//
// All persistent entities implement [Model]. The [Repository] interface defines standard CRUD operations.
package models
