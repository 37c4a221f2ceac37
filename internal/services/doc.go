// Package services implements the HTTP clients vidhub depends on.
//
// # YouTube Data API
//
// [YouTubeService] resolves playlists, channels and single videos and pages through
// playlist items fifty at a time. Requests carry the API key as the "key" query
// parameter; [WithAccessToken] additionally sends an OAuth2 bearer token.
//
// # Caption proxy
//
// [CaptionService] posts {"videoUrl": ...} to the local proxy's /transcripts endpoint
// through the raw [APIService] client.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotFound] : the API answered with zero items (wrapped by ErrPlaylistNotFound, ErrChannelNotFound, ErrVideoNotFound)
//   - [shared.ErrTransport] : network failure, non-2xx status, or an undecodable body
//   - [shared.ErrInvalidURL] : a video URL without a "v" parameter
package services
