// Package services defines the [Service] interface for the streaming API and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps [spotify.Client]. Access tokens come from a long-lived refresh token
// through an [oauth2.TokenSource] that refreshes on expiry. Every request passes through a
// [rate.Limiter] so bulk reads stay under the API limits, and 429 responses are retried by the client.
//
// Playlists are read in pages of 100 items. Replacing more than 100 items takes one replace
// request followed by append requests, so a failure midway leaves a partial playlist that the next
// sync repairs.
//
// # Login
//
// [NewAuthenticator] configures the authorization code flow used by the login command to obtain
// a refresh token.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client ID, secret or refresh token not configured
//   - [shared.ErrTokenRefresh] : refresh token rejected
//   - [shared.ErrAuth] : API answered 401
//   - [shared.ErrUnsupportedPlaylist] : playlist holds local files
//   - [shared.ErrAPIRequest] : any other failed request
package services
