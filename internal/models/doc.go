// Package models defines domain entities and persistence interfaces for pinned playlists.
//
// The package contains three groups of types:
//
// 1. Pin domain: the inputs and outputs of reconciliation
//   - [TrackRef] : Opaque track identity (a Spotify track URI)
//   - [Pin] : A track fixed at a 0-based position
//   - [PinSet] : The pins of one playlist in insertion order
//   - [PlaylistConfig] : A managed playlist and its pins
//   - [RegistryEntry] : Registry record pointing at a playlist config file
//
// 2. Remote metadata: lightweight structs describing service data
//   - [Track] : Title, artists, popularity and genres used for labels and export
//   - [Playlist] : Playlist metadata for pickers and registration
//
// 3. Persistent entities: database-backed records
//   - [SyncRun] : One sync attempt with its outcome
//
// [ConfigStore] abstracts pin configuration storage.
// [Repository] defines standard CRUD operations for database records implementing [Model].
package models
