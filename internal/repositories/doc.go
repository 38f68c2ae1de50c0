// Package repositories implements persistence for pin configuration and local history.
//
// Pin configuration lives in JSON files so it can be edited by hand and versioned:
//   - [FileStore] : [models.ConfigStore] backed by playlists.json and config_<name>.json files
//
// Local history and caches live in SQLite:
//   - [SyncRunRepository] : Sync attempts with status, track counts and errors
//   - [TrackRepository] : Track metadata cache keyed by URI
//
// Sequence numbers provide stable, human-readable ordering for sync runs independent of UUIDs.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
