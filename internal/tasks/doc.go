// Package tasks orchestrates pin synchronization with real-time progress reporting.
//
// # Core Operations
//
//  1. [SyncEngine.Sync] : Reconcile one playlist
//     - Loads the playlist's pins from the [models.ConfigStore]
//     - Fetches the current track order from the [PlaylistService]
//     - Computes the target order with [pins.Reconcile] and the mutations with [pins.Plan]
//     - Applies them with [pins.Apply] unless [SyncOpts.DryRun] is set
//
//  2. [SyncEngine.SyncAll] : Reconcile every registered playlist in order
//     - Best effort: a failing playlist is logged and the next one still runs
//     - Failures are collected in [BatchResult]
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default to prevent blocking.
//
// # History
//
// The optional [HistoryRecorder] (repositories.SyncRunRepository) receives each [models.SyncRun]
// when it starts and when it finishes. Recording errors are logged and never fail a sync.
package tasks
