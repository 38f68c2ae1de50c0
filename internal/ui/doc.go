// Package ui implements interactive terminal pickers using bubbletea's Elm architecture.
//
// [Pick] shows a filterable list of [Item] values and returns the one chosen with enter.
// q or esc cancels with [ErrCancelled]; cancelling the context stops the program.
// Constructors such as [PlaylistItems] and [TrackItems] adapt domain values to items.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q, / to filter) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
