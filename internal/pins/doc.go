// Package pins computes and applies pinned playlist orderings.
//
// [Reconcile] turns a playlist's current track sequence and its pins into a target sequence:
// every pinned track sits at its position, the remaining tracks keep their relative order, and
// duplicates are dropped. [Plan] compares current and target and yields at most one
// full-replacement [Operation], which [Apply] executes through a [TrackReplacer].
//
// The edit functions ([Add], [Remove], [Move], [Evict], [Sort]) enforce the pin set invariants:
// each position and each track appears at most once. They either succeed completely or leave the
// set untouched.
//
// Positions are 0-based throughout this package.
package pins
