// Package tracks owns the feature-track data model used by the stitcher.
//
// Responsibilities: per-frame feature observations (State), append-only
// track histories (Track), the id-owning TrackStore and the id-membership
// TrackSet views over it.
//
// Tracks are never shared between collections by pointer identity alone:
// a TrackSet holds ids and resolves them against its TrackStore, so a track
// retired by a merge disappears from every view at once.
package tracks
