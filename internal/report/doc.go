// Package report renders the continuity of a replayed sequence: the
// fraction of tracks carried across each transition, the stitch
// threshold and the frames where a stitch was applied.
package report
