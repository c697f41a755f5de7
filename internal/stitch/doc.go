// Package stitch repairs track fragmentation caused by isolated bad frames.
//
// A bad frame is a transition that carries too few tracks forward. When
// one is followed by a stable new shot of at least new_shot_length frames,
// the start of the shot is matched against a bounded window of earlier
// frames. The nearest frame whose match density reaches the threshold is
// used to append the shot's tracks onto the older tracks, and the absorbed
// tracks are retired from the returned set.
//
// Stitch is called once per newly tracked frame, in increasing frame
// order. A Stitcher serializes its calls; use one Stitcher per sequence.
package stitch
