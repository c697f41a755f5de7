package stitch

import "github.com/banshee-data/trackstitch/internal/tracks"

// Merge appends each matched shot track onto its candidate track and
// returns all rebuilt without the absorbed tracks, plus the pairs that
// were applied. Pairs whose append is illegal are skipped.
func Merge(c *Candidate, all *tracks.TrackSet) (*tracks.TrackSet, []tracks.MergePair) {
	if c == nil || c.Matches.Size() == 0 {
		return all, nil
	}

	candidateTrks := c.CandidateTracks.Tracks()
	shotTrks := c.ShotTracks.Tracks()

	pairs := make([]tracks.MergePair, 0, c.Matches.Size())
	for _, m := range c.Matches {
		pairs = append(pairs, tracks.MergePair{
			Into: candidateTrks[m.A].ID(),
			From: shotTrks[m.B].ID(),
		})
	}

	applied := all.Store().Merge(pairs)
	return tracks.FilterIDs(all, tracks.RetiredIDs(applied)), applied
}
