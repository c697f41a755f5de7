package stitch

import "github.com/banshee-data/trackstitch/internal/tracks"

// Detection is the result of bad-frame detection for one frame.
type Detection struct {
	Required  bool
	ShotStart tracks.FrameID // first frame of the candidate new shot
}

// Continuity reports the fraction of tracks carried between two frames.
// *tracks.TrackSet implements it.
type Continuity interface {
	PercentageTracked(a, b tracks.FrameID) float64
}

// Detect decides whether frame closes a repairable bad-frame event: the
// transition into the shot starting new_shot_length-1 frames ago was weak,
// and every transition since has been strong.
func Detect(frame tracks.FrameID, set Continuity, p Params) Detection {
	shotLen := tracks.FrameID(max(p.NewShotLength, 1))
	if !p.Enabled || frame <= shotLen {
		return Detection{}
	}

	shotStart := frame - shotLen + 1
	required := set.PercentageTracked(shotStart-1, shotStart) < p.PercentMatchReq

	for f := shotStart + 1; required && f <= frame; f++ {
		required = set.PercentageTracked(f-1, f) >= p.PercentMatchReq
	}
	return Detection{Required: required, ShotStart: shotStart}
}
