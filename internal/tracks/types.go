package tracks

// FrameID identifies a frame in a sequence. Frames are numbered from 1.
type FrameID int64

// TrackID identifies a track within a TrackStore.
type TrackID int64

// Feature is a keypoint location with scale and orientation.
type Feature struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale,omitempty"`
	Angle float64 `json:"angle,omitempty"`
}

// Descriptor is the appearance vector of a feature.
type Descriptor []float64

// State is a single observation of a track on one frame.
type State struct {
	Frame      FrameID
	Feature    Feature
	Descriptor Descriptor
}

// Match pairs element A of one collection with element B of another.
type Match struct {
	A int
	B int
}

// MatchSet is an ordered list of matches.
type MatchSet []Match

// Size returns the number of matches.
func (m MatchSet) Size() int { return len(m) }
