package tracks

import "sort"

// Track is the ordered observation history of one feature.
type Track struct {
	id      TrackID
	history []State
}

// ID returns the track id.
func (t *Track) ID() TrackID { return t.id }

// Len returns the number of observations.
func (t *Track) Len() int { return len(t.history) }

// History returns a copy of the observation history.
func (t *Track) History() []State {
	out := make([]State, len(t.history))
	copy(out, t.history)
	return out
}

// FirstFrame returns the first observed frame, or 0 for an empty track.
func (t *Track) FirstFrame() FrameID {
	if len(t.history) == 0 {
		return 0
	}
	return t.history[0].Frame
}

// LastFrame returns the last observed frame, or 0 for an empty track.
func (t *Track) LastFrame() FrameID {
	if len(t.history) == 0 {
		return 0
	}
	return t.history[len(t.history)-1].Frame
}

// StateAt returns the observation on frame, if any.
func (t *Track) StateAt(frame FrameID) (State, bool) {
	i := sort.Search(len(t.history), func(i int) bool { return t.history[i].Frame >= frame })
	if i < len(t.history) && t.history[i].Frame == frame {
		return t.history[i], true
	}
	return State{}, false
}

// HasFrame reports whether the track was observed on frame.
func (t *Track) HasFrame(frame FrameID) bool {
	_, ok := t.StateAt(frame)
	return ok
}

// Insert adds an observation after the current end of the history.
// It returns false when the frame does not come strictly after LastFrame.
func (t *Track) Insert(s State) bool {
	if len(t.history) > 0 && s.Frame <= t.LastFrame() {
		return false
	}
	t.history = append(t.history, s)
	return true
}

// Append extends t with the observations of other. It fails without
// modifying t when other is empty or starts at or before t's last frame.
func (t *Track) Append(other *Track) bool {
	if other == nil || other == t || len(other.history) == 0 {
		return false
	}
	if len(t.history) > 0 && t.LastFrame() >= other.FirstFrame() {
		return false
	}
	t.history = append(t.history, other.history...)
	return true
}
