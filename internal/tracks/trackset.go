package tracks

import "sort"

// TrackSet is an id-membership view over a TrackStore. Retired ids are
// filtered out on every read, so a set never enumerates absorbed tracks.
type TrackSet struct {
	store *TrackStore
	ids   []TrackID // ascending, unique
}

// NewTrackSet builds a set over ids. Duplicates are dropped.
func NewTrackSet(store *TrackStore, ids []TrackID) *TrackSet {
	sorted := make([]TrackID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	uniq := sorted[:0]
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		uniq = append(uniq, id)
	}
	return &TrackSet{store: store, ids: uniq}
}

// Store returns the backing store.
func (ts *TrackSet) Store() *TrackStore { return ts.store }

// Tracks returns the live tracks of the set in ascending id order.
func (ts *TrackSet) Tracks() []*Track {
	ts.store.mu.RLock()
	defer ts.store.mu.RUnlock()
	out := make([]*Track, 0, len(ts.ids))
	for _, id := range ts.ids {
		if t := ts.store.live(id); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// IDs returns the ids of the live tracks in ascending order.
func (ts *TrackSet) IDs() []TrackID {
	trks := ts.Tracks()
	out := make([]TrackID, len(trks))
	for i, t := range trks {
		out[i] = t.ID()
	}
	return out
}

// Size returns the number of live tracks.
func (ts *TrackSet) Size() int { return len(ts.Tracks()) }

// ActiveTracks returns the subset of tracks observed on frame.
func (ts *TrackSet) ActiveTracks(frame FrameID) *TrackSet {
	var ids []TrackID
	for _, t := range ts.Tracks() {
		if t.HasFrame(frame) {
			ids = append(ids, t.ID())
		}
	}
	return &TrackSet{store: ts.store, ids: ids}
}

// FrameFeatures returns the features observed on frame, index-aligned
// with ActiveTracks(frame).Tracks().
func (ts *TrackSet) FrameFeatures(frame FrameID) []Feature {
	var out []Feature
	for _, t := range ts.Tracks() {
		if st, ok := t.StateAt(frame); ok {
			out = append(out, st.Feature)
		}
	}
	return out
}

// FrameDescriptors returns the descriptors observed on frame, aligned
// the same way as FrameFeatures.
func (ts *TrackSet) FrameDescriptors(frame FrameID) []Descriptor {
	var out []Descriptor
	for _, t := range ts.Tracks() {
		if st, ok := t.StateAt(frame); ok {
			out = append(out, st.Descriptor)
		}
	}
	return out
}

// PercentageTracked returns the fraction of tracks present on either
// frame that are present on both. It is 0 when neither frame has tracks.
func (ts *TrackSet) PercentageTracked(a, b FrameID) float64 {
	var both, either int
	for _, t := range ts.Tracks() {
		onA, onB := t.HasFrame(a), t.HasFrame(b)
		if onA || onB {
			either++
		}
		if onA && onB {
			both++
		}
	}
	if either == 0 {
		return 0
	}
	return float64(both) / float64(either)
}

// Without returns a new set holding every member of ts except ids.
func (ts *TrackSet) Without(ids []TrackID) *TrackSet {
	return FilterIDs(ts, ids)
}

// FilterIDs rebuilds set without the given ids.
func FilterIDs(set *TrackSet, ids []TrackID) *TrackSet {
	drop := make(map[TrackID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]TrackID, 0, len(set.ids))
	for _, id := range set.ids {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	return &TrackSet{store: set.store, ids: kept}
}

// Frames returns the sorted distinct frames observed by the set.
func (ts *TrackSet) Frames() []FrameID {
	seen := make(map[FrameID]struct{})
	for _, t := range ts.Tracks() {
		for _, st := range t.history {
			seen[st.Frame] = struct{}{}
		}
	}
	out := make([]FrameID, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
