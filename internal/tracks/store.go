package tracks

import (
	"fmt"
	"sync"
)

// MergePair asks the store to append track From onto track Into.
type MergePair struct {
	Into TrackID
	From TrackID
}

// TrackStore owns every Track of a sequence by id. Tracks absorbed by a
// merge are marked retired and stop resolving through any TrackSet.
type TrackStore struct {
	mu      sync.RWMutex
	nextID  TrackID
	tracks  map[TrackID]*Track
	retired map[TrackID]struct{}
}

// NewTrackStore creates an empty store. Ids are issued from 1.
func NewTrackStore() *TrackStore {
	return &TrackStore{
		nextID:  1,
		tracks:  make(map[TrackID]*Track),
		retired: make(map[TrackID]struct{}),
	}
}

// NewTrack registers an empty track and returns its id.
func (s *TrackStore) NewTrack() TrackID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.tracks[id] = &Track{id: id}
	return id
}

// Observe appends an observation to a live track.
func (s *TrackStore) Observe(id TrackID, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[id]
	if !ok {
		return fmt.Errorf("track %d: not found", id)
	}
	if _, gone := s.retired[id]; gone {
		return fmt.Errorf("track %d: retired", id)
	}
	if !t.Insert(st) {
		return fmt.Errorf("track %d: frame %d does not follow last frame %d", id, st.Frame, t.LastFrame())
	}
	return nil
}

// Get returns the track with id, or nil when unknown or retired.
func (s *TrackStore) Get(id TrackID) *Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live(id)
}

func (s *TrackStore) live(id TrackID) *Track {
	if _, gone := s.retired[id]; gone {
		return nil
	}
	return s.tracks[id]
}

// Retired reports whether id was absorbed by a merge.
func (s *TrackStore) Retired(id TrackID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, gone := s.retired[id]
	return gone
}

// All returns a TrackSet over every live track in the store.
func (s *TrackStore) All() *TrackSet {
	s.mu.RLock()
	ids := make([]TrackID, 0, len(s.tracks))
	for id := range s.tracks {
		if _, gone := s.retired[id]; !gone {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()
	return NewTrackSet(s, ids)
}

// Merge applies pairs in order as one transaction. Each successful
// append retires the absorbed track; failed appends are skipped. The
// pairs that were applied are returned in application order.
func (s *TrackStore) Merge(pairs []MergePair) []MergePair {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied []MergePair
	for _, p := range pairs {
		into, from := s.live(p.Into), s.live(p.From)
		if into == nil || from == nil {
			continue
		}
		if into.Append(from) {
			s.retired[p.From] = struct{}{}
			applied = append(applied, p)
		}
	}
	return applied
}

// RetiredIDs returns the absorbed ids of pairs.
func RetiredIDs(pairs []MergePair) []TrackID {
	out := make([]TrackID, len(pairs))
	for i, p := range pairs {
		out[i] = p.From
	}
	return out
}
