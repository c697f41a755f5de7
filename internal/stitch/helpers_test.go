package stitch

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackstitch/internal/tracks"
)

// addTrack registers a track observed on every frame in [first, last].
// Feature.Y carries the frame number so scripted matchers can tell which
// frame they were handed.
func addTrack(t *testing.T, store *tracks.TrackStore, first, last tracks.FrameID) tracks.TrackID {
	t.Helper()
	id := store.NewTrack()
	for f := first; f <= last; f++ {
		err := store.Observe(id, tracks.State{
			Frame:      f,
			Feature:    tracks.Feature{X: float64(id), Y: float64(f)},
			Descriptor: tracks.Descriptor{float64(id), 0},
		})
		require.NoError(t, err)
	}
	return id
}

// scene is the bad-frame layout shared by the searcher and stitcher tests:
//
//	survivor  1..12
//	before    3 tracks, 1..8
//	after     3 tracks, 9..12
//
// Transition 8→9 keeps 1 of 7 tracks; every other transition keeps all.
type scene struct {
	store    *tracks.TrackStore
	survivor tracks.TrackID
	before   []tracks.TrackID
	after    []tracks.TrackID
}

func newScene(t *testing.T) *scene {
	t.Helper()
	sc := &scene{store: tracks.NewTrackStore()}
	sc.survivor = addTrack(t, sc.store, 1, 12)
	for i := 0; i < 3; i++ {
		sc.before = append(sc.before, addTrack(t, sc.store, 1, 8))
	}
	for i := 0; i < 3; i++ {
		sc.after = append(sc.after, addTrack(t, sc.store, 9, 12))
	}
	return sc
}

func (sc *scene) all() *tracks.TrackSet { return sc.store.All() }

// scriptedMatcher returns a fixed MatchSet per probed frame.
type scriptedMatcher struct {
	mu      sync.Mutex
	byFrame map[tracks.FrameID]tracks.MatchSet
	fail    map[tracks.FrameID]bool
	wait    map[tracks.FrameID]<-chan struct{}
	onDone  func(tracks.FrameID)
	calls   []tracks.FrameID
}

func (m *scriptedMatcher) Match(featsA []tracks.Feature, _ []tracks.Descriptor,
	_ []tracks.Feature, _ []tracks.Descriptor) (tracks.MatchSet, error) {
	var frame tracks.FrameID
	if len(featsA) > 0 {
		frame = tracks.FrameID(featsA[0].Y)
	}

	m.mu.Lock()
	m.calls = append(m.calls, frame)
	gate := m.wait[frame]
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if m.onDone != nil {
		defer m.onDone(frame)
	}
	if m.fail[frame] {
		return nil, errors.New("scripted failure")
	}
	return m.byFrame[frame], nil
}

func (m *scriptedMatcher) called() []tracks.FrameID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tracks.FrameID, len(m.calls))
	copy(out, m.calls)
	return out
}

// continuityTable is a Continuity backed by explicit per-transition values.
type continuityTable map[[2]tracks.FrameID]float64

func (c continuityTable) PercentageTracked(a, b tracks.FrameID) float64 {
	if v, ok := c[[2]tracks.FrameID{a, b}]; ok {
		return v
	}
	return 1
}

func historyFrames(trk *tracks.Track) []tracks.FrameID {
	var out []tracks.FrameID
	for _, st := range trk.History() {
		out = append(out, st.Frame)
	}
	return out
}

func frameRange(first, last tracks.FrameID) []tracks.FrameID {
	var out []tracks.FrameID
	for f := first; f <= last; f++ {
		out = append(out, f)
	}
	return out
}
