package stitch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/matcher"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

func floatPtr(f float64) *float64 { return &f }
func uintPtr(u uint) *uint        { return &u }
func boolPtr(b bool) *bool        { return &b }
func strPtr(s string) *string     { return &s }

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewParams(t *testing.T) {
	t.Parallel()

	p, err := NewParams(nil)
	require.NoError(t, err)
	assert.Equal(t, Params{Enabled: true, PercentMatchReq: 0.2, NewShotLength: 2, MaxSearchLength: 5, SearchWorkers: 1}, p)
	assert.Equal(t, p, DefaultParams())

	p, err = NewParams(&config.StitchConfig{NewShotLength: uintPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.NewShotLength)

	p, err = NewParams(&config.StitchConfig{Enabled: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, p.Enabled)
}

func TestCheckConfigThreshold(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{-1, -0.5, 0, 0.2, 1} {
		assert.NoError(t, CheckConfig(&config.StitchConfig{PercentMatchReq: floatPtr(v)}), "value %v", v)
	}
	for _, v := range []float64{-1.01, 1.01, 7} {
		err := CheckConfig(&config.StitchConfig{PercentMatchReq: floatPtr(v)})
		assert.True(t, errors.Is(err, config.ErrInvalidConfig), "value %v: %v", v, err)
	}
}

func TestNewStitcherRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := NewStitcher(&config.StitchConfig{PercentMatchReq: floatPtr(1.5)})
	assert.Error(t, err)

	_, err = NewStitcher(&config.StitchConfig{FeatureMatcher: &config.MatcherConfig{Type: strPtr("flann")}})
	assert.True(t, errors.Is(err, matcher.ErrUnknownType), "got %v", err)

	s, err := NewStitcher(config.DefaultStitchConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), s.Params())

	s, err = NewStitcher(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), s.Params())
}

// ---------------------------------------------------------------------------
// No-op paths
// ---------------------------------------------------------------------------

func TestStitchIdentityWithoutHistory(t *testing.T) {
	t.Parallel()
	sc := newScene(t)
	m := &scriptedMatcher{}
	s := NewWithMatcher(Params{Enabled: true, PercentMatchReq: 0.25, NewShotLength: 2, MaxSearchLength: 5}, m)

	input := sc.all()
	for frame := tracks.FrameID(1); frame <= 2; frame++ {
		out, outcome := s.StitchContext(context.Background(), frame, input)
		assert.Same(t, input, out)
		assert.Equal(t, PhaseNotRequired, outcome.Phase)
	}
	assert.Empty(t, m.called())
}

func TestStitchDisabledIsIdentity(t *testing.T) {
	t.Parallel()
	sc := newScene(t)
	m := &scriptedMatcher{byFrame: map[tracks.FrameID]tracks.MatchSet{7: {{A: 1, B: 1}}}}
	s := NewWithMatcher(Params{Enabled: false, PercentMatchReq: 0.25, NewShotLength: 2, MaxSearchLength: 5}, m)

	input := sc.all()
	before := input.IDs()
	for frame := tracks.FrameID(1); frame <= 12; frame++ {
		assert.Same(t, input, s.Stitch(frame, input))
	}
	assert.Equal(t, before, input.IDs())
	assert.Empty(t, m.called())
}

func TestStitchExhaustedReturnsInput(t *testing.T) {
	t.Parallel()
	sc := newScene(t)
	s := NewWithMatcher(searchParams(1), &scriptedMatcher{})

	input := sc.all()
	before := input.IDs()
	out, outcome := s.StitchContext(context.Background(), 10, input)

	assert.Same(t, input, out)
	assert.Equal(t, before, out.IDs())
	assert.Equal(t, PhaseExhausted, outcome.Phase)
	assert.Equal(t, tracks.FrameID(9), outcome.ShotStart)
	assert.Len(t, outcome.Probes, 5)
	for _, id := range sc.after {
		assert.False(t, sc.store.Retired(id))
	}
}

// ---------------------------------------------------------------------------
// End to end
// ---------------------------------------------------------------------------

// Twelve frames with a single bad transition 8→9. Frame 6 matches exactly
// at the threshold and frame 5 above it; the nearer frame 6 must win.
func TestStitchEndToEndPrefersNearerFrame(t *testing.T) {
	for _, workers := range []int{1, 3} {
		sc := newScene(t)
		m := &scriptedMatcher{byFrame: map[tracks.FrameID]tracks.MatchSet{
			6: {{A: 1, B: 1}},
			5: {{A: 1, B: 1}, {A: 2, B: 2}, {A: 3, B: 3}},
		}}
		s := NewWithMatcher(searchParams(workers), m)

		current := sc.all()
		var outcome Outcome
		for frame := tracks.FrameID(1); frame <= 12; frame++ {
			var oc Outcome
			current, oc = s.StitchContext(context.Background(), frame, current)
			if frame == 10 {
				outcome = oc
			} else {
				assert.NotEqual(t, PhaseMerged, oc.Phase, "workers=%d frame=%d", workers, frame)
			}
		}

		require.Equal(t, PhaseMerged, outcome.Phase, "workers=%d", workers)
		assert.Equal(t, tracks.FrameID(6), outcome.MatchedFrame)
		assert.Equal(t, 1, outcome.MatchCount)
		assert.Equal(t, []tracks.TrackID{sc.after[0]}, outcome.Retired)

		want := []tracks.TrackID{sc.survivor, sc.before[0], sc.before[1], sc.before[2], sc.after[1], sc.after[2]}
		if diff := cmp.Diff(want, current.IDs()); diff != "" {
			t.Errorf("workers=%d result ids mismatch (-want +got):\n%s", workers, diff)
		}

		merged := sc.store.Get(sc.before[0])
		require.NotNil(t, merged)
		assert.Equal(t, frameRange(1, 12), historyFrames(merged))
	}
}

func TestStitchMergeSkipsIllegalAppends(t *testing.T) {
	t.Parallel()
	sc := newScene(t)
	m := &scriptedMatcher{byFrame: map[tracks.FrameID]tracks.MatchSet{
		7: {
			{A: 0, B: 0}, // survivor onto itself
			{A: 1, B: 1}, // before[0] ← after[0]
			{A: 2, B: 0}, // before[1] ← survivor: survivor overlaps, refused
			{A: 3, B: 2}, // before[2] ← after[1]
		},
	}}
	s := NewWithMatcher(searchParams(1), m)

	out, outcome := s.StitchContext(context.Background(), 10, sc.all())
	require.Equal(t, PhaseMerged, outcome.Phase)
	assert.Equal(t, tracks.FrameID(7), outcome.MatchedFrame)
	assert.Equal(t, []tracks.TrackID{sc.after[0], sc.after[1]}, outcome.Retired)
	assert.Equal(t, []tracks.MergePair{
		{Into: sc.before[0], From: sc.after[0]},
		{Into: sc.before[2], From: sc.after[1]},
	}, outcome.Merged)

	want := []tracks.TrackID{sc.survivor, sc.before[0], sc.before[1], sc.before[2], sc.after[2]}
	assert.Equal(t, want, out.IDs())
	assert.Equal(t, frameRange(1, 8), historyFrames(sc.store.Get(sc.before[1])))
	assert.Equal(t, frameRange(1, 12), historyFrames(sc.store.Get(sc.before[2])))
}

func TestStitchWithDescriptorMatcher(t *testing.T) {
	t.Parallel()

	// The three tracks after the cut re-observe the three tracks before it:
	// same descriptors, new ids.
	store := tracks.NewTrackStore()
	desc := []tracks.Descriptor{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	observe := func(d tracks.Descriptor, first, last tracks.FrameID) tracks.TrackID {
		id := store.NewTrack()
		for f := first; f <= last; f++ {
			require.NoError(t, store.Observe(id, tracks.State{Frame: f, Descriptor: d}))
		}
		return id
	}
	var before, after []tracks.TrackID
	for _, d := range desc {
		before = append(before, observe(d, 1, 6))
	}
	for _, d := range desc {
		after = append(after, observe(d, 7, 9))
	}

	s, err := NewStitcher(&config.StitchConfig{
		PercentMatchReq: floatPtr(0.5),
		FeatureMatcher:  &config.MatcherConfig{Type: strPtr(config.MatcherHungarian), MaxDistance: floatPtr(0.1)},
	})
	require.NoError(t, err)

	out := s.Stitch(8, store.All())
	assert.Equal(t, before, out.IDs())
	for i, id := range before {
		assert.Equal(t, frameRange(1, 9), historyFrames(store.Get(id)))
		assert.True(t, store.Retired(after[i]))
	}
}
