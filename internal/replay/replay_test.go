package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/stitch"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

func floatPtr(f float64) *float64 { return &f }

// cutFixture builds twelve frames where the tracker loses three features
// at the 8→9 transition and re-detects them under new labels.
func cutFixture() *Fixture {
	descs := [][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}
	survivor := []float64{0, 0, 0, 1}

	fx := &Fixture{Name: "cut"}
	for f := 1; f <= 12; f++ {
		fr := FrameData{Frame: tracks.FrameID(f)}
		fr.Observations = append(fr.Observations, Observation{Label: "s", X: 1, Y: float64(f), Descriptor: survivor})
		for i, d := range descs {
			label := fmt.Sprintf("b%d", i)
			if f >= 9 {
				label = fmt.Sprintf("a%d", i)
			}
			fr.Observations = append(fr.Observations, Observation{Label: label, X: float64(10 * i), Y: float64(f), Descriptor: d})
		}
		fx.Frames = append(fx.Frames, fr)
	}
	return fx
}

func newStitcher(t *testing.T) *stitch.Stitcher {
	t.Helper()
	s, err := stitch.NewStitcher(&config.StitchConfig{
		PercentMatchReq: floatPtr(0.25),
		FeatureMatcher:  &config.MatcherConfig{MaxDistance: floatPtr(0.1)},
	})
	require.NoError(t, err)
	return s
}

type captureSink struct {
	outcomes []stitch.Outcome
	err      error
}

func (c *captureSink) Record(_ context.Context, o stitch.Outcome) error {
	c.outcomes = append(c.outcomes, o)
	return c.err
}

func TestRunStitchesAcrossCut(t *testing.T) {
	t.Parallel()
	sink := &captureSink{}

	sum, err := Run(context.Background(), cutFixture(), newStitcher(t), sink)
	require.NoError(t, err)

	assert.Equal(t, 12, sum.Frames)
	assert.Equal(t, 1, sum.Attempts)
	require.Len(t, sum.Stitches, 1)
	st := sum.Stitches[0]
	assert.Equal(t, tracks.FrameID(10), st.Frame)
	assert.Equal(t, tracks.FrameID(9), st.ShotStart)
	assert.Equal(t, tracks.FrameID(7), st.MatchedFrame)
	assert.Len(t, st.Retired, 3)

	receiving := make(map[tracks.TrackID]bool)
	for _, p := range st.Merged {
		receiving[p.Into] = true
	}

	// Re-detected labels now feed the original tracks; the lost labels
	// are released.
	for i := 0; i < 3; i++ {
		_, kept := sum.LabelTracks[fmt.Sprintf("b%d", i)]
		assert.False(t, kept)
		id := sum.LabelTracks[fmt.Sprintf("a%d", i)]
		assert.True(t, receiving[id], "label a%d -> track %d", i, id)

		trk := sum.Store.Get(id)
		require.NotNil(t, trk)
		assert.Equal(t, tracks.FrameID(1), trk.FirstFrame())
		assert.Equal(t, tracks.FrameID(12), trk.LastFrame())
		assert.Equal(t, 12, trk.Len())
	}
	assert.Equal(t, 4, sum.Result.Size())
	assert.Len(t, sink.outcomes, 1)

	require.Len(t, sum.Continuity, 11)
	assert.InDelta(t, 1.0/7.0, sum.Continuity[7].Percentage, 1e-9)
	assert.Equal(t, tracks.FrameID(9), sum.Continuity[7].Frame)
}

func TestRunReacquiredLabelStartsNewTrack(t *testing.T) {
	t.Parallel()
	fx := cutFixture()
	fx.Frames = append(fx.Frames, FrameData{
		Frame: 13,
		Observations: []Observation{
			{Label: "s", X: 1, Y: 13, Descriptor: []float64{0, 0, 0, 1}},
			{Label: "a0", X: 0, Y: 13, Descriptor: []float64{1, 0, 0, 0}},
			{Label: "b0", X: 0, Y: 13, Descriptor: []float64{1, 0, 0, 0}},
		},
	})
	require.NoError(t, fx.Validate())

	sum, err := Run(context.Background(), fx, newStitcher(t), nil)
	require.NoError(t, err)
	require.Len(t, sum.Stitches, 1)

	merged := sum.Store.Get(sum.LabelTracks["a0"])
	require.NotNil(t, merged)
	assert.Equal(t, tracks.FrameID(1), merged.FirstFrame())
	assert.Equal(t, tracks.FrameID(13), merged.LastFrame())

	fresh := sum.Store.Get(sum.LabelTracks["b0"])
	require.NotNil(t, fresh)
	assert.NotEqual(t, merged.ID(), fresh.ID())
	assert.Equal(t, 1, fresh.Len())
	assert.Equal(t, tracks.FrameID(13), fresh.FirstFrame())
}

func TestRunDisabled(t *testing.T) {
	t.Parallel()
	s, err := stitch.NewStitcher(&config.StitchConfig{Enabled: new(bool)})
	require.NoError(t, err)

	sum, err := Run(context.Background(), cutFixture(), s, nil)
	require.NoError(t, err)
	assert.Zero(t, sum.Attempts)
	assert.Equal(t, 7, sum.Result.Size())
}

func TestRunSinkError(t *testing.T) {
	t.Parallel()
	sink := &captureSink{err: errors.New("disk full")}

	_, err := Run(context.Background(), cutFixture(), newStitcher(t), sink)
	assert.ErrorContains(t, err, "disk full")
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cutFixture(), newStitcher(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	good := filepath.Join(dir, "clip.json")
	require.NoError(t, os.WriteFile(good, []byte(`{
  "frames": [
    {"frame": 1, "observations": [{"label": "a", "x": 1, "y": 2, "descriptor": [0.5, 0.5]}]},
    {"frame": 2, "observations": [{"label": "a", "x": 1.5, "y": 2, "descriptor": [0.5, 0.4]}]}
  ]
}`), 0644))
	fx, err := LoadFixture(good)
	require.NoError(t, err)
	assert.Equal(t, "clip.json", fx.Name)
	assert.Len(t, fx.Frames, 2)

	gap := filepath.Join(dir, "gap.json")
	require.NoError(t, os.WriteFile(gap, []byte(`{"frames": [{"frame": 1}, {"frame": 3}]}`), 0644))
	_, err = LoadFixture(gap)
	assert.ErrorContains(t, err, "expected frame number 2")

	dup := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`{"frames": [{"frame": 1, "observations": [{"label": "x"}, {"label": "x"}]}]}`), 0644))
	_, err = LoadFixture(dup)
	assert.ErrorContains(t, err, "duplicate label")

	_, err = LoadFixture(filepath.Join(dir, "clip.txt"))
	assert.Error(t, err)
}
