// Package replay feeds a recorded sequence through a Stitcher one frame at
// a time, the way the tracking pipeline does.
package replay

import (
	"context"
	"fmt"

	"github.com/banshee-data/trackstitch/internal/monitoring"
	"github.com/banshee-data/trackstitch/internal/stitch"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

// Sink receives the outcome of every stitch attempt that reached the
// backward search.
type Sink interface {
	Record(ctx context.Context, o stitch.Outcome) error
}

// Transition is the continuity between a frame and its predecessor, as
// seen before stitching that frame.
type Transition struct {
	Frame      tracks.FrameID
	Percentage float64
}

// Summary describes a completed replay.
type Summary struct {
	Name        string
	Frames      int
	Attempts    int // calls that reached the backward search
	Stitches    []stitch.Outcome
	Continuity  []Transition
	Store       *tracks.TrackStore
	Result      *tracks.TrackSet
	LabelTracks map[string]tracks.TrackID
}

// Run replays fx through s. sink may be nil.
func Run(ctx context.Context, fx *Fixture, s *stitch.Stitcher, sink Sink) (*Summary, error) {
	store := tracks.NewTrackStore()
	labels := make(map[string]tracks.TrackID)
	current := store.All()

	sum := &Summary{Name: fx.Name, Store: store, LabelTracks: labels}

	for _, fr := range fx.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ids []tracks.TrackID
		for _, obs := range fr.Observations {
			id, ok := labels[obs.Label]
			if !ok {
				id = store.NewTrack()
				labels[obs.Label] = id
			}
			err := store.Observe(id, tracks.State{
				Frame:      fr.Frame,
				Feature:    tracks.Feature{X: obs.X, Y: obs.Y, Scale: obs.Scale, Angle: obs.Angle},
				Descriptor: tracks.Descriptor(obs.Descriptor),
			})
			if err != nil {
				return nil, fmt.Errorf("frame %d label %q: %w", fr.Frame, obs.Label, err)
			}
			ids = append(ids, id)
		}
		current = tracks.NewTrackSet(store, append(current.IDs(), ids...))

		if fr.Frame > 1 {
			sum.Continuity = append(sum.Continuity, Transition{
				Frame:      fr.Frame,
				Percentage: current.PercentageTracked(fr.Frame-1, fr.Frame),
			})
		}

		var outcome stitch.Outcome
		current, outcome = s.StitchContext(ctx, fr.Frame, current)
		if outcome.Phase == stitch.PhaseNotRequired {
			continue
		}

		sum.Attempts++
		if outcome.Phase == stitch.PhaseMerged {
			sum.Stitches = append(sum.Stitches, outcome)
			redirectLabels(labels, outcome.Merged)
		}
		if sink != nil {
			if err := sink.Record(ctx, outcome); err != nil {
				return nil, fmt.Errorf("record frame %d: %w", fr.Frame, err)
			}
		}
	}

	sum.Frames = len(fx.Frames)
	sum.Result = current
	monitoring.Logf("replay %s: %d frames, %d attempts, %d stitches, %d live tracks",
		fx.Name, sum.Frames, sum.Attempts, len(sum.Stitches), current.Size())
	return sum, nil
}

// redirectLabels points labels of absorbed tracks at the receiving track
// so later observations extend the merged history. The receiving track's
// own labels are dropped: the tracker lost them, and a re-acquired label
// starts a fresh track instead of colliding with the redirected one.
func redirectLabels(labels map[string]tracks.TrackID, merged []tracks.MergePair) {
	into := make(map[tracks.TrackID]tracks.TrackID, len(merged))
	receiving := make(map[tracks.TrackID]struct{}, len(merged))
	for _, p := range merged {
		into[p.From] = p.Into
		receiving[p.Into] = struct{}{}
	}
	for label, id := range labels {
		if target, ok := into[id]; ok {
			labels[label] = target
			continue
		}
		if _, ok := receiving[id]; ok {
			delete(labels, label)
		}
	}
}
