package stitch

import (
	"context"
	"fmt"
	"sync"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/matcher"
	"github.com/banshee-data/trackstitch/internal/monitoring"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

// Phase is the point at which a stitch attempt finished.
type Phase string

const (
	PhaseNotRequired Phase = "not_required" // detector found no repairable bad frame
	PhaseExhausted   Phase = "exhausted"    // no frame in the window matched densely enough
	PhaseMerged      Phase = "merged"       // tracks were merged
)

// Outcome describes one Stitch call.
type Outcome struct {
	Frame        tracks.FrameID
	Phase        Phase
	ShotStart    tracks.FrameID
	MatchedFrame tracks.FrameID // 0 unless Phase is PhaseMerged
	MatchCount   int
	Merged       []tracks.MergePair // applied appends, receiving track first
	Retired      []tracks.TrackID
	Probes       []Probe
}

// Stitcher is the entry point for bad-frame stitching of one sequence.
type Stitcher struct {
	mu       sync.Mutex
	params   Params
	searcher *Searcher
}

// NewStitcher validates cfg and builds a Stitcher with the configured
// feature matcher.
func NewStitcher(cfg *config.StitchConfig) (*Stitcher, error) {
	params, err := NewParams(cfg)
	if err != nil {
		return nil, fmt.Errorf("stitch config: %w", err)
	}
	var mcfg *config.MatcherConfig
	if cfg != nil {
		mcfg = cfg.GetFeatureMatcher()
	}
	m, err := matcher.New(mcfg)
	if err != nil {
		return nil, fmt.Errorf("stitch config: feature_matcher: %w", err)
	}
	return NewWithMatcher(params, m), nil
}

// NewWithMatcher builds a Stitcher around an existing matcher.
func NewWithMatcher(p Params, m matcher.FeatureMatcher) *Stitcher {
	p.NewShotLength = max(p.NewShotLength, 1)
	p.SearchWorkers = max(p.SearchWorkers, 1)
	return &Stitcher{params: p, searcher: NewSearcher(m, p)}
}

// Params returns the stitcher's configuration.
func (s *Stitcher) Params() Params { return s.params }

// Stitch runs bad-frame detection for frame and, when a repair succeeds,
// returns a new set without the absorbed tracks. Otherwise input is
// returned unchanged.
func (s *Stitcher) Stitch(frame tracks.FrameID, input *tracks.TrackSet) *tracks.TrackSet {
	out, _ := s.StitchContext(context.Background(), frame, input)
	return out
}

// StitchContext is Stitch with a caller deadline and a description of
// the decision. A cancelled context ends the search as if it were
// exhausted.
func (s *Stitcher) StitchContext(ctx context.Context, frame tracks.FrameID, input *tracks.TrackSet) (*tracks.TrackSet, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := Outcome{Frame: frame, Phase: PhaseNotRequired}

	det := Detect(frame, input, s.params)
	if !det.Required {
		return input, outcome
	}
	outcome.ShotStart = det.ShotStart
	monitoring.Debugf("stitch: frame %d: bad frame before shot starting at %d", frame, det.ShotStart)

	res := s.searcher.Search(ctx, det.ShotStart, input)
	outcome.Probes = res.Probes
	if res.Candidate == nil {
		outcome.Phase = PhaseExhausted
		monitoring.Debugf("stitch: frame %d: no match within %d frames of %d",
			frame, s.params.MaxSearchLength, det.ShotStart)
		return input, outcome
	}

	merged, applied := Merge(res.Candidate, input)
	outcome.Phase = PhaseMerged
	outcome.MatchedFrame = res.Candidate.Frame
	outcome.MatchCount = res.Candidate.Matches.Size()
	outcome.Merged = applied
	outcome.Retired = tracks.RetiredIDs(applied)
	monitoring.Logf("stitch: frame %d: stitched shot %d to frame %d (%d matches, %d tracks merged)",
		frame, det.ShotStart, res.Candidate.Frame, outcome.MatchCount, len(applied))
	return merged, outcome
}
