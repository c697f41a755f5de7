package stitch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/trackstitch/internal/matcher"
	"github.com/banshee-data/trackstitch/internal/monitoring"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

// Probe records the evaluation of one past frame.
type Probe struct {
	Frame         tracks.FrameID
	MatchCount    int
	CandidateSize int
	ShotSize      int
	Accepted      bool
	Err           error
}

// Candidate is an accepted past frame together with its correspondences.
// Matches index CandidateTracks.Tracks() (A) and ShotTracks.Tracks() (B).
type Candidate struct {
	Frame           tracks.FrameID
	Matches         tracks.MatchSet
	CandidateTracks *tracks.TrackSet
	ShotTracks      *tracks.TrackSet
}

// SearchResult holds the accepted candidate, if any, and the probes
// resolved up to that point in nearest-first order.
type SearchResult struct {
	Candidate *Candidate
	Probes    []Probe
}

// Searcher scans a bounded window of frames before a new shot for one
// whose features match the shot's first frame densely enough.
type Searcher struct {
	matcher matcher.FeatureMatcher
	params  Params
}

// NewSearcher creates a Searcher using m for feature matching.
func NewSearcher(m matcher.FeatureMatcher, p Params) *Searcher {
	return &Searcher{matcher: m, params: p}
}

// Window returns the frames to probe for shotStart, nearest first. The
// frame immediately before the shot is skipped: it already failed the
// detector's forward test.
func Window(shotStart tracks.FrameID, maxSearchLength uint) []tracks.FrameID {
	first := shotStart - 2
	if first <= 0 {
		return nil
	}
	var lower tracks.FrameID
	if uint64(maxSearchLength) < uint64(first) {
		lower = first - tracks.FrameID(maxSearchLength)
	}

	var frames []tracks.FrameID
	for probe := first; probe > lower; probe-- {
		frames = append(frames, probe)
	}
	return frames
}

// Accepts reports whether matchCount reaches the required fraction of
// the average size of the two frames' track populations. The boundary
// is inclusive.
func Accepts(matchCount, candidateSize, shotSize int, percentMatchReq float64) bool {
	return 2*float64(matchCount) >= percentMatchReq*float64(candidateSize+shotSize)
}

// Search returns the nearest acceptable frame before shotStart. The
// first acceptance in nearest-first order wins even when a farther
// frame would match more densely.
func (s *Searcher) Search(ctx context.Context, shotStart tracks.FrameID, set *tracks.TrackSet) SearchResult {
	window := Window(shotStart, s.params.MaxSearchLength)
	if len(window) == 0 {
		return SearchResult{}
	}
	shot := set.ActiveTracks(shotStart)

	if s.params.SearchWorkers <= 1 || len(window) == 1 {
		return s.searchSequential(ctx, window, shotStart, shot, set)
	}
	return s.searchParallel(ctx, window, shotStart, shot, set)
}

func (s *Searcher) searchSequential(ctx context.Context, window []tracks.FrameID,
	shotStart tracks.FrameID, shot, set *tracks.TrackSet) SearchResult {
	var res SearchResult
	for _, probe := range window {
		if ctx.Err() != nil {
			return res
		}
		probeRes, cand := s.evaluate(probe, shotStart, shot, set)
		res.Probes = append(res.Probes, probeRes)
		if cand != nil {
			res.Candidate = cand
			return res
		}
	}
	return res
}

// searchParallel matches several frames at once but commits strictly
// nearest first: a farther frame is only used once every nearer frame has
// been evaluated and rejected.
func (s *Searcher) searchParallel(ctx context.Context, window []tracks.FrameID,
	shotStart tracks.FrameID, shot, set *tracks.TrackSet) SearchResult {
	type slot struct {
		probe Probe
		cand  *Candidate
		done  chan struct{}
	}
	slots := make([]*slot, len(window))
	for i := range slots {
		slots[i] = &slot{done: make(chan struct{})}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.SearchWorkers)

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for i, probe := range window {
			probe := probe
			sl := slots[i]
			g.Go(func() error {
				defer close(sl.done)
				if gctx.Err() != nil {
					return nil
				}
				sl.probe, sl.cand = s.evaluate(probe, shotStart, shot, set)
				return nil
			})
		}
	}()

	var res SearchResult
	for _, sl := range slots {
		select {
		case <-sl.done:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		res.Probes = append(res.Probes, sl.probe)
		if sl.cand != nil {
			res.Candidate = sl.cand
			break
		}
	}

	cancel()
	<-dispatched
	_ = g.Wait()
	return res
}

func (s *Searcher) evaluate(probe, shotStart tracks.FrameID, shot, set *tracks.TrackSet) (Probe, *Candidate) {
	candidate := set.ActiveTracks(probe)
	res := Probe{
		Frame:         probe,
		CandidateSize: candidate.Size(),
		ShotSize:      shot.Size(),
	}

	matches, err := s.matcher.Match(
		candidate.FrameFeatures(probe), candidate.FrameDescriptors(probe),
		shot.FrameFeatures(shotStart), shot.FrameDescriptors(shotStart),
	)
	if err != nil {
		monitoring.Logf("stitch: matching frame %d against %d failed: %v", probe, shotStart, err)
		res.Err = err
		return res, nil
	}

	res.MatchCount = matches.Size()
	res.Accepted = Accepts(res.MatchCount, res.CandidateSize, res.ShotSize, s.params.PercentMatchReq)
	monitoring.Debugf("stitch: probe frame=%d shot_start=%d matches=%d sizes=%d/%d accepted=%v",
		probe, shotStart, res.MatchCount, res.CandidateSize, res.ShotSize, res.Accepted)
	if !res.Accepted {
		return res, nil
	}
	return res, &Candidate{
		Frame:           probe,
		Matches:         matches,
		CandidateTracks: candidate,
		ShotTracks:      shot,
	}
}
