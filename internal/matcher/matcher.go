package matcher

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

var (
	// ErrUnknownType is returned for an unsupported feature_matcher.type.
	ErrUnknownType = errors.New("unknown feature matcher type")
	// ErrMisaligned is returned when features and descriptors differ in length.
	ErrMisaligned = errors.New("features and descriptors are not aligned")
	// ErrDescriptorSize is returned when descriptors of different lengths are compared.
	ErrDescriptorSize = errors.New("descriptor length mismatch")
)

// FeatureMatcher finds correspondences between the features of two frames.
// Match.A indexes the first frame's slices and Match.B the second's.
type FeatureMatcher interface {
	Match(featsA []tracks.Feature, descsA []tracks.Descriptor,
		featsB []tracks.Feature, descsB []tracks.Descriptor) (tracks.MatchSet, error)
}

// CheckConfig reports whether cfg describes a matcher New can build.
func CheckConfig(cfg *config.MatcherConfig) error {
	if cfg == nil {
		cfg = &config.MatcherConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.GetType() {
	case config.MatcherHungarian, config.MatcherNearest:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, cfg.GetType())
	}
}

// New builds the matcher selected by cfg.
func New(cfg *config.MatcherConfig) (FeatureMatcher, error) {
	if err := CheckConfig(cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &config.MatcherConfig{}
	}
	gate := gating{maxDistance: cfg.GetMaxDistance(), ratio: cfg.GetRatio()}
	switch cfg.GetType() {
	case config.MatcherNearest:
		return &NearestMatcher{gate: gate, crossCheck: cfg.GetCrossCheck()}, nil
	default:
		return &HungarianMatcher{gate: gate}, nil
	}
}

// gating holds the acceptance limits shared by all engines.
type gating struct {
	maxDistance float64 // 0 disables
	ratio       float64 // 0 disables
}

func (g gating) allowsDistance(d float64) bool {
	return g.maxDistance <= 0 || d <= g.maxDistance
}

// passesRatio applies the nearest/second-nearest test. A lone candidate
// always passes.
func (g gating) passesRatio(best, second float64) bool {
	if g.ratio <= 0 || math.IsInf(second, 1) {
		return true
	}
	return best <= g.ratio*second
}

// distanceMatrix returns the L2 distance between every pair of descriptors.
func distanceMatrix(featsA []tracks.Feature, descsA []tracks.Descriptor,
	featsB []tracks.Feature, descsB []tracks.Descriptor) ([][]float64, error) {
	if len(featsA) != len(descsA) || len(featsB) != len(descsB) {
		return nil, fmt.Errorf("%w: %d/%d and %d/%d", ErrMisaligned,
			len(featsA), len(descsA), len(featsB), len(descsB))
	}
	dist := make([][]float64, len(descsA))
	for i, a := range descsA {
		dist[i] = make([]float64, len(descsB))
		for j, b := range descsB {
			if len(a) != len(b) {
				return nil, fmt.Errorf("%w: %d vs %d", ErrDescriptorSize, len(a), len(b))
			}
			dist[i][j] = floats.Distance(a, b, 2)
		}
	}
	return dist, nil
}

// twoSmallest returns the smallest and second smallest values of row
// and the index of the smallest. Missing values are +Inf.
func twoSmallest(row []float64) (best, second float64, at int) {
	best, second, at = math.Inf(1), math.Inf(1), -1
	for j, d := range row {
		switch {
		case d < best:
			second = best
			best, at = d, j
		case d < second:
			second = d
		}
	}
	return best, second, at
}
