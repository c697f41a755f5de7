package matcher

import "github.com/banshee-data/trackstitch/internal/tracks"

// HungarianMatcher pairs features by minimum total descriptor distance.
// Each feature takes part in at most one correspondence.
type HungarianMatcher struct {
	gate gating
}

// Match implements FeatureMatcher.
func (h *HungarianMatcher) Match(featsA []tracks.Feature, descsA []tracks.Descriptor,
	featsB []tracks.Feature, descsB []tracks.Descriptor) (tracks.MatchSet, error) {
	dist, err := distanceMatrix(featsA, descsA, featsB, descsB)
	if err != nil {
		return nil, err
	}
	if len(dist) == 0 || len(descsB) == 0 {
		return tracks.MatchSet{}, nil
	}

	cost := make([][]float64, len(dist))
	for i, row := range dist {
		best, second, nearest := twoSmallest(row)
		ratioOK := h.gate.passesRatio(best, second)
		cost[i] = make([]float64, len(row))
		for j, d := range row {
			allowed := h.gate.allowsDistance(d)
			// With the ratio test on, a row may only take its unambiguous nearest neighbour.
			if h.gate.ratio > 0 {
				allowed = allowed && ratioOK && j == nearest
			}
			if !allowed {
				cost[i][j] = forbiddenCost
				continue
			}
			cost[i][j] = d
		}
	}

	assignment := assignMinCost(cost)
	matches := make(tracks.MatchSet, 0, len(assignment))
	for i, j := range assignment {
		if j >= 0 {
			matches = append(matches, tracks.Match{A: i, B: j})
		}
	}
	return matches, nil
}
