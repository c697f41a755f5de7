package matcher

import "github.com/banshee-data/trackstitch/internal/tracks"

// NearestMatcher pairs each feature of the first frame with its nearest
// descriptor in the second. With cross-checking only mutual nearest
// neighbours are kept.
type NearestMatcher struct {
	gate       gating
	crossCheck bool
}

// Match implements FeatureMatcher.
func (n *NearestMatcher) Match(featsA []tracks.Feature, descsA []tracks.Descriptor,
	featsB []tracks.Feature, descsB []tracks.Descriptor) (tracks.MatchSet, error) {
	dist, err := distanceMatrix(featsA, descsA, featsB, descsB)
	if err != nil {
		return nil, err
	}

	var reverse []int
	if n.crossCheck {
		reverse = make([]int, len(descsB))
		for j := range reverse {
			col := make([]float64, len(dist))
			for i := range dist {
				col[i] = dist[i][j]
			}
			_, _, reverse[j] = twoSmallest(col)
		}
	}

	matches := tracks.MatchSet{}
	for i, row := range dist {
		best, second, j := twoSmallest(row)
		if j < 0 || !n.gate.allowsDistance(best) || !n.gate.passesRatio(best, second) {
			continue
		}
		if n.crossCheck && reverse[j] != i {
			continue
		}
		matches = append(matches, tracks.Match{A: i, B: j})
	}
	return matches, nil
}
