package usecase

import (
	"sort"

	"github.com/pricescope/backend/internal/domain"
)

// FilterPolicy selects how scored candidates are thresholded.
type FilterPolicy string

const (
	// FilterAbsolute keeps candidates whose score clears a fixed threshold.
	FilterAbsolute FilterPolicy = "absolute"
	// FilterRelative keeps candidates relative to the candidate set itself:
	// score >= max(average, best*0.6).
	FilterRelative FilterPolicy = "relative"
	// FilterAdaptive keeps a rank fraction that widens with the best
	// candidate's relevance, and additionally requires at least half of the
	// query keywords matched.
	FilterAdaptive FilterPolicy = "adaptive"
)

// DefaultThreshold is the absolute-mode default; 0.5 and 0.6 are the looser
// presets.
const DefaultThreshold = 0.7

// ResultFilter thresholds and ranks scored candidates and assigns
// qualitative match levels.
type ResultFilter struct {
	policy    FilterPolicy
	threshold float64
}

// NewResultFilter creates a filter. An unknown policy falls back to
// absolute mode, an out-of-range threshold to the default preset.
func NewResultFilter(policy FilterPolicy, threshold float64) *ResultFilter {
	switch policy {
	case FilterAbsolute, FilterRelative, FilterAdaptive:
	default:
		policy = FilterAbsolute
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &ResultFilter{policy: policy, threshold: threshold}
}

// Apply filters, sorts and labels the scored candidates. The output is
// never larger than the input and is sorted non-increasing by score, with
// matched-keyword count and recency as tie-breakers.
func (f *ResultFilter) Apply(query domain.ProductQuery, scored []domain.ScoredCandidate) []domain.ScoredCandidate {
	if len(scored) == 0 {
		return []domain.ScoredCandidate{}
	}

	sorted := make([]domain.ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SimilarityScore != sorted[j].SimilarityScore {
			return sorted[i].SimilarityScore > sorted[j].SimilarityScore
		}
		if sorted[i].MatchedKeywords != sorted[j].MatchedKeywords {
			return sorted[i].MatchedKeywords > sorted[j].MatchedKeywords
		}
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	var kept []domain.ScoredCandidate
	switch f.policy {
	case FilterRelative:
		kept = f.applyRelative(sorted)
	case FilterAdaptive:
		kept = f.applyAdaptive(query, sorted)
	default:
		kept = f.applyAbsolute(sorted)
	}

	for i := range kept {
		kept[i].MatchLevel = domain.MatchLevelForScore(kept[i].SimilarityScore)
	}
	if f.policy == FilterRelative {
		demoteNarrowMatches(kept)
	}
	return kept
}

func (f *ResultFilter) applyAbsolute(sorted []domain.ScoredCandidate) []domain.ScoredCandidate {
	kept := make([]domain.ScoredCandidate, 0, len(sorted))
	for _, c := range sorted {
		if c.SimilarityScore >= f.threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

func (f *ResultFilter) applyRelative(sorted []domain.ScoredCandidate) []domain.ScoredCandidate {
	var sum float64
	for _, c := range sorted {
		sum += c.SimilarityScore
	}
	average := sum / float64(len(sorted))
	cutoff := sorted[0].SimilarityScore * 0.6
	if average > cutoff {
		cutoff = average
	}

	kept := make([]domain.ScoredCandidate, 0, len(sorted))
	for _, c := range sorted {
		if c.SimilarityScore >= cutoff {
			kept = append(kept, c)
		}
	}
	return kept
}

// applyAdaptive widens the kept rank fraction with the best candidate's
// relevance expressed on a 0-1000 point scale, and requires at least half
// of the query keywords matched.
func (f *ResultFilter) applyAdaptive(query domain.ProductQuery, sorted []domain.ScoredCandidate) []domain.ScoredCandidate {
	bestPoints := sorted[0].SimilarityScore * 1000
	var fraction float64
	switch {
	case bestPoints >= 1000:
		fraction = 0.8
	case bestPoints >= 500:
		fraction = 0.7
	case bestPoints >= 200:
		fraction = 0.6
	default:
		fraction = 0.5
	}

	keepCount := int(float64(len(sorted))*fraction + 0.5)
	if keepCount < 1 {
		keepCount = 1
	}
	if keepCount > len(sorted) {
		keepCount = len(sorted)
	}

	minMatched := (len(query.Keywords) + 1) / 2
	kept := make([]domain.ScoredCandidate, 0, keepCount)
	for _, c := range sorted[:keepCount] {
		if c.MatchedKeywords >= minMatched {
			kept = append(kept, c)
		}
	}
	return kept
}

// demoteNarrowMatches caps the level at "very_good" when fewer than three
// component scores are strong, so a single dominant field cannot claim an
// excellent match in relative mode.
func demoteNarrowMatches(candidates []domain.ScoredCandidate) {
	for i := range candidates {
		if candidates[i].MatchLevel != domain.MatchExcellent {
			continue
		}
		strong := 0
		c := candidates[i].ComponentScores
		for _, score := range []float64{c.Name, c.Type, c.Variation, c.Vendor} {
			if score >= 0.8 {
				strong++
			}
		}
		if strong < 3 {
			candidates[i].MatchLevel = domain.MatchVeryGood
		}
	}
}
