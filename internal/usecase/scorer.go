package usecase

import (
	"math"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/pricescope/backend/internal/domain"
)

// Score bonuses applied after weighting; each is independent and the final
// score is capped at 1.0.
const (
	exactNameBonus    = 0.12
	exactVendorBonus  = 0.10
	exactTypeBonus    = 0.10
	breadthBonus      = 0.06 // two or more strong component scores
	breadthThreshold  = 0.75
	substringBonus    = 0.25
	emptyFieldFloor   = 0.3
	neutralVolume     = 0.5
	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

// ScoreWeights are the per-field weights of the composite similarity score.
type ScoreWeights struct {
	Name      float64
	Type      float64
	Variation float64
	Vendor    float64
	Volume    float64
}

// DefaultScoreWeights is the balanced profile confirmed as the engine
// default.
var DefaultScoreWeights = ScoreWeights{
	Name:      0.35,
	Type:      0.25,
	Variation: 0.20,
	Vendor:    0.15,
	Volume:    0.05,
}

// SimilarityScorer computes a weighted composite similarity score per
// candidate from per-field string similarities plus exact-match and
// breadth bonuses. Scores are always in [0, 1].
type SimilarityScorer struct {
	weights ScoreWeights
}

// NewSimilarityScorer creates a scorer; zero weights fall back to the
// default profile.
func NewSimilarityScorer(weights ScoreWeights) *SimilarityScorer {
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights
	}
	return &SimilarityScorer{weights: weights}
}

// Score computes the similarity between a query and one candidate listing.
func (s *SimilarityScorer) Score(query domain.ProductQuery, candidate domain.CandidateProduct) domain.ScoredCandidate {
	components := domain.ComponentScores{
		Name:      nameSimilarity(query.ProductName, candidate.Name),
		Type:      FieldSimilarity(query.Type, candidate.Type),
		Variation: FieldSimilarity(query.Variation, candidate.Variation),
		Vendor:    vendorSimilarity(query.Vendor, candidate.Vendor),
		Volume:    volumeScore(query.Volumes, candidate),
	}

	score := components.Name*s.weights.Name +
		components.Type*s.weights.Type +
		components.Variation*s.weights.Variation +
		components.Vendor*s.weights.Vendor +
		components.Volume*s.weights.Volume

	if exactFold(query.ProductName, candidate.Name) {
		score += exactNameBonus
	}
	if exactFold(query.Vendor, candidate.Vendor) {
		score += exactVendorBonus
	}
	if exactFold(query.Type, candidate.Type) {
		score += exactTypeBonus
	}
	if strongComponents(components) >= 2 {
		score += breadthBonus
	}

	score = math.Min(1.0, math.Max(0, score))

	return domain.ScoredCandidate{
		CandidateProduct: candidate,
		ComponentScores:  components,
		SimilarityScore:  score,
		MatchLevel:       domain.MatchLevelForScore(score),
		MatchedKeywords:  countMatchedKeywords(query.Keywords, candidate),
	}
}

// FieldSimilarity blends Jaro-Winkler, Levenshtein ratio and cosine token
// overlap (0.4/0.3/0.3), with a substring bonus, capped at 1. An empty
// input on either side falls back to a neutral floor rather than zero.
func FieldSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return emptyFieldFloor
	}
	return blendSimilarity(a, b)
}

// nameSimilarity is FieldSimilarity except that an empty search name scores
// zero, so an unnamed query cannot rank highly by accident.
func nameSimilarity(queryName, candidateName string) float64 {
	queryName = strings.ToLower(strings.TrimSpace(queryName))
	candidateName = strings.ToLower(strings.TrimSpace(candidateName))
	if queryName == "" {
		return 0
	}
	if candidateName == "" {
		return emptyFieldFloor
	}
	return blendSimilarity(queryName, candidateName)
}

// vendorSimilarity scores zero for an unresolved query vendor: when the
// dictionary could not identify the brand, ranking is driven by the other
// fields.
func vendorSimilarity(queryVendor, candidateVendor string) float64 {
	queryVendor = strings.ToLower(strings.TrimSpace(queryVendor))
	candidateVendor = strings.ToLower(strings.TrimSpace(candidateVendor))
	if queryVendor == "" {
		return 0
	}
	if candidateVendor == "" {
		return emptyFieldFloor
	}
	return blendSimilarity(queryVendor, candidateVendor)
}

func blendSimilarity(a, b string) float64 {
	jw := smetrics.JaroWinkler(a, b, jaroWinklerBoost, jaroWinklerPrefix)
	lev := editSimilarity(a, b)
	cos := cosineTokenOverlap(a, b)

	score := 0.4*jw + 0.3*lev + 0.3*cos
	if strings.Contains(a, b) || strings.Contains(b, a) {
		score += substringBonus
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// cosineTokenOverlap is the cosine of the word-frequency vectors of the two
// strings' tokens.
func cosineTokenOverlap(a, b string) float64 {
	freqA := tokenFrequencies(a)
	freqB := tokenFrequencies(b)
	if len(freqA) == 0 || len(freqB) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for token, countA := range freqA {
		normA += countA * countA
		if countB, ok := freqB[token]; ok {
			dot += countA * countB
		}
	}
	for _, countB := range freqB {
		normB += countB * countB
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tokenFrequencies(s string) map[string]float64 {
	fields := strings.Fields(s)
	freq := make(map[string]float64, len(fields))
	for _, f := range fields {
		freq[f]++
	}
	return freq
}

// volumeScore is binary when the query requested a volume (any requested
// volume present in the candidate scores 1), neutral when it did not.
func volumeScore(requested []string, candidate domain.CandidateProduct) float64 {
	if len(requested) == 0 {
		return neutralVolume
	}
	available := ExtractVolumes(candidate.Name + " " + candidate.Variation)
	for _, want := range requested {
		for _, have := range available {
			if want == have {
				return 1.0
			}
		}
	}
	return 0
}

func strongComponents(c domain.ComponentScores) int {
	count := 0
	for _, score := range []float64{c.Name, c.Type, c.Variation, c.Vendor} {
		if score >= breadthThreshold {
			count++
		}
	}
	return count
}

// exactFold reports a case- and space-insensitive exact match.
func exactFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	normalize := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), " ", "")
	}
	return normalize(a) == normalize(b)
}

// levenshteinDistance calculates the edit distance between two strings,
// two rows at a time.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len([]rune(s2))
	}
	if len(s2) == 0 {
		return len([]rune(s1))
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func countMatchedKeywords(keywords []string, candidate domain.CandidateProduct) int {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(candidate.Name + " " + candidate.Variation)
	count := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			count++
		}
	}
	return count
}
