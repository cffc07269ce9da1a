package domain

import (
	"strconv"
	"time"
)

// ProductQuery holds everything extracted from a raw search title.
// It is built once per search invocation and treated as immutable afterwards.
type ProductQuery struct {
	RawTitle        string   `json:"rawTitle"`
	ReferencePrice  float64  `json:"referencePrice"`
	NormalizedTitle string   `json:"normalizedTitle"`
	Vendor          string   `json:"vendor"`
	ProductName     string   `json:"productName"`
	Type            string   `json:"type"`
	Variation       string   `json:"variation"`
	Color           string   `json:"color,omitempty"`
	Finish          string   `json:"finish,omitempty"`
	Volumes         []string `json:"volumes"`
	Capacities      []string `json:"capacities"`
	Keywords        []string `json:"keywords"`
	SiteFilter      []int    `json:"siteFilter,omitempty"`
}

// CandidateProduct is a scraped competitor listing. The listing store owns
// these rows; the engine only ever reads them.
type CandidateProduct struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Vendor       string    `json:"vendor"`
	Type         string    `json:"type"`
	Variation    string    `json:"variation"`
	Price        float64   `json:"price"`
	CurrencyUnit string    `json:"currencyUnit"`
	URL          string    `json:"url"`
	ImageURL     string    `json:"imageUrl"`
	SiteID       int       `json:"siteId"`
	SiteName     string    `json:"siteName"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DedupeKey identifies a candidate across retrieval strategies.
func (c CandidateProduct) DedupeKey() string {
	if c.ID != 0 {
		return "id:" + strconv.FormatInt(c.ID, 10)
	}
	return "url:" + c.URL
}

// ComponentScores are the per-field similarity scores feeding the weighted
// composite score.
type ComponentScores struct {
	Name      float64 `json:"name"`
	Type      float64 `json:"type"`
	Variation float64 `json:"variation"`
	Vendor    float64 `json:"vendor"`
	Volume    float64 `json:"volume"`
}

// MatchLevel is the qualitative confidence bucket derived from the
// similarity score.
type MatchLevel string

const (
	MatchExcellent MatchLevel = "excellent"
	MatchVeryGood  MatchLevel = "very_good"
	MatchGood      MatchLevel = "good"
	MatchMedium    MatchLevel = "medium"
	MatchWeak      MatchLevel = "weak"
)

// MatchLevelForScore maps a similarity score to its level band.
func MatchLevelForScore(score float64) MatchLevel {
	switch {
	case score >= 0.9:
		return MatchExcellent
	case score >= 0.8:
		return MatchVeryGood
	case score >= 0.7:
		return MatchGood
	case score >= 0.6:
		return MatchMedium
	default:
		return MatchWeak
	}
}

// PriceStatus classifies a candidate price relative to the reference price.
type PriceStatus string

const (
	PriceMuchCheaper    PriceStatus = "much_cheaper"
	PriceCheaper        PriceStatus = "cheaper"
	PriceSame           PriceStatus = "same"
	PriceSlightlyHigher PriceStatus = "slightly_higher"
	PriceMuchHigher     PriceStatus = "much_higher"
	PriceUnknown        PriceStatus = "unknown"
)

// ScoredCandidate is a candidate listing with its similarity scores and
// price classification attached. These are produced per response and never
// persisted.
type ScoredCandidate struct {
	CandidateProduct
	ComponentScores        ComponentScores `json:"componentScores"`
	SimilarityScore        float64         `json:"similarityScore"`
	MatchLevel             MatchLevel      `json:"matchLevel"`
	MatchedKeywords        int             `json:"matchedKeywords"`
	PriceDifference        float64         `json:"priceDifference"`
	PriceDifferencePercent float64         `json:"priceDifferencePercent"`
	PriceStatus            PriceStatus     `json:"priceStatus"`
}

// SearchResult is the engine's terminal output: ranked candidates plus an
// error marker that is empty on success. Failures are reported through the
// marker, not as transport errors, so callers always get a well-formed list.
type SearchResult struct {
	Query      ProductQuery      `json:"query"`
	Candidates []ScoredCandidate `json:"candidates"`
	Error      string            `json:"error,omitempty"`
	CachedAt   time.Time         `json:"cachedAt,omitempty"`
}

// CatalogProduct is the canonical "our side" of a comparison, resolved from
// the internal product catalog by SKU or EAN.
type CatalogProduct struct {
	SKU     string  `json:"sku"`
	EAN     string  `json:"ean,omitempty"`
	Title   string  `json:"title"`
	Vendor  string  `json:"vendor"`
	Price   float64 `json:"price"`
	InStock bool    `json:"inStock"`
}
