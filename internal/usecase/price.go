package usecase

import (
	"math"

	"github.com/pricescope/backend/internal/domain"
)

// Price bucket boundaries relative to the reference price.
const (
	muchCheaperRatio = 0.9
	muchHigherRatio  = 1.1
	priceEpsilon     = 1e-9
)

// PriceComparator classifies candidate prices relative to a reference
// price. Classification is a pure function of the two prices and is
// monotonic in the candidate price for a fixed reference.
type PriceComparator struct{}

// NewPriceComparator creates a price comparator.
func NewPriceComparator() *PriceComparator {
	return &PriceComparator{}
}

// Classify attaches price difference, percent difference and status to a
// scored candidate. A missing or unparsable price on either side classifies
// as unknown: the candidate stays in the results but is flagged
// non-comparable.
func (p *PriceComparator) Classify(referencePrice float64, candidate *domain.ScoredCandidate) {
	if referencePrice <= 0 || candidate.Price <= 0 {
		candidate.PriceStatus = domain.PriceUnknown
		return
	}

	diff := referencePrice - candidate.Price
	candidate.PriceDifference = diff
	candidate.PriceDifferencePercent = diff / referencePrice * 100
	candidate.PriceStatus = priceStatus(referencePrice, candidate.Price)
}

func priceStatus(reference, price float64) domain.PriceStatus {
	switch {
	case price < reference*muchCheaperRatio:
		return domain.PriceMuchCheaper
	case math.Abs(price-reference) <= priceEpsilon:
		return domain.PriceSame
	case price < reference:
		return domain.PriceCheaper
	case price <= reference*muchHigherRatio:
		return domain.PriceSlightlyHigher
	default:
		return domain.PriceMuchHigher
	}
}
