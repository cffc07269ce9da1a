package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pricescope/backend/internal/domain"
)

// Retrieval bounds. Each strategy is row-capped and the accumulated set is
// capped as a whole so downstream scoring stays O(candidates x 5 fields).
const (
	perStrategyLimit    = 100
	maxTotalCandidates  = 150
	fullTextTrigger     = 10 // run full-text when fewer accumulated
	fallbackTrigger     = 5  // run vendor-only / feature fallbacks when fewer
	maxFullTextKeywords = 5
)

// CandidateRetriever runs ordered retrieval strategies against the listing
// store, merging and de-duplicating hits. Every strategy is independently
// fail-soft: a failing strategy contributes zero candidates and the
// pipeline proceeds.
type CandidateRetriever struct {
	listings        domain.ListingRepository
	logger          zerolog.Logger
	excludeStandard bool
}

// NewCandidateRetriever creates a retriever over the given listing store.
func NewCandidateRetriever(listings domain.ListingRepository, excludeStandard bool, logger zerolog.Logger) *CandidateRetriever {
	return &CandidateRetriever{listings: listings, logger: logger, excludeStandard: excludeStandard}
}

// Retrieve accumulates de-duplicated candidates strategy by strategy,
// stopping early once enough are gathered. It returns
// domain.ErrAllStrategiesFailed only when every attempted strategy errored
// and nothing was retrieved.
func (r *CandidateRetriever) Retrieve(ctx context.Context, query domain.ProductQuery, vendorVariants []string) ([]domain.CandidateProduct, error) {
	filter := domain.ListingFilter{
		SiteIDs:                  query.SiteFilter,
		ExcludeStandardVariation: r.excludeStandard,
	}

	seen := make(map[string]bool)
	candidates := make([]domain.CandidateProduct, 0, perStrategyLimit)
	attempted, failed := 0, 0

	merge := func(strategy string, rows []domain.CandidateProduct, err error) {
		attempted++
		if err != nil {
			failed++
			r.logger.Warn().Err(err).Str("strategy", strategy).Msg("retrieval strategy failed")
			return
		}
		for _, row := range rows {
			if len(candidates) >= maxTotalCandidates {
				return
			}
			key := row.DedupeKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, row)
		}
	}

	// 1. Vendor variants AND keywords against name/variation, cheapest first.
	if len(vendorVariants) > 0 && len(query.Keywords) > 0 {
		rows, err := r.listings.SearchByVendorAndKeywords(ctx, vendorVariants, query.Keywords, filter, perStrategyLimit)
		merge("vendor+keywords", rows, err)
	}

	// 2. Boolean full-text over the significant keywords.
	if len(candidates) < fullTextTrigger && len(query.Keywords) > 0 {
		booleanQuery := BuildBooleanQuery(query.Keywords)
		rows, err := r.listings.SearchFullText(ctx, booleanQuery, filter, perStrategyLimit)
		merge("fulltext", rows, err)
	}

	// 3. Vendor variants alone.
	if len(candidates) < fallbackTrigger && len(vendorVariants) > 0 {
		rows, err := r.listings.SearchByVendors(ctx, vendorVariants, filter, perStrategyLimit)
		merge("vendor-only", rows, err)
	}

	// 4. Extracted feature vocabulary (type / color / finish).
	if len(candidates) < fallbackTrigger && (query.Type != "" || query.Color != "" || query.Finish != "") {
		rows, err := r.listings.SearchByFeatures(ctx, query.Type, query.Color, query.Finish, filter, perStrategyLimit)
		merge("features", rows, err)
	}

	if attempted > 0 && failed == attempted && len(candidates) == 0 {
		return []domain.CandidateProduct{}, domain.ErrAllStrategiesFailed
	}
	return candidates, nil
}

// BuildBooleanQuery builds a required-term prefix query from at most five
// significant keywords: "+coco* +mademoiselle*". The listing store
// translates the operators into its own full-text syntax.
func BuildBooleanQuery(keywords []string) string {
	terms := make([]string, 0, maxFullTextKeywords)
	for _, kw := range keywords {
		if len(terms) == maxFullTextKeywords {
			break
		}
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		terms = append(terms, "+"+kw+"*")
	}
	return strings.Join(terms, " ")
}
