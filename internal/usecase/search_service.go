package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pricescope/backend/internal/domain"
)

// SearchConfig holds the tunables of the matching pipeline.
type SearchConfig struct {
	CacheTTL                 time.Duration
	VendorDictionaryTTL      time.Duration
	Weights                  ScoreWeights
	FilterPolicy             FilterPolicy
	Threshold                float64
	ExcludeStandardVariation bool
	BatchConcurrency         int
}

// CompareRequest is one title to compare, as accepted by the search and
// batch endpoints. SKU, when set, is resolved through the catalog store
// and overrides Title and ReferencePrice.
type CompareRequest struct {
	Title          string  `json:"title"`
	SKU            string  `json:"sku,omitempty"`
	ReferencePrice float64 `json:"referencePrice,omitempty"`
	SiteFilter     []int   `json:"siteFilter,omitempty"`
}

// SearchService glues the pipeline together: normalize, extract, resolve
// the vendor, retrieve candidates, score, filter and classify prices, with
// the whole output memoized per normalized query.
type SearchService struct {
	normalizer *TextNormalizer
	extractor  *ComponentExtractor
	keywords   *KeywordExtractor
	vendors    *VendorResolver
	retriever  *CandidateRetriever
	scorer     *SimilarityScorer
	filter     *ResultFilter
	prices     *PriceComparator
	catalog    domain.CatalogRepository
	cache      domain.CacheRepository
	logger     zerolog.Logger

	cacheTTL         time.Duration
	filterPolicy     FilterPolicy
	threshold        float64
	excludeStandard  bool
	batchConcurrency int
}

// NewSearchService wires the pipeline stages over the injected stores.
// catalog may be nil when SKU resolution is not needed.
func NewSearchService(
	listings domain.ListingRepository,
	dictionary domain.VendorDictionaryProvider,
	catalog domain.CatalogRepository,
	cache domain.CacheRepository,
	logger zerolog.Logger,
	cfg SearchConfig,
) *SearchService {
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &SearchService{
		normalizer:       NewTextNormalizer(),
		extractor:        NewComponentExtractor(),
		keywords:         NewKeywordExtractor(),
		vendors:          NewVendorResolver(dictionary, cache, cfg.VendorDictionaryTTL, logger),
		retriever:        NewCandidateRetriever(listings, cfg.ExcludeStandardVariation, logger),
		scorer:           NewSimilarityScorer(cfg.Weights),
		filter:           NewResultFilter(cfg.FilterPolicy, cfg.Threshold),
		prices:           NewPriceComparator(),
		catalog:          catalog,
		cache:            cache,
		logger:           logger,
		cacheTTL:         cacheTTL,
		filterPolicy:     cfg.FilterPolicy,
		threshold:        cfg.Threshold,
		excludeStandard:  cfg.ExcludeStandardVariation,
		batchConcurrency: concurrency,
	}
}

// Search runs the full pipeline for one title. It always returns a
// well-formed result: retrieval failures surface through the result's
// Error marker, never as a transport error.
func (s *SearchService) Search(ctx context.Context, title string, referencePrice float64, siteFilter []int) (*domain.SearchResult, error) {
	normalized := s.normalizer.Normalize(title)
	if normalized == "" {
		return &domain.SearchResult{Candidates: []domain.ScoredCandidate{}}, nil
	}

	query := s.buildQuery(ctx, title, normalized, referencePrice, siteFilter)

	cacheKey := s.cacheKey(query)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if result, ok := cached.(*domain.SearchResult); ok {
			return result, nil
		}
	}

	result := s.execute(ctx, query)
	if result.Error == "" {
		result.CachedAt = time.Now()
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("search cache write failed")
		}
	}
	return result, nil
}

// SearchBySKU resolves an internal SKU/EAN to its canonical title and
// price, then compares it.
func (s *SearchService) SearchBySKU(ctx context.Context, sku string, siteFilter []int) (*domain.SearchResult, error) {
	if s.catalog == nil {
		return nil, domain.ErrInvalidQuery
	}
	product, err := s.catalog.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, product.Title, product.Price, siteFilter)
}

// SearchBatch compares many titles with bounded concurrency. Results come
// back in input order; per-title failures stay inside their result's Error
// marker.
func (s *SearchService) SearchBatch(ctx context.Context, requests []CompareRequest) []domain.SearchResult {
	results := make([]domain.SearchResult, len(requests))
	semaphore := make(chan struct{}, s.batchConcurrency)

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req CompareRequest) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			var result *domain.SearchResult
			var err error
			if req.SKU != "" {
				result, err = s.SearchBySKU(ctx, req.SKU, req.SiteFilter)
			} else {
				result, err = s.Search(ctx, req.Title, req.ReferencePrice, req.SiteFilter)
			}
			if err != nil {
				results[i] = domain.SearchResult{
					Candidates: []domain.ScoredCandidate{},
					Error:      err.Error(),
				}
				return
			}
			results[i] = *result
		}(i, req)
	}
	wg.Wait()
	return results
}

// Vendors exposes the cached dictionary snapshot for diagnostics.
func (s *SearchService) Vendors(ctx context.Context) ([]string, error) {
	vendors, err := s.vendors.Dictionary(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]string, len(vendors))
	copy(sorted, vendors)
	sort.Strings(sorted)
	return sorted, nil
}

// buildQuery runs the extraction stages and assembles the immutable
// ProductQuery.
func (s *SearchService) buildQuery(ctx context.Context, rawTitle, normalized string, referencePrice float64, siteFilter []int) domain.ProductQuery {
	components := s.extractor.Extract(normalized)
	vendor := s.vendors.Resolve(ctx, components.Vendor)
	keywords := s.keywords.Extract(normalized, vendor)

	return domain.ProductQuery{
		RawTitle:        rawTitle,
		ReferencePrice:  referencePrice,
		NormalizedTitle: normalized,
		Vendor:          vendor,
		ProductName:     components.ProductName,
		Type:            components.Type,
		Variation:       components.Variation,
		Color:           components.Color,
		Finish:          components.Finish,
		Volumes:         components.Volumes,
		Capacities:      components.Capacities,
		Keywords:        keywords,
		SiteFilter:      siteFilter,
	}
}

// execute runs retrieval, scoring, filtering and price classification.
func (s *SearchService) execute(ctx context.Context, query domain.ProductQuery) *domain.SearchResult {
	var variants []string
	if query.Vendor != "" {
		variants = s.vendors.Variants(ctx, query.Vendor)
	}

	candidates, err := s.retriever.Retrieve(ctx, query, variants)
	if err != nil {
		s.logger.Error().Err(err).Str("title", query.NormalizedTitle).Msg("candidate retrieval unavailable")
		return &domain.SearchResult{
			Query:      query,
			Candidates: []domain.ScoredCandidate{},
			Error:      "candidate retrieval unavailable",
		}
	}

	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, s.scorer.Score(query, candidate))
	}

	ranked := s.filter.Apply(query, scored)
	for i := range ranked {
		s.prices.Classify(query.ReferencePrice, &ranked[i])
	}

	s.logger.Debug().
		Str("title", query.NormalizedTitle).
		Str("vendor", query.Vendor).
		Int("retrieved", len(candidates)).
		Int("ranked", len(ranked)).
		Msg("search pipeline complete")

	return &domain.SearchResult{Query: query, Candidates: ranked}
}

// cacheKey hashes the normalized query, reference price and active filters
// so distinct filter settings never collide.
func (s *SearchService) cacheKey(query domain.ProductQuery) string {
	var b strings.Builder
	b.WriteString(query.NormalizedTitle)
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(query.ReferencePrice, 'f', 2, 64))
	b.WriteByte('|')
	b.WriteString(string(s.filterPolicy))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(s.threshold, 'f', 2, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(s.excludeStandard))
	for _, site := range query.SiteFilter {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(site))
	}

	sum := sha1.Sum([]byte(b.String()))
	return fmt.Sprintf("search:%s", hex.EncodeToString(sum[:]))
}
