package usecase

import (
	"context"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pricescope/backend/internal/domain"
	"github.com/pricescope/backend/internal/infrastructure/cache"
)

func newTestService(listings *fakeListings, dict *fakeDictionary, catalog domain.CatalogRepository, cfg SearchConfig) *SearchService {
	return NewSearchService(listings, dict, catalog, cache.NewMemoryCache(), zerolog.Nop(), cfg)
}

func TestSearchRanksAndClassifiesPrices(t *testing.T) {
	listings := &fakeListings{
		byVendorAndKeywords: []domain.CandidateProduct{
			{ID: 1, Name: "Coco Mademoiselle Eau de Parfum 50ml", Vendor: "Chanel", Type: "eau de parfum", Price: 100},
			{ID: 2, Name: "Hydrating Day Cream", Vendor: "Chanel", Type: "cream", Price: 50},
		},
	}
	dict := &fakeDictionary{vendors: []string{"Chanel", "Dior"}}
	svc := newTestService(listings, dict, nil, SearchConfig{})

	result, err := svc.Search(context.Background(), "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", 120, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("result.Error = %q, want empty", result.Error)
	}
	if result.Query.Vendor != "Chanel" {
		t.Errorf("resolved vendor = %q, want Chanel", result.Query.Vendor)
	}

	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (the unrelated cream must not clear the threshold)", len(result.Candidates))
	}
	top := result.Candidates[0]
	if top.ID != 1 {
		t.Errorf("top candidate ID = %d, want 1", top.ID)
	}
	if top.SimilarityScore < 0.9 {
		t.Errorf("top score = %v, want >= 0.9", top.SimilarityScore)
	}
	if top.MatchLevel != domain.MatchExcellent {
		t.Errorf("top MatchLevel = %v, want excellent", top.MatchLevel)
	}
	if top.PriceStatus != domain.PriceMuchCheaper {
		t.Errorf("PriceStatus = %v, want much_cheaper (100 < 0.9*120)", top.PriceStatus)
	}
}

func TestSearchUnknownVendorDegrades(t *testing.T) {
	listings := &fakeListings{
		byFullText: []domain.CandidateProduct{
			{ID: 5, Name: "Mystic Rose", Vendor: "Zorblat Cosmetics", Price: 30},
		},
	}
	dict := &fakeDictionary{vendors: []string{"Chanel", "Dior"}}
	svc := newTestService(listings, dict, nil, SearchConfig{Threshold: 0.5})

	result, err := svc.Search(context.Background(), "Zorblat - Mystic Rose", 30, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Query.Vendor != "" {
		t.Errorf("vendor = %q, want empty for unknown brand", result.Query.Vendor)
	}
	if listings.vendorKeywordCalls != 0 {
		t.Errorf("vendor strategy ran without a resolved vendor")
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(result.Candidates))
	}
	if result.Candidates[0].ComponentScores.Vendor != 0 {
		t.Errorf("vendor component = %v, want 0", result.Candidates[0].ComponentScores.Vendor)
	}
}

func TestSearchMemoizesResults(t *testing.T) {
	listings := &fakeListings{
		byVendorAndKeywords: []domain.CandidateProduct{
			{ID: 1, Name: "Coco Mademoiselle Eau de Parfum 50ml", Vendor: "Chanel", Type: "eau de parfum", Price: 100},
		},
	}
	dict := &fakeDictionary{vendors: []string{"Chanel"}}
	svc := newTestService(listings, dict, nil, SearchConfig{})
	ctx := context.Background()

	first, err := svc.Search(ctx, "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", 120, nil)
	if err != nil {
		t.Fatalf("first Search() error = %v", err)
	}
	calls := listings.totalCalls()

	second, err := svc.Search(ctx, "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", 120, nil)
	if err != nil {
		t.Fatalf("second Search() error = %v", err)
	}

	if listings.totalCalls() != calls {
		t.Errorf("store queried again on cache hit: %d -> %d calls", calls, listings.totalCalls())
	}
	if !second.CachedAt.Equal(first.CachedAt) {
		t.Errorf("second result not served from cache")
	}
}

func TestSearchCacheKeyedByReferencePrice(t *testing.T) {
	listings := &fakeListings{
		byVendorAndKeywords: []domain.CandidateProduct{
			{ID: 1, Name: "Coco Mademoiselle Eau de Parfum 50ml", Vendor: "Chanel", Type: "eau de parfum", Price: 100},
		},
	}
	dict := &fakeDictionary{vendors: []string{"Chanel"}}
	svc := newTestService(listings, dict, nil, SearchConfig{})
	ctx := context.Background()

	a, _ := svc.Search(ctx, "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", 120, nil)
	b, _ := svc.Search(ctx, "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", 90, nil)

	if a.Candidates[0].PriceStatus == b.Candidates[0].PriceStatus {
		t.Errorf("distinct reference prices served identical classifications: %v", a.Candidates[0].PriceStatus)
	}
}

func TestSearchEmptyTitle(t *testing.T) {
	svc := newTestService(&fakeListings{}, &fakeDictionary{}, nil, SearchConfig{})

	result, err := svc.Search(context.Background(), "   ", 0, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("got %d candidates for empty title, want 0", len(result.Candidates))
	}
	if result.Error != "" {
		t.Errorf("result.Error = %q, want empty", result.Error)
	}
}

func TestSearchSurvivesStoreOutage(t *testing.T) {
	listings := &fakeListings{failAll: true}
	dict := &fakeDictionary{vendors: []string{"Chanel"}}
	svc := newTestService(listings, dict, nil, SearchConfig{})

	result, err := svc.Search(context.Background(), "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", 120, nil)
	if err != nil {
		t.Fatalf("Search() error = %v, outages must stay inside the result", err)
	}
	if result.Error != "candidate retrieval unavailable" {
		t.Errorf("result.Error = %q, want retrieval marker", result.Error)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(result.Candidates))
	}
}

func TestSearchBySKU(t *testing.T) {
	listings := &fakeListings{
		byVendorAndKeywords: []domain.CandidateProduct{
			{ID: 1, Name: "Coco Mademoiselle Eau de Parfum 50ml", Vendor: "Chanel", Type: "eau de parfum", Price: 100},
		},
	}
	dict := &fakeDictionary{vendors: []string{"Chanel"}}
	catalog := &fakeCatalog{products: map[string]*domain.CatalogProduct{
		"SKU-100": {SKU: "SKU-100", Title: "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", Price: 120},
	}}
	svc := newTestService(listings, dict, catalog, SearchConfig{})
	ctx := context.Background()

	result, err := svc.SearchBySKU(ctx, "SKU-100", nil)
	if err != nil {
		t.Fatalf("SearchBySKU() error = %v", err)
	}
	if result.Query.ReferencePrice != 120 {
		t.Errorf("reference price = %v, want catalog price 120", result.Query.ReferencePrice)
	}

	if _, err := svc.SearchBySKU(ctx, "NOPE", nil); err != domain.ErrProductNotFound {
		t.Errorf("unknown SKU error = %v, want ErrProductNotFound", err)
	}
}

func TestSearchBySKUWithoutCatalog(t *testing.T) {
	svc := newTestService(&fakeListings{}, &fakeDictionary{}, nil, SearchConfig{})

	if _, err := svc.SearchBySKU(context.Background(), "SKU-100", nil); err != domain.ErrInvalidQuery {
		t.Errorf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestSearchBatchPreservesOrder(t *testing.T) {
	listings := &fakeListings{
		byVendorAndKeywords: []domain.CandidateProduct{
			{ID: 1, Name: "Coco Mademoiselle Eau de Parfum 50ml", Vendor: "Chanel", Type: "eau de parfum", Price: 100},
		},
	}
	dict := &fakeDictionary{vendors: []string{"Chanel"}}
	catalog := &fakeCatalog{products: map[string]*domain.CatalogProduct{
		"SKU-100": {SKU: "SKU-100", Title: "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", Price: 120},
	}}
	svc := newTestService(listings, dict, catalog, SearchConfig{BatchConcurrency: 2})

	requests := []CompareRequest{
		{Title: "Chanel - Coco Mademoiselle - Eau de Parfum 50ml", ReferencePrice: 120},
		{SKU: "SKU-100"},
		{SKU: "MISSING"},
		{Title: ""},
	}

	results := svc.SearchBatch(context.Background(), requests)

	if len(results) != len(requests) {
		t.Fatalf("got %d results, want %d", len(results), len(requests))
	}
	if results[0].Query.RawTitle != requests[0].Title {
		t.Errorf("results out of order: first title = %q", results[0].Query.RawTitle)
	}
	if len(results[1].Candidates) != 1 {
		t.Errorf("SKU request returned %d candidates, want 1", len(results[1].Candidates))
	}
	if results[2].Error == "" {
		t.Errorf("missing SKU should carry an error marker")
	}
	if len(results[3].Candidates) != 0 || results[3].Error != "" {
		t.Errorf("empty title should yield an empty clean result, got %+v", results[3])
	}
}

func TestVendorsSnapshotIsSorted(t *testing.T) {
	dict := &fakeDictionary{vendors: []string{"Dior", "Chanel", "Armani"}}
	svc := newTestService(&fakeListings{}, dict, nil, SearchConfig{})

	vendors, err := svc.Vendors(context.Background())
	if err != nil {
		t.Fatalf("Vendors() error = %v", err)
	}
	if !sort.StringsAreSorted(vendors) {
		t.Errorf("Vendors() = %v, want sorted", vendors)
	}
	if len(vendors) != 3 {
		t.Errorf("got %d vendors, want 3", len(vendors))
	}
}
