package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/pricescope/backend/internal/domain"
)

// fakeDictionary is an in-memory VendorDictionaryProvider with a call
// counter.
type fakeDictionary struct {
	mu      sync.Mutex
	vendors []string
	calls   int
}

func (f *fakeDictionary) DistinctVendors(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.vendors, nil
}

// fakeListings is an in-memory ListingRepository. Each strategy counts its
// calls so tests can verify caching and fallback order, and failAll makes
// every strategy error for fail-soft tests.
type fakeListings struct {
	mu sync.Mutex

	byVendorAndKeywords []domain.CandidateProduct
	byFullText          []domain.CandidateProduct
	byVendors           []domain.CandidateProduct
	byFeatures          []domain.CandidateProduct
	failAll             bool

	vendorKeywordCalls int
	fullTextCalls      int
	vendorOnlyCalls    int
	featureCalls       int
}

func (f *fakeListings) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vendorKeywordCalls + f.fullTextCalls + f.vendorOnlyCalls + f.featureCalls
}

func (f *fakeListings) SearchByVendorAndKeywords(ctx context.Context, vendorVariants, keywords []string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vendorKeywordCalls++
	if f.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	return capRows(f.byVendorAndKeywords, limit), nil
}

func (f *fakeListings) SearchFullText(ctx context.Context, booleanQuery string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullTextCalls++
	if f.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	return capRows(f.byFullText, limit), nil
}

func (f *fakeListings) SearchByVendors(ctx context.Context, vendorVariants []string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vendorOnlyCalls++
	if f.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	return capRows(f.byVendors, limit), nil
}

func (f *fakeListings) SearchByFeatures(ctx context.Context, productType, color, finish string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.featureCalls++
	if f.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	return capRows(f.byFeatures, limit), nil
}

func capRows(rows []domain.CandidateProduct, limit int) []domain.CandidateProduct {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]domain.CandidateProduct, len(rows))
	copy(out, rows)
	return out
}

// fakeCatalog resolves a fixed SKU.
type fakeCatalog struct {
	products map[string]*domain.CatalogProduct
}

func (f *fakeCatalog) GetBySKU(ctx context.Context, sku string) (*domain.CatalogProduct, error) {
	if p, ok := f.products[strings.TrimSpace(sku)]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}
