package domain

import (
	"context"
	"time"
)

// ListingFilter narrows listing-store queries. ExcludeStandardVariation
// drops rows whose variation is the generic "Standard" placeholder (or
// empty), preferring concrete variants; call sites opt in explicitly.
type ListingFilter struct {
	SiteIDs                  []int
	ExcludeStandardVariation bool
}

// ListingRepository is the read-only competitor listing store. Every query
// is row-capped by the caller so per-search cost stays bounded.
type ListingRepository interface {
	// SearchByVendorAndKeywords matches any vendor variant AND any keyword
	// against the name/variation fields, cheapest rows first.
	SearchByVendorAndKeywords(ctx context.Context, vendorVariants, keywords []string, filter ListingFilter, limit int) ([]CandidateProduct, error)

	// SearchFullText runs a boolean full-text query ("+term1* +term2*")
	// over the name, vendor, type and variation fields.
	SearchFullText(ctx context.Context, booleanQuery string, filter ListingFilter, limit int) ([]CandidateProduct, error)

	// SearchByVendors matches any vendor variant only.
	SearchByVendors(ctx context.Context, vendorVariants []string, filter ListingFilter, limit int) ([]CandidateProduct, error)

	// SearchByFeatures matches extracted feature vocabulary (type, color,
	// finish) against the type/variation fields.
	SearchByFeatures(ctx context.Context, productType, color, finish string, filter ListingFilter, limit int) ([]CandidateProduct, error)
}

// VendorDictionaryProvider supplies the distinct vendor names seen in the
// listing store. The resolver caches the snapshot on a 24-hour horizon.
type VendorDictionaryProvider interface {
	DistinctVendors(ctx context.Context) ([]string, error)
}

// CatalogRepository resolves internal SKU/EAN identifiers to canonical
// product attributes.
type CatalogRepository interface {
	GetBySKU(ctx context.Context, sku string) (*CatalogProduct, error)
}

// CacheRepository defines the interface for caching operations. Remember
// returns the cached value when present and unexpired, otherwise computes,
// stores and returns it. Concurrent identical computations are tolerated;
// last writer wins.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Remember(ctx context.Context, key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, error)
}
