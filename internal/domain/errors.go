package domain

import "errors"

var (
	// ErrInvalidQuery is returned when search parameters are invalid
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrProductNotFound is returned when a SKU/EAN is absent from the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrCacheMiss is returned when a key is absent or expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrStoreUnavailable is returned when the listing store cannot be queried
	ErrStoreUnavailable = errors.New("listing store unavailable")

	// ErrAllStrategiesFailed is returned when every retrieval strategy errored
	ErrAllStrategiesFailed = errors.New("all retrieval strategies failed")

	// ErrRateLimited is returned when a client exceeds the per-IP rate limit
	ErrRateLimited = errors.New("rate limit exceeded")
)
