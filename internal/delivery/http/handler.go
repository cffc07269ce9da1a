package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricescope/backend/internal/domain"
	"github.com/pricescope/backend/internal/usecase"
)

const maxBatchItems = 50

// Searcher is the slice of the search service the handlers consume.
type Searcher interface {
	Search(ctx context.Context, title string, referencePrice float64, siteFilter []int) (*domain.SearchResult, error)
	SearchBySKU(ctx context.Context, sku string, siteFilter []int) (*domain.SearchResult, error)
	SearchBatch(ctx context.Context, requests []usecase.CompareRequest) []domain.SearchResult
	Vendors(ctx context.Context) ([]string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher Searcher
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricescope-backend",
		"version": "1.0.0",
	})
}

// CompareSearch handles a single comparison request: a raw title (or an
// internal SKU) plus an optional reference price.
func (h *Handler) CompareSearch(c *gin.Context) {
	var req usecase.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Title == "" && req.SKU == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title or sku is required"})
		return
	}

	var result *domain.SearchResult
	var err error
	if req.SKU != "" {
		result, err = h.searcher.SearchBySKU(c.Request.Context(), req.SKU, req.SiteFilter)
	} else {
		result, err = h.searcher.Search(c.Request.Context(), req.Title, req.ReferencePrice, req.SiteFilter)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProductNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, domain.ErrInvalidQuery) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompareBatch handles a list of comparison requests, fanned out with
// bounded concurrency. Per-item failures stay inside each result's error
// marker, so the batch itself always succeeds.
func (h *Handler) CompareBatch(c *gin.Context) {
	var req struct {
		Items []usecase.CompareRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items is required"})
		return
	}
	if len(req.Items) > maxBatchItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many items"})
		return
	}

	results := h.searcher.SearchBatch(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Vendors returns the cached vendor dictionary snapshot (diagnostic).
func (h *Handler) Vendors(c *gin.Context) {
	vendors, err := h.searcher.Vendors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors, "count": len(vendors)})
}
