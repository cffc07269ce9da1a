package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pricescope/backend/internal/domain"
)

// CatalogStore resolves internal SKU/EAN identifiers to canonical product
// attributes. Read-only: the catalog is owned by the surrounding
// application.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a catalog store over an open connection pool.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// GetBySKU looks a product up by SKU or EAN.
func (s *CatalogStore) GetBySKU(ctx context.Context, sku string) (*domain.CatalogProduct, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT sku, ean, title, vendor, price, in_stock
		 FROM catalog_products
		 WHERE sku = $1 OR ean = $1
		 LIMIT 1`, sku)

	var product domain.CatalogProduct
	var ean sql.NullString
	var price sql.NullFloat64
	err := row.Scan(&product.SKU, &ean, &product.Title, &product.Vendor, &price, &product.InStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	product.EAN = ean.String
	product.Price = price.Float64
	return &product, nil
}
