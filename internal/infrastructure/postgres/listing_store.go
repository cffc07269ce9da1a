package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/pricescope/backend/internal/domain"
)

// Open connects to Postgres and verifies the connection.
func Open(databaseURL string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const listingColumns = `id, name, vendor, type, variation, price, price_raw, currency_unit, url, image_url, site_id, site_name, updated_at`

// ListingStore is the Postgres-backed competitor listing store. It also
// provides the distinct-vendor dictionary.
type ListingStore struct {
	db *sql.DB
}

// NewListingStore creates a store over an open connection pool.
func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

// SearchByVendorAndKeywords matches any vendor variant AND any keyword
// against the name/variation fields, cheapest rows first.
func (s *ListingStore) SearchByVendorAndKeywords(ctx context.Context, vendorVariants, keywords []string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	patterns := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, "%"+kw+"%")
	}

	query := `SELECT ` + listingColumns + `
		FROM competitor_listings
		WHERE lower(vendor) = ANY($1)
		  AND (name ILIKE ANY($2) OR variation ILIKE ANY($2))`
	args := []interface{}{pq.Array(lowered(vendorVariants)), pq.Array(patterns)}
	query, args = applyFilter(query, args, filter)
	query += fmt.Sprintf(" ORDER BY price ASC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

// SearchFullText runs a boolean query ("+term1* +term2*") over the name,
// vendor, type and variation fields via to_tsquery. Every term is required
// and prefix-matched.
func (s *ListingStore) SearchFullText(ctx context.Context, booleanQuery string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	tsQuery := translateBooleanQuery(booleanQuery)
	if tsQuery == "" {
		return []domain.CandidateProduct{}, nil
	}

	query := `SELECT ` + listingColumns + `
		FROM competitor_listings
		WHERE to_tsvector('simple',
			coalesce(name, '') || ' ' || coalesce(vendor, '') || ' ' ||
			coalesce(type, '') || ' ' || coalesce(variation, ''))
			@@ to_tsquery('simple', $1)`
	args := []interface{}{tsQuery}
	query, args = applyFilter(query, args, filter)
	query += fmt.Sprintf(" ORDER BY price ASC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

// SearchByVendors matches any vendor variant only.
func (s *ListingStore) SearchByVendors(ctx context.Context, vendorVariants []string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	query := `SELECT ` + listingColumns + `
		FROM competitor_listings
		WHERE lower(vendor) = ANY($1)`
	args := []interface{}{pq.Array(lowered(vendorVariants))}
	query, args = applyFilter(query, args, filter)
	query += fmt.Sprintf(" ORDER BY price ASC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

// SearchByFeatures matches extracted feature vocabulary against the
// type/variation fields.
func (s *ListingStore) SearchByFeatures(ctx context.Context, productType, color, finish string, filter domain.ListingFilter, limit int) ([]domain.CandidateProduct, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	for _, feature := range []string{productType, color, finish} {
		if feature == "" {
			continue
		}
		args = append(args, "%"+feature+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf("(type ILIKE %s OR variation ILIKE %s)", placeholder, placeholder))
	}
	if len(conditions) == 0 {
		return []domain.CandidateProduct{}, nil
	}

	query := `SELECT ` + listingColumns + `
		FROM competitor_listings
		WHERE (` + strings.Join(conditions, " OR ") + `)`
	query, args = applyFilter(query, args, filter)
	query += fmt.Sprintf(" ORDER BY price ASC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

// DistinctVendors returns the vendor dictionary: every distinct non-empty
// vendor name in the listing store.
func (s *ListingStore) DistinctVendors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT vendor FROM competitor_listings WHERE vendor <> '' ORDER BY vendor`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var vendors []string
	for rows.Next() {
		var vendor string
		if err := rows.Scan(&vendor); err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	return vendors, rows.Err()
}

func (s *ListingStore) query(ctx context.Context, query string, args ...interface{}) ([]domain.CandidateProduct, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanListings(rows)
}

func scanListings(rows *sql.Rows) ([]domain.CandidateProduct, error) {
	var candidates []domain.CandidateProduct
	for rows.Next() {
		var c domain.CandidateProduct
		var productType, variation, priceRaw, currency, url, imageURL, siteName sql.NullString
		var price sql.NullFloat64
		var siteID sql.NullInt64
		var updatedAt sql.NullTime

		if err := rows.Scan(&c.ID, &c.Name, &c.Vendor, &productType, &variation,
			&price, &priceRaw, &currency, &url, &imageURL, &siteID, &siteName, &updatedAt); err != nil {
			return nil, err
		}

		c.Type = productType.String
		c.Variation = variation.String
		c.Price = listingPrice(price, priceRaw)
		c.CurrencyUnit = currency.String
		c.URL = url.String
		c.ImageURL = imageURL.String
		c.SiteID = int(siteID.Int64)
		c.SiteName = siteName.String
		c.UpdatedAt = updatedAt.Time

		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// listingPrice prefers the numeric price column and falls back to parsing
// the raw scraped string for rows the scraper could not convert. An
// unparsable raw price stays 0.0 and the candidate classifies as
// non-comparable downstream.
func listingPrice(price sql.NullFloat64, priceRaw sql.NullString) float64 {
	if price.Valid && price.Float64 > 0 {
		return price.Float64
	}
	return domain.ParsePrice(priceRaw.String)
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// applyFilter appends the optional site and variation predicates.
func applyFilter(query string, args []interface{}, filter domain.ListingFilter) (string, []interface{}) {
	if len(filter.SiteIDs) > 0 {
		args = append(args, pq.Array(filter.SiteIDs))
		query += fmt.Sprintf(" AND site_id = ANY($%d)", len(args))
	}
	if filter.ExcludeStandardVariation {
		query += ` AND variation IS NOT NULL AND variation <> '' AND variation <> 'Standard'`
	}
	return query, args
}

// translateBooleanQuery converts the engine's "+term*" boolean syntax into
// a to_tsquery expression: "+coco* +madem*" becomes "coco:* & madem:*".
func translateBooleanQuery(booleanQuery string) string {
	fields := strings.Fields(booleanQuery)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		term := strings.TrimPrefix(field, "+")
		prefix := strings.HasSuffix(term, "*")
		term = strings.TrimSuffix(term, "*")
		term = sanitizeTsTerm(term)
		if term == "" {
			continue
		}
		if prefix {
			term += ":*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " & ")
}

// sanitizeTsTerm strips tsquery operator characters out of a term.
func sanitizeTsTerm(term string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '&', '|', '!', '(', ')', ':', '\'', '<', '>':
			return -1
		}
		return r
	}, term)
}
