package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pricescope/backend/internal/domain"
)

const (
	vendorDictionaryKey = "vendors:dictionary"
	vendorAcceptScore   = 60.0
)

var vendorPunctRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// VendorResolver fuzzy-matches an extracted vendor fragment against the
// dictionary of distinct vendors seen in the listing store. The dictionary
// snapshot is cached on a 24-hour horizon; resolution is deterministic for
// a fixed snapshot.
type VendorResolver struct {
	provider domain.VendorDictionaryProvider
	cache    domain.CacheRepository
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewVendorResolver creates a resolver backed by the given dictionary
// provider and cache.
func NewVendorResolver(provider domain.VendorDictionaryProvider, cache domain.CacheRepository, ttl time.Duration, logger zerolog.Logger) *VendorResolver {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &VendorResolver{provider: provider, cache: cache, ttl: ttl, logger: logger}
}

// Dictionary returns the cached vendor snapshot, refreshing it from the
// provider when the cache horizon has passed.
func (r *VendorResolver) Dictionary(ctx context.Context) ([]string, error) {
	value, err := r.cache.Remember(ctx, vendorDictionaryKey, r.ttl, func() (interface{}, error) {
		vendors, err := r.provider.DistinctVendors(ctx)
		if err != nil {
			return nil, err
		}
		return vendors, nil
	})
	if err != nil {
		return nil, err
	}
	vendors, ok := value.([]string)
	if !ok {
		return r.provider.DistinctVendors(ctx)
	}
	return vendors, nil
}

// Resolve matches a vendor fragment against the dictionary. The best
// dictionary entry is returned when its score reaches the acceptance
// threshold; an ambiguous fragment resolves to "" rather than an error, and
// the downstream vendor component score then defaults to zero.
func (r *VendorResolver) Resolve(ctx context.Context, fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	dictionary, err := r.Dictionary(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("vendor dictionary unavailable")
		return ""
	}

	best := ""
	bestScore := 0.0
	for _, entry := range dictionary {
		score := scoreVendorEntry(fragment, entry)
		if score >= 100 {
			return entry
		}
		if score > bestScore {
			bestScore = score
			best = entry
		}
	}
	if bestScore < vendorAcceptScore {
		return ""
	}
	return best
}

// scoreVendorEntry implements the tiered dictionary scoring:
// exact 100, punctuation-stripped exact 95, fragment-prefix 90,
// entry-prefix 85, substring 70/65, then edit-distance similarity when it
// clears 80. Comparison is case- and punctuation-insensitive.
func scoreVendorEntry(fragment, entry string) float64 {
	f := strings.ToLower(strings.TrimSpace(fragment))
	e := strings.ToLower(strings.TrimSpace(entry))
	if f == "" || e == "" {
		return 0
	}
	switch {
	case f == e:
		return 100
	case stripVendorPunct(f) == stripVendorPunct(e):
		return 95
	case strings.HasPrefix(e, f):
		return 90
	case strings.HasPrefix(f, e):
		return 85
	case strings.Contains(e, f):
		return 70
	case strings.Contains(f, e):
		return 65
	}
	if sim := editSimilarity(f, e) * 100; sim > 80 {
		return sim
	}
	return 0
}

// Variants generates the spelling and format variants used for candidate
// retrieval: case forms, separator forms, and dictionary entries close to
// the resolved vendor.
func (r *VendorResolver) Variants(ctx context.Context, vendor string) []string {
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return nil
	}

	titleCaser := cases.Title(language.Und)
	variants := []string{
		vendor,
		strings.ToUpper(vendor),
		strings.ToLower(vendor),
		titleCaser.String(strings.ToLower(vendor)),
		strings.ReplaceAll(vendor, " ", ""),
		strings.ReplaceAll(vendor, " ", "-"),
		strings.ReplaceAll(vendor, " ", "."),
	}

	if dictionary, err := r.Dictionary(ctx); err == nil {
		lower := strings.ToLower(vendor)
		for _, entry := range dictionary {
			entryLower := strings.ToLower(entry)
			if entryLower == lower {
				continue
			}
			related := strings.Contains(entryLower, lower) || strings.Contains(lower, entryLower)
			if related || editRatio(lower, entryLower) < 0.2 {
				variants = append(variants, entry)
			}
		}
	}

	return dedupeStrings(variants)
}

func stripVendorPunct(s string) string {
	return vendorPunctRegex.ReplaceAllString(s, "")
}

// editSimilarity is 1 - levenshtein/maxlen in [0, 1].
func editSimilarity(a, b string) float64 {
	return 1 - editRatio(a, b)
}

// editRatio is levenshtein distance normalized by the longer length.
// Distance is computed over runes so accented vendor names measure
// correctly.
func editRatio(a, b string) float64 {
	if a == b {
		return 0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	return float64(levenshteinDistance(a, b)) / float64(maxLen)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
