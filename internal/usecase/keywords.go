package usecase

import (
	"regexp"
	"strings"
	"unicode"
)

const maxKeywords = 10

var (
	// All punctuation except hyphens becomes a space before tokenizing
	keywordPunctRegex = regexp.MustCompile(`[^\p{L}\p{N}\s-]+`)

	// Pure numbers and size-like tokens carry no search signal
	numericTokenRegex = regexp.MustCompile(`^\d+$`)
	sizeLikeRegex     = regexp.MustCompile(`(?i)^\d+(?:[.,]\d+)?(?:ml|cl|l|kg|gr|g|oz|%)$`)

	// All-caps alphanumeric strings of length >= 4 with at least one digit
	// are almost always product codes
	productCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4,}$`)
	hasDigitRegex    = regexp.MustCompile(`\d`)
)

// generalStopWords are French/English function words.
var generalStopWords = map[string]bool{
	"les": true, "des": true, "une": true, "aux": true, "avec": true,
	"pour": true, "par": true, "sur": true, "sous": true, "dans": true,
	"est": true, "son": true, "ses": true, "ces": true, "cette": true,
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"this": true, "that": true, "are": true, "was": true, "has": true,
	"new": true, "all": true, "per": true, "our": true, "your": true,
}

// domainStopWords are product-domain nouns too generic to discriminate.
var domainStopWords = map[string]bool{
	"crème": true, "creme": true, "sérum": true, "serum": true,
	"lotion": true, "soin": true, "gel": true, "baume": true,
	"huile": true, "masque": true, "fluide": true, "lait": true,
	"eau": true, "parfum": true, "toilette": true, "cologne": true,
	"spray": true, "vapo": true, "vaporisateur": true, "coffret": true,
	"recharge": true, "refill": true, "produit": true, "product": true,
	"flacon": true, "tube": true, "pot": true, "format": true,
	"edition": true, "édition": true, "limitée": true, "limited": true,
}

// technicalTerms are ingredient and technical tokens that match too broadly.
var technicalTerms = map[string]bool{
	"spf": true, "uva": true, "uvb": true, "bio": true,
	"collagène": true, "collagene": true, "collagen": true,
	"hyaluronique": true, "hyaluronic": true, "acide": true, "acid": true,
	"vitamine": true, "vitamin": true, "kératine": true, "keratine": true,
	"rétinol": true, "retinol": true, "niacinamide": true,
}

// KeywordExtractor tokenizes a normalized title into a bounded,
// de-duplicated set of significant search keywords.
type KeywordExtractor struct{}

// NewKeywordExtractor creates a keyword extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract returns at most 10 keywords, order-preserving and de-duplicated.
// The extracted vendor, when known, is removed first so keywords describe
// the product rather than the brand.
func (k *KeywordExtractor) Extract(title, vendor string) []string {
	if vendor != "" {
		title = removeFold(title, vendor)
	}

	cleaned := keywordPunctRegex.ReplaceAllString(title, " ")
	tokens := strings.FieldsFunc(cleaned, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})

	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]bool, maxKeywords)
	for _, token := range tokens {
		if isProductCode(token) {
			continue
		}
		word := strings.ToLower(token)
		if len([]rune(word)) < 3 {
			continue
		}
		if generalStopWords[word] || domainStopWords[word] || technicalTerms[word] {
			continue
		}
		if numericTokenRegex.MatchString(word) || sizeLikeRegex.MatchString(word) {
			continue
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// isProductCode flags all-caps alphanumeric codes like "N°5"-adjacent SKU
// fragments ("AB12CD"); pure uppercase words (brand names) are kept.
func isProductCode(token string) bool {
	return productCodeRegex.MatchString(token) && hasDigitRegex.MatchString(token)
}

// removeFold removes every case-insensitive occurrence of needle.
func removeFold(s, needle string) string {
	if needle == "" {
		return s
	}
	lower := strings.ToLower(s)
	needleLower := strings.ToLower(needle)
	if len(lower) != len(s) {
		s = lower
	}
	for {
		idx := strings.Index(lower, needleLower)
		if idx < 0 {
			return s
		}
		s = s[:idx] + " " + s[idx+len(needleLower):]
		lower = lower[:idx] + " " + lower[idx+len(needleLower):]
	}
}
