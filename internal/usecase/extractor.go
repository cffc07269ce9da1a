package usecase

import (
	"regexp"
	"sort"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	// Hyphen delimiter between title parts ("Vendor - Name - Type - Variation")
	titleDelimiterRegex = regexp.MustCompile(`\s+-\s+`)

	// Volume in millilitres; all matches are collected, not just the first
	volumeRegex = regexp.MustCompile(`(?i)\b(\d+)\s*ml\b`)

	// Weight/capacity units other than millilitres
	capacityRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(kg|g|oz|l)\b`)

	// Size-like fragments stripped out of the product name remainder
	sizeTokenRegex = regexp.MustCompile(`(?i)\b\d+\s*(?:ml|cl|l|kg|g|gr|oz|%)\b`)
)

// Components is the structured decomposition of a normalized title. Every
// field is always populated (empty where nothing matched); extraction never
// fails.
type Components struct {
	Vendor      string
	ProductName string
	Type        string
	Variation   string
	Color       string
	Finish      string
	Volumes     []string
	Capacities  []string
}

// ComponentExtractor splits a normalized title into vendor / product name /
// type / variation plus feature vocabulary (type, color, finish) and size
// information, using ordered delimiter patterns and fixed word lists.
type ComponentExtractor struct{}

// NewComponentExtractor creates a component extractor.
func NewComponentExtractor() *ComponentExtractor {
	return &ComponentExtractor{}
}

// typeVocabulary maps spelled-out and abbreviated product types to their
// canonical form (edp and "eau de parfum" are the same type).
var typeVocabulary = map[string]string{
	"eau de parfum":   "eau de parfum",
	"edp":             "eau de parfum",
	"eau de toilette": "eau de toilette",
	"edt":             "eau de toilette",
	"eau de cologne":  "eau de cologne",
	"edc":             "eau de cologne",
	"parfum":          "parfum",
	"extrait":         "extrait",
	"eau fraiche":     "eau fraiche",
	"eau fraîche":     "eau fraiche",
}

// colorVocabulary lists the colors that show up as makeup variations.
var colorVocabulary = []string{
	"noir", "blanc", "rouge", "rose", "beige", "nude", "corail",
	"bordeaux", "marron", "bleu", "vert", "violet", "doré", "argenté",
	"black", "white", "red", "pink", "gold", "silver", "brown",
	"blue", "green", "purple", "coral",
}

// finishVocabulary lists cosmetic finishes.
var finishVocabulary = []string{
	"mat", "matte", "brillant", "glossy", "satin", "satiné",
	"shimmer", "metallic", "nacré", "irisé",
}

// technicalStopWords are generic cosmetic and technical terms removed from
// the remainder when isolating the product name.
var technicalStopWords = map[string]bool{
	"eau": true, "de": true, "parfum": true, "toilette": true, "cologne": true,
	"edp": true, "edt": true, "edc": true, "extrait": true,
	"spray": true, "vapo": true, "vaporisateur": true, "recharge": true,
	"refill": true, "rechargeable": true, "coffret": true, "set": true,
	"créme": true, "crème": true, "creme": true, "sérum": true, "serum": true,
	"lotion": true, "gel": true, "baume": true, "huile": true, "fluide": true,
	"soin": true, "masque": true, "gommage": true,
	"homme": true, "femme": true, "men": true, "women": true, "unisexe": true,
	"ml": true, "cl": true, "gr": true,
}

// Extract decomposes a normalized title. Ordered delimiter patterns are
// tried first (4-part, 3-part, 2-part); a title with no delimiter treats
// its first token as the vendor.
func (e *ComponentExtractor) Extract(title string) Components {
	c := Components{
		Volumes:    ExtractVolumes(title),
		Capacities: extractCapacities(title),
	}
	if title == "" {
		c.Volumes = []string{}
		c.Capacities = []string{}
		return c
	}

	parts := splitTitleParts(title)
	switch {
	case len(parts) >= 4:
		c.Vendor = parts[0]
		c.ProductName = cleanProductName(parts[1])
		c.Type = canonicalType(parts[2])
		if c.Type == "" {
			c.Type = strings.TrimSpace(parts[2])
		}
		c.Variation = cleanVariation(strings.Join(parts[3:], " "))
	case len(parts) == 3:
		c.Vendor = parts[0]
		c.ProductName = cleanProductName(parts[1])
		if t := canonicalType(parts[2]); t != "" {
			c.Type = t
			c.Variation = cleanVariation(stripTypeWords(parts[2]))
		} else {
			c.Variation = cleanVariation(parts[2])
		}
	case len(parts) == 2:
		c.Vendor = parts[0]
		c.ProductName = cleanProductName(parts[1])
	default:
		fields := strings.Fields(title)
		c.Vendor = fields[0]
		if len(fields) > 1 {
			c.ProductName = cleanProductName(strings.Join(fields[1:], " "))
		}
	}

	if c.Type == "" {
		c.Type = canonicalType(title)
	}
	c.Color = matchVocabulary(title, colorVocabulary)
	c.Finish = matchVocabulary(title, finishVocabulary)
	return c
}

// ExtractVolumes collects every millilitre volume in the text, in order
// ("EDP 50 ml + 5 ml" yields ["50", "5"]).
func ExtractVolumes(s string) []string {
	matches := volumeRegex.FindAllStringSubmatch(s, -1)
	volumes := make([]string, 0, len(matches))
	for _, m := range matches {
		volumes = append(volumes, m[1])
	}
	return volumes
}

func extractCapacities(s string) []string {
	matches := capacityRegex.FindAllStringSubmatch(s, -1)
	capacities := make([]string, 0, len(matches))
	for _, m := range matches {
		capacities = append(capacities, m[1]+strings.ToLower(m[2]))
	}
	return capacities
}

func splitTitleParts(title string) []string {
	raw := titleDelimiterRegex.Split(title, -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// canonicalType returns the canonical product type found in the text, or ""
// when no vocabulary entry matches. Longer entries win so that
// "eau de parfum" is preferred over the bare "parfum".
func canonicalType(s string) string {
	lower := strings.ToLower(s)
	best := ""
	bestLen := 0
	for key, canonical := range typeVocabulary {
		if len(key) > bestLen && containsWord(lower, key) {
			best = canonical
			bestLen = len(key)
		}
	}
	return best
}

// stripTypeWords removes every type-vocabulary entry from the text, longest
// entries first so "eau de parfum" disappears whole instead of leaving
// "eau de" behind.
func stripTypeWords(s string) string {
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		// Lowercasing changed byte offsets; match on the lowered copy.
		s = lower
	}
	keys := make([]string, 0, len(typeVocabulary))
	for key := range typeVocabulary {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, key := range keys {
		for {
			idx := indexWord(lower, key)
			if idx < 0 {
				break
			}
			s = s[:idx] + s[idx+len(key):]
			lower = lower[:idx] + lower[idx+len(key):]
		}
	}
	return s
}

// cleanProductName removes size fragments and technical vocabulary from a
// name part, leaving the product identity.
func cleanProductName(s string) string {
	s = sizeTokenRegex.ReplaceAllString(s, " ")
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if technicalStopWords[strings.ToLower(f)] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// cleanVariation removes size fragments from a variation part but keeps its
// descriptive words (colors, editions).
func cleanVariation(s string) string {
	s = sizeTokenRegex.ReplaceAllString(s, " ")
	return collapseWhitespace(s)
}

func matchVocabulary(s string, vocabulary []string) string {
	lower := strings.ToLower(s)
	for _, entry := range vocabulary {
		if containsWord(lower, entry) {
			return entry
		}
	}
	return ""
}

// containsWord reports whether needle occurs in haystack on word
// boundaries, so "mat" does not match inside "mademoiselle".
func containsWord(haystack, needle string) bool {
	return indexWord(haystack, needle) >= 0
}

func indexWord(haystack, needle string) int {
	if needle == "" {
		return -1
	}
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		before := idx == 0 || isWordBoundary(haystack[idx-1])
		afterIdx := idx + len(needle)
		after := afterIdx >= len(haystack) || isWordBoundary(haystack[afterIdx])
		if before && after {
			return idx
		}
		from = idx + 1
	}
}

func isWordBoundary(b byte) bool {
	return !(b >= 'a' && b <= 'z') && !(b >= 'A' && b <= 'Z') && !(b >= '0' && b <= '9')
}
