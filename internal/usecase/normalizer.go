package usecase

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// TextNormalizer repairs encoding damage and canonicalizes free text
// (titles, vendor fragments) before extraction. Normalize is idempotent and
// never fails: undecodable input degrades to best-effort substitution.
type TextNormalizer struct {
	detector *chardet.Detector
}

// NewTextNormalizer creates a normalizer with a shared charset detector.
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{detector: chardet.NewTextDetector()}
}

// mojibakeReplacer repairs the common UTF-8-decoded-as-Latin-1 sequences
// that scraped listings carry. Each pair maps the damaged sequence to the
// character the scraper originally saw.
var mojibakeReplacer = strings.NewReplacer(
	"Ã©", "é", "Ã¨", "è", "Ãª", "ê", "Ã«", "ë",
	"Ã¢", "â", "Ã®", "î", "Ã¯", "ï", "Ã´", "ô",
	"Ã¶", "ö", "Ã»", "û", "Ã¼", "ü", "Ã§", "ç",
	"Ã ", "à", "Ã‰", "É", "Ã€", "À", "Ã‡", "Ç",
	"Å“", "œ", "Å’", "Œ", "â‚¬", "€", "â€™", "’",
	"â€œ", "“", "â€“", "–", "â€”", "—", "Â°", "°",
	"Â·", "·", "Â ", " ",
)

// Normalize applies the full canonicalization pipeline: decode to UTF-8,
// decode HTML entities, strip control characters, repair mojibake under NFC
// and collapse whitespace. The output is a fixed point of Normalize.
func (n *TextNormalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = n.decodeToUTF8(s)
	s = unescapeEntities(s)
	s = stripControl(s)
	s = canonicalize(s)
	return collapseWhitespace(s)
}

// canonicalize interleaves mojibake repair with NFC composition to a fixed
// point. Entity decoding or NFC itself can assemble a damaged sequence out
// of previously separate characters (A + combining tilde + © composes to
// "Ã©"), so a single repair pass is not enough.
func canonicalize(s string) string {
	for i := 0; i < 4; i++ {
		next := norm.NFC.String(mojibakeReplacer.Replace(s))
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// decodeToUTF8 converts legacy single-byte encodings to UTF-8. Valid UTF-8
// passes through untouched, which keeps Normalize idempotent.
func (n *TextNormalizer) decodeToUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	if result, err := n.detector.DetectBest([]byte(s)); err == nil {
		if cm := charmapForName(result.Charset); cm != nil {
			if decoded, err := cm.NewDecoder().String(s); err == nil && utf8.ValidString(decoded) {
				return decoded
			}
		}
	}
	// Most scraped legacy content is windows-1252; try it before giving up.
	if decoded, err := charmap.Windows1252.NewDecoder().String(s); err == nil && utf8.ValidString(decoded) {
		return decoded
	}
	// Last resort: drop invalid sequences and transliterate what remains.
	return unidecode.Unidecode(strings.ToValidUTF8(s, ""))
}

// charmapForName maps chardet charset names to decoders for the single-byte
// encodings scraped listings actually show up in.
func charmapForName(name string) *charmap.Charmap {
	switch name {
	case "ISO-8859-1":
		return charmap.ISO8859_1
	case "ISO-8859-15":
		return charmap.ISO8859_15
	case "windows-1252":
		return charmap.Windows1252
	case "windows-1251":
		return charmap.Windows1251
	case "KOI8-R":
		return charmap.KOI8R
	default:
		return nil
	}
}

// unescapeEntities decodes HTML entities to a fixed point so that
// double-escaped input ("&amp;amp;") still normalizes idempotently.
func unescapeEntities(s string) string {
	for i := 0; i < 4; i++ {
		decoded := html.UnescapeString(s)
		if decoded == s {
			return s
		}
		s = decoded
	}
	return s
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
