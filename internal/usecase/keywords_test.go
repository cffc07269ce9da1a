package usecase

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	k := NewKeywordExtractor()

	t.Run("drops vendor, stop words and sizes", func(t *testing.T) {
		got := k.Extract("Chanel - Coco Mademoiselle - Eau de Parfum 50ml", "Chanel")
		want := []string{"coco", "mademoiselle"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("keeps vendor token when no vendor given", func(t *testing.T) {
		got := k.Extract("Zorblat Mystic Rose", "")
		want := []string{"zorblat", "mystic", "rose"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("drops short, numeric and technical tokens", func(t *testing.T) {
		got := k.Extract("Soin anti-age 123 spf 30% le visage", "")
		want := []string{"anti", "age", "visage"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("drops product codes but keeps uppercase brand words", func(t *testing.T) {
		got := k.Extract("NARS blush REF4521 orgasm", "")
		want := []string{"nars", "blush", "orgasm"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("de-duplicates preserving order", func(t *testing.T) {
		got := k.Extract("rose rose poudre rose", "")
		want := []string{"rose", "poudre"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("caps at ten keywords", func(t *testing.T) {
		got := k.Extract("alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima", "")
		if len(got) != 10 {
			t.Errorf("len = %d, want 10", len(got))
		}
	})

	t.Run("empty title", func(t *testing.T) {
		got := k.Extract("", "")
		if len(got) != 0 {
			t.Errorf("Extract(\"\") = %v, want empty", got)
		}
	})
}
