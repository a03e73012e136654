package ai

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const targetField = "translatedText"

// feedSplits feeds doc to a fresh accumulator split at every byte boundary
// into two chunks, returning the emissions per split.
func feedSplits(t *testing.T, doc string) [][]string {
	t.Helper()

	var all [][]string
	for cut := 0; cut <= len(doc); cut++ {
		acc := NewStreamAccumulator(targetField)
		var emissions []string
		for _, chunk := range []string{doc[:cut], doc[cut:]} {
			if preview, changed := acc.Feed(chunk); changed {
				emissions = append(emissions, preview)
			}
		}
		all = append(all, emissions)
	}
	return all
}

func TestExtractorEmitsGrowingPrefixes(t *testing.T) {
	doc := `{"translatedText":"我需要你幫忙一起想辦法","principles":["先連結"]}`
	want := "我需要你幫忙一起想辦法"

	acc := NewStreamAccumulator(targetField)
	var emissions []string
	for _, r := range doc {
		// Feed one rune at a time to simulate fine-grained chunking.
		if preview, changed := acc.Feed(string(r)); changed {
			emissions = append(emissions, preview)
		}
	}

	if len(emissions) == 0 {
		t.Fatal("expected at least one preview emission")
	}
	prev := ""
	for _, e := range emissions {
		if !strings.HasPrefix(want, e) {
			t.Fatalf("preview %q is not a prefix of %q", e, want)
		}
		if !strings.HasPrefix(e, prev) {
			t.Fatalf("preview %q does not extend previous %q", e, prev)
		}
		prev = e
	}
	if emissions[len(emissions)-1] != want {
		t.Fatalf("final preview %q, want %q", emissions[len(emissions)-1], want)
	}
}

func TestExtractorEscapedQuoteNeverTerminatesEarly(t *testing.T) {
	doc := `{"translatedText":"He said \"hi\"\nBye","principles":[]}`
	want := "He said \"hi\"\nBye"

	for cut, emissions := range feedSplits(t, doc) {
		for _, e := range emissions {
			if !strings.HasPrefix(want, e) {
				t.Fatalf("split at %d: preview %q is not a prefix of %q", cut, e, want)
			}
		}
		if len(emissions) == 0 {
			t.Fatalf("split at %d: no emissions", cut)
		}
		if final := emissions[len(emissions)-1]; final != want {
			t.Fatalf("split at %d: final preview %q, want %q", cut, final, want)
		}
	}
}

func TestExtractorNoCrashOnTruncatedPrefixes(t *testing.T) {
	doc := `{"translatedText":"a\\b孩\"c","principles":["x"],"psychologicalContext":"y"}`

	for cut := 0; cut <= len(doc); cut++ {
		preview, ok := ExtractPartialField(doc[:cut], targetField)
		if !ok {
			continue
		}
		if !utf8.ValidString(preview) {
			t.Fatalf("prefix of length %d produced invalid UTF-8 preview %q", cut, preview)
		}
	}
}

func TestExtractorSilentBeforeFieldAppears(t *testing.T) {
	acc := NewStreamAccumulator(targetField)

	for _, chunk := range []string{`{"principles":["尊重"],`, `"psychologicalContext":"...",`} {
		if preview, changed := acc.Feed(chunk); changed {
			t.Fatalf("unexpected emission %q before field name appeared", preview)
		}
	}
}

func TestExtractorFieldNameSplitAcrossChunks(t *testing.T) {
	acc := NewStreamAccumulator(targetField)

	if _, changed := acc.Feed(`{"translated`); changed {
		t.Fatal("emission while field name incomplete")
	}
	preview, changed := acc.Feed(`Text":"好的`)
	if !changed || preview != "好的" {
		t.Fatalf("got (%q, %v), want (%q, true)", preview, changed, "好的")
	}
}

func TestExtractorUnicodeEscapes(t *testing.T) {
	// Backtick literals keep the backslashes, so these documents carry real
	// \uXXXX sequences the way the wire does.
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bmp escape", `{"translatedText":"孩子"}`, "孩子"},
		{"surrogate pair escape", `{"translatedText":"🙂"}`, "🙂"},
		{"escape mixed with literal runes", `{"translatedText":"嗨孩"}`, "嗨孩"},
		{"bad hex passthrough", `{"translatedText":"\uZZZZ"}`, "uZZZZ"},
		{"unknown escape passthrough", `{"translatedText":"a\qb"}`, "aqb"},
		{"tab and slash", `{"translatedText":"a\tb\/c"}`, "a\tb/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, ok := ExtractPartialField(tt.doc, targetField)
			if !ok {
				t.Fatal("field not found")
			}
			if preview != tt.want {
				t.Fatalf("got %q, want %q", preview, tt.want)
			}
		})
	}
}

func TestExtractorSurrogatePairSplitMidEscape(t *testing.T) {
	// Twelve bytes of 🙂 in the raw buffer; every split point lands
	// somewhere inside or around the escape pair.
	doc := `{"translatedText":"嗨🙂了"}`
	want := "嗨🙂了"

	for cut, emissions := range feedSplits(t, doc) {
		for _, e := range emissions {
			if !strings.HasPrefix(want, e) {
				t.Fatalf("split at %d: preview %q not a prefix of %q", cut, e, want)
			}
			if !utf8.ValidString(e) {
				t.Fatalf("split at %d: invalid UTF-8 preview %q", cut, e)
			}
		}
		if len(emissions) == 0 || emissions[len(emissions)-1] != want {
			t.Fatalf("split at %d: emissions %q never reached %q", cut, emissions, want)
		}
	}
}

func TestExtractorMultibyteRuneSplitAcrossChunks(t *testing.T) {
	doc := `{"translatedText":"深呼吸"}`

	for cut, emissions := range feedSplits(t, doc) {
		for _, e := range emissions {
			if !utf8.ValidString(e) {
				t.Fatalf("split at %d: invalid UTF-8 preview %q", cut, e)
			}
		}
	}
}

func TestAccumulatorDedupesUnchangedPreviews(t *testing.T) {
	acc := NewStreamAccumulator(targetField)

	if _, changed := acc.Feed(`{"translatedText":"好"`); !changed {
		t.Fatal("expected emission when value completed")
	}
	// Later structural chunks do not touch the target field.
	if preview, changed := acc.Feed(`,"principles":["x"]}`); changed {
		t.Fatalf("unexpected re-emission of %q", preview)
	}

	if acc.Raw() != `{"translatedText":"好","principles":["x"]}` {
		t.Fatalf("raw buffer mismatch: %q", acc.Raw())
	}
}
