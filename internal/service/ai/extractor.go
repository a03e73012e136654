package ai

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ExtractPartialField surfaces the in-progress value of one named string
// field from a raw completion-service buffer. The buffer is a prefix of a
// JSON document and may be truncated anywhere, including mid-escape or
// mid-field-name; the scan never fails, it just reports no preview.
//
// Escape policy: \n \t \r \" \\ \/ and \uXXXX decode to their characters;
// any other \x passes x through literally. A truncated escape sequence at the
// end of the buffer is excluded from the preview until its remainder arrives.
func ExtractPartialField(buf, field string) (string, bool) {
	start, ok := findFieldValueStart(buf, field)
	if !ok {
		return "", false
	}

	var out strings.Builder
	i := start
	for i < len(buf) {
		c := buf[i]

		if c == '"' {
			// Unescaped quote terminates the value.
			break
		}

		if c != '\\' {
			out.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(buf) {
			// Escape split across chunks; wait for the next one.
			break
		}

		esc := buf[i+1]
		switch esc {
		case 'n':
			out.WriteByte('\n')
			i += 2
		case 't':
			out.WriteByte('\t')
			i += 2
		case 'r':
			out.WriteByte('\r')
			i += 2
		case 'u':
			r, consumed, complete := decodeUnicodeEscape(buf[i:])
			if !complete {
				return trimIncompleteRune(out.String()), true
			}
			out.WriteRune(r)
			i += consumed
		default:
			// Covers \" and \\, and passes unknown escapes through.
			out.WriteByte(esc)
			i += 2
		}
	}

	return trimIncompleteRune(out.String()), true
}

// findFieldValueStart locates `"field"` followed by a colon, optional
// whitespace and the opening quote of a string value. Returns the index of
// the first value byte.
func findFieldValueStart(buf, field string) (int, bool) {
	needle := `"` + field + `"`
	idx := strings.Index(buf, needle)
	if idx < 0 {
		return 0, false
	}

	i := idx + len(needle)
	i = skipJSONWhitespace(buf, i)
	if i >= len(buf) || buf[i] != ':' {
		return 0, false
	}
	i = skipJSONWhitespace(buf, i+1)
	if i >= len(buf) || buf[i] != '"' {
		return 0, false
	}
	return i + 1, true
}

func skipJSONWhitespace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// decodeUnicodeEscape decodes a \uXXXX sequence (including surrogate pairs)
// at the start of s. complete is false when the buffer ends inside the
// sequence.
func decodeUnicodeEscape(s string) (r rune, consumed int, complete bool) {
	if len(s) < 6 {
		return 0, 0, false
	}
	hi, ok := parseHex4(s[2:6])
	if !ok {
		// Malformed escape; treat as literal passthrough of the 'u'.
		return 'u', 2, true
	}
	if utf16.IsSurrogate(rune(hi)) {
		if len(s) < 12 {
			return 0, 0, false
		}
		if s[6] == '\\' && s[7] == 'u' {
			if lo, ok := parseHex4(s[8:12]); ok {
				if combined := utf16.DecodeRune(rune(hi), rune(lo)); combined != utf8.RuneError {
					return combined, 12, true
				}
			}
		}
		return utf8.RuneError, 6, true
	}
	return rune(hi), 6, true
}

func parseHex4(s string) (uint32, bool) {
	var v uint32
	for i := 0; i < 4; i++ {
		c := s[i]
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

// trimIncompleteRune drops a trailing multi-byte character that was split
// across chunk boundaries, so previews are always valid UTF-8.
func trimIncompleteRune(s string) string {
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// StreamAccumulator collects the chunks of one in-flight request and derives
// the growing preview of the target field. One accumulator per request; it is
// never shared and carries no state beyond the buffer itself, so a re-scan is
// always derivable from scratch.
type StreamAccumulator struct {
	field       string
	buf         strings.Builder
	lastPreview string
	emitted     bool
}

func NewStreamAccumulator(field string) *StreamAccumulator {
	return &StreamAccumulator{field: field}
}

// Feed appends one chunk and re-scans the cumulative buffer. changed reports
// whether the preview grew since the last emission; callers skip their
// progress callback when it did not.
func (a *StreamAccumulator) Feed(chunk string) (preview string, changed bool) {
	a.buf.WriteString(chunk)

	preview, ok := ExtractPartialField(a.buf.String(), a.field)
	if !ok {
		return a.lastPreview, false
	}
	if a.emitted && preview == a.lastPreview {
		return preview, false
	}
	a.lastPreview = preview
	a.emitted = true
	return preview, true
}

// Raw returns the full accumulated buffer for final parsing.
func (a *StreamAccumulator) Raw() string {
	return a.buf.String()
}
