// internal/repair/repair.go
//
// Package repair deterministically rewrites malformed model output into
// syntactically valid JSON without altering semantic content, or fails.
// Every pass is a single linear scan with O(1) extra state, so the whole
// engine is O(n) in document length with no backtracking; it runs on the
// response-handling path, not as a background job.
package repair

import (
	"encoding/json"
	"strings"

	stderrors "worthcheck/internal/common/errors"
)

// previewLimit bounds how much of an unrepairable document is carried in the
// failure for diagnostics.
const previewLimit = 200

// maxTailTrims bounds how many trailing incomplete members may be dropped
// while recovering a truncated document.
const maxTailTrims = 4

// Repair coerces text into a byte sequence guaranteed to parse as valid JSON.
// It tolerates, in combination: byte-order marks, surrounding code fences,
// curly single quotes, explanatory prose around the object, trailing commas,
// doubled double quotes, raw control characters inside string literals, and
// truncation that leaves strings, arrays, or objects unterminated. It returns
// REPAIR_FAILED rather than emitting an invalid document.
func Repair(text string) ([]byte, error) {
	cleaned := stripWrapping(text)

	isolated, ok := isolateObject(cleaned)
	if !ok {
		return nil, stderrors.NewRepairFailedError("no JSON object found", preview(cleaned))
	}

	repaired := removeTrailingCommas(isolated)
	repaired = collapseDoubledQuotes(repaired)
	repaired = escapeControlChars(repaired)

	candidate := balanceStructures(repaired)
	if json.Valid([]byte(candidate)) {
		return []byte(candidate), nil
	}

	// Truncation can leave a dangling key or a value-less colon that no
	// amount of bracket balancing makes parseable. Drop the trailing
	// incomplete member and retry, a bounded number of times.
	trimmed := repaired
	for i := 0; i < maxTailTrims; i++ {
		cut := lastMemberBoundary(trimmed)
		if cut <= 0 {
			break
		}
		trimmed = trimmed[:cut]
		candidate = balanceStructures(removeTrailingCommas(trimmed))
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}

	return nil, stderrors.NewRepairFailedError("document invalid after repair", preview(candidate))
}

// stripWrapping removes a leading byte-order mark and code-fence markers that
// wrap the payload, and normalizes curly single quotes to straight quotes.
// Curly double quotes are legal inside JSON string values and are left alone.
func stripWrapping(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```json")
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	replacer := strings.NewReplacer("‘", "'", "’", "'")
	return replacer.Replace(text)
}

// isolateObject returns the first complete top-level object: from the first
// '{' to the matching '}', where brace depth only moves outside string
// literals. When depth never returns to zero (truncation), it falls back to
// everything from the first '{' to the last '}', or to the end of the text
// when no '}' exists at all.
func isolateObject(text string) (string, bool) {
	var sc stringScanner
	depth := 0
	start := -1

	for i := 0; i < len(text); i++ {
		c := text[i]
		if sc.advance(c) {
			continue
		}
		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	if start < 0 {
		return "", false
	}
	if end := strings.LastIndexByte(text, '}'); end > start {
		return text[start : end+1], true
	}
	return text[start:], true
}

// removeTrailingCommas drops commas that appear, outside string literals,
// immediately before a closing brace or bracket.
func removeTrailingCommas(text string) string {
	var sc stringScanner
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if sc.advance(c) {
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(text) && isJSONSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// collapseDoubledQuotes collapses `""` pairs the model emits informally to
// mean a single quote. A pair that reads as a syntactically valid empty
// string (structural delimiter on both sides) is preserved, as is a pair
// whose first quote is escaped and therefore part of a string value.
func collapseDoubledQuotes(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		if text[i] == '"' && i+1 < len(text) && text[i+1] == '"' && !quoteEscaped(text, i) {
			if !(structuralBefore(text, i) && structuralAfter(text, i+2)) {
				b.WriteByte('"')
				i++
				continue
			}
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

// quoteEscaped reports whether the quote at i is preceded by an odd number of
// backslashes.
func quoteEscaped(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func structuralBefore(text string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if isJSONSpace(text[j]) {
			continue
		}
		switch text[j] {
		case ':', ',', '{', '[':
			return true
		}
		return false
	}
	return true
}

func structuralAfter(text string, i int) bool {
	for j := i; j < len(text); j++ {
		if isJSONSpace(text[j]) {
			continue
		}
		switch text[j] {
		case ':', ',', '}', ']':
			return true
		}
		return false
	}
	return true
}

// escapeControlChars replaces raw newlines, carriage returns, and tabs inside
// string literals with their two-character escapes. Characters outside
// strings pass through unchanged.
func escapeControlChars(text string) string {
	var sc stringScanner
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if sc.advance(c) {
			switch c {
			case '\n', '\r':
				b.WriteString(`\n`)
				continue
			case '\t':
				b.WriteString(`\t`)
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// balanceStructures appends whatever closers a truncated document is missing:
// a closing quote when the text ends inside a string literal, then closing
// brackets and braces in reverse order of their still-open openers.
func balanceStructures(text string) string {
	var sc stringScanner
	var stack []byte

	for i := 0; i < len(text); i++ {
		c := text[i]
		if sc.advance(c) {
			continue
		}
		switch c {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		}
	}

	var b strings.Builder
	b.Grow(len(text) + len(stack) + 2)
	b.WriteString(text)
	if sc.state == stateInEscape {
		// Complete the dangling escape so the appended quote is not consumed.
		b.WriteByte('\\')
	}
	if sc.inString() {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

// lastMemberBoundary finds the cut point just before the last comma outside
// string literals, which is where the trailing incomplete member begins.
// Returns -1 when no such comma exists.
func lastMemberBoundary(text string) int {
	var sc stringScanner
	last := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		if sc.advance(c) {
			continue
		}
		if c == ',' {
			last = i
		}
	}
	return last
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func preview(text string) string {
	if len(text) > previewLimit {
		return text[:previewLimit]
	}
	return text
}
