// internal/gateway/extract.go
package gateway

import (
	"strings"

	stderrors "worthcheck/internal/common/errors"
)

// Content types that are definitely not the model's answer text. Anything
// outside this set is treated as text: upstream type tags are not always
// trustworthy, and an unlabeled entry is more likely mislabeled than skippable.
var nonTextContentTypes = map[string]bool{
	"reasoning":   true,
	"refusal":     true,
	"tool_call":   true,
	"tool_result": true,
	"image":       true,
	"audio":       true,
}

func isTextLike(contentType string) bool {
	return !nonTextContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// Extract locates the single piece of text inside the envelope that is
// expected to itself be a JSON document. Paths are tried in order, first
// success wins:
//
//  1. the top-level convenience text field
//  2. the first output item holding a text-like (or unlabeled) content piece
//     with non-empty text
//  3. any non-empty text in any content piece, regardless of declared type
//
// Returns EXTRACTION_FAILED when no path yields text; callers must not proceed.
func Extract(env *Envelope) (string, error) {
	if env == nil {
		return "", stderrors.NewExtractionFailedError("nil envelope")
	}

	if strings.TrimSpace(env.OutputText) != "" {
		return env.OutputText, nil
	}

	for _, item := range env.Output {
		for _, piece := range item.Content {
			if isTextLike(piece.Type) && strings.TrimSpace(piece.Text) != "" {
				return piece.Text, nil
			}
		}
	}

	// Permissive fallback: declared types are best-effort upstream, so take
	// any non-empty text at all before giving up.
	for _, item := range env.Output {
		for _, piece := range item.Content {
			if strings.TrimSpace(piece.Text) != "" {
				return piece.Text, nil
			}
		}
	}

	return "", stderrors.NewExtractionFailedError("no text content in any output item")
}
