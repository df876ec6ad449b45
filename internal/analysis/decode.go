// internal/analysis/decode.go
package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	stderrors "worthcheck/internal/common/errors"
)

// signalsSchema gates repaired documents before decoding. It checks shape,
// not content quality: scores must be numbers in [0,1], text fields strings,
// list fields arrays of strings. Unknown fields are tolerated so prompt
// evolution upstream cannot break decoding.
var signalsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"contentDepthScore": map[string]interface{}{
			"type": "number", "minimum": 0, "maximum": 1,
		},
		"overallCommentSentimentScore": map[string]interface{}{
			"type": "number", "minimum": 0, "maximum": 1,
		},
		"verdict":           map[string]interface{}{"type": "string"},
		"justification":     map[string]interface{}{"type": "string"},
		"highlightedMoment": map[string]interface{}{"type": "string"},
		"learnings": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
		"reasons": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
		"highlights": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
		"watchOuts": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
	},
	"additionalProperties": true,
}

// Decode turns a repaired JSON document into a Signals record. The document
// is guaranteed to parse; Decode reports SCHEMA_MISMATCH when it parses but
// does not match the expected record shape.
func Decode(doc []byte) (*Signals, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, stderrors.NewSchemaMismatchError(fmt.Sprintf("document is not a JSON object: %v", err))
	}

	schemaLoader := gojsonschema.NewGoLoader(signalsSchema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, stderrors.NewSchemaMismatchError(fmt.Sprintf("validation error: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, stderrors.NewSchemaMismatchError(fmt.Sprintf("document does not match signals schema: %v", errs))
	}

	var sig Signals
	if err := json.Unmarshal(doc, &sig); err != nil {
		return nil, stderrors.NewSchemaMismatchError(fmt.Sprintf("decode signals: %v", err))
	}
	return &sig, nil
}
