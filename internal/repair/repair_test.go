package repair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "worthcheck/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

func mustRepair(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	doc, err := Repair(text)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &parsed), "repaired document must parse: %s", doc)
	return parsed
}

func parseJSON(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &parsed))
	return parsed
}

// ==========================
// Idempotence & Wrapping
// ==========================

func TestRepair_ValidInputUnchanged(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "flat object", text: `{"a":1,"b":"two","c":true}`},
		{name: "nested structures", text: `{"a":{"b":[1,2,{"c":null}]},"d":0.5}`},
		{name: "empty string values", text: `{"a":"","b":["",""]}`},
		{name: "escaped quotes and braces in strings", text: `{"a":"he said \"}\" and left","b":1}`},
		{name: "value ending in escaped quote", text: `{"a":"x\""}`},
		{name: "adjacent escaped and closing quotes", text: `{"a":"\"","b":["y\"",""]}`},
		{name: "curly double quotes in values", text: `{"a":"“fancy” quotes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, parseJSON(t, tt.text), mustRepair(t, tt.text))
		})
	}
}

func TestRepair_StripsFencesAndProse(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "json fence", text: "```json\n{\"a\":1}\n```"},
		{name: "bare fence", text: "```\n{\"a\":1}\n```"},
		{name: "byte order mark", text: "\uFEFF{\"a\":1}"},
		{name: "leading prose", text: "Here is the analysis you asked for:\n{\"a\":1}"},
		{name: "trailing prose", text: "{\"a\":1}\nLet me know if you need anything else."},
		{name: "prose and fence combined", text: "Sure! Here it is:\n```json\n{\"a\":1}\n```\nHope that helps."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, map[string]interface{}{"a": float64(1)}, mustRepair(t, tt.text))
		})
	}
}

func TestRepair_CurlySingleQuotes(t *testing.T) {
	parsed := mustRepair(t, "{\"a\":\"it’s fine\"}")
	assert.Equal(t, "it's fine", parsed["a"])
}

// ==========================
// Syntactic Malformations
// ==========================

func TestRepair_TrailingCommas(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "before brace", text: `{"a":1,}`, expected: `{"a":1}`},
		{name: "before bracket", text: `{"a":[1,2,],}`, expected: `{"a":[1,2]}`},
		{name: "with whitespace", text: "{\"a\":1 , \n}", expected: `{"a":1}`},
		{name: "comma inside string preserved", text: `{"a":"one,}","b":2,}`, expected: `{"a":"one,}","b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, parseJSON(t, tt.expected), mustRepair(t, tt.text))
		})
	}
}

func TestRepair_DoubledQuotes(t *testing.T) {
	parsed := mustRepair(t, `{"title": ""The Long Game""}`)
	assert.Equal(t, "The Long Game", parsed["title"])

	// Legitimate empty strings survive the collapse pass.
	parsed = mustRepair(t, `{"a":"","b":""}`)
	assert.Equal(t, "", parsed["a"])
	assert.Equal(t, "", parsed["b"])
}

func TestRepair_ControlCharactersInsideStrings(t *testing.T) {
	parsed := mustRepair(t, "{\"a\":\"line one\nline two\",\"b\":\"col\tumn\"}")
	assert.Equal(t, "line one\nline two", parsed["a"])
	assert.Equal(t, "col\tumn", parsed["b"])

	// A newline outside any string is plain whitespace and stays untouched.
	parsed = mustRepair(t, "{\n\"a\": 1\n}")
	assert.Equal(t, float64(1), parsed["a"])
}

// ==========================
// Truncation Recovery
// ==========================

func TestRepair_TruncatedDocuments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]interface{}
	}{
		{
			name: "cut inside string value",
			text: `{"a":1,"b":"partial tex`,
			want: map[string]interface{}{"a": float64(1), "b": "partial tex"},
		},
		{
			name: "cut inside nested array",
			text: `{"a":1,"list":["x","y`,
			want: map[string]interface{}{"a": float64(1), "list": []interface{}{"x", "y"}},
		},
		{
			name: "cut inside nested object",
			text: `{"a":1,"obj":{"x":2,"y":"z`,
			want: map[string]interface{}{"a": float64(1), "obj": map[string]interface{}{"x": float64(2), "y": "z"}},
		},
		{
			name: "cut after comma",
			text: `{"a":1,`,
			want: map[string]interface{}{"a": float64(1)},
		},
		{
			name: "cut mid key",
			text: `{"a":1,"nex`,
			want: map[string]interface{}{"a": float64(1)},
		},
		{
			name: "cut on dangling escape",
			text: `{"a":1,"b":"end\`,
			want: map[string]interface{}{"a": float64(1), "b": "end\\"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustRepair(t, tt.text))
		})
	}
}

func TestRepair_TruncationSweep(t *testing.T) {
	// Chop increasing tails off a realistic document; every cut that leaves
	// the first member intact must yield a parseable document whose surviving
	// fields match the original.
	full := `{"contentDepthScore":0.8,"learnings":["one","two"],"justification":"solid walkthrough"}`
	original := parseJSON(t, full)

	for n := 1; n <= 50; n++ {
		text := full[:len(full)-n]
		doc, err := Repair(text)
		if err != nil {
			continue // cuts that destroy every member are allowed to fail
		}

		var parsed map[string]interface{}
		require.NoError(t, json.Unmarshal(doc, &parsed), "cut %d produced invalid JSON: %s", n, doc)
		if depth, ok := parsed["contentDepthScore"]; ok {
			assert.Equal(t, original["contentDepthScore"], depth, "cut %d corrupted a surviving field", n)
		}
	}
}

// ==========================
// String-Aware Scanning
// ==========================

func TestRepair_BracesInsideStrings(t *testing.T) {
	// Closing braces and escaped quotes inside string values must not
	// terminate object isolation early.
	text := `{"a":"}}}","b":"quote \" and brace }","c":3} {"second":"object"}`
	parsed := mustRepair(t, text)
	assert.Equal(t, "}}}", parsed["a"])
	assert.Equal(t, `quote " and brace }`, parsed["b"])
	assert.Equal(t, float64(3), parsed["c"])
	assert.NotContains(t, parsed, "second", "only the first top-level object is isolated")
}

func TestRepair_ObjectEmbeddedInProseWithBraces(t *testing.T) {
	parsed := mustRepair(t, `The result {"a":"x{y}z"} as requested`)
	assert.Equal(t, "x{y}z", parsed["a"])
}

// ==========================
// Failure Paths
// ==========================

func TestRepair_Failure(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no object at all", text: "the model declined to answer"},
		{name: "empty input", text: ""},
		{name: "truncated bare literal with no complete member", text: `{"a": tru`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Repair(tt.text)
			require.Error(t, err)
			assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeRepairFailed))
		})
	}
}

func TestRepair_FailureCarriesBoundedPreview(t *testing.T) {
	long := "x"
	for len(long) < 1000 {
		long += long
	}
	_, err := Repair(long)
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	previewVal, ok := stdErr.Metadata["preview"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(previewVal), 200)
}
