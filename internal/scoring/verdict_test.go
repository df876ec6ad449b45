package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"worthcheck/internal/analysis"
)

func TestVerdictFor_Boundaries(t *testing.T) {
	cases := []struct {
		score   float64
		verdict Verdict
	}{
		{100, VerdictWorthIt},
		{70, VerdictWorthIt},
		{69.9, VerdictBorderline},
		{60, VerdictBorderline},
		{45.1, VerdictBorderline},
		{45, VerdictSkip},
		{0, VerdictSkip},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.verdict, VerdictFor(tc.score), "score=%v", tc.score)
	}
}

func TestDecide_ModelJustificationWins(t *testing.T) {
	d := Decide(
		Breakdown{Score: 80, Depth: 0.8, Sentiment: 0.8},
		analysis.Signals{Justification: "  Dense tutorial with a rare hands-on demo.  "},
		analysis.Metadata{CommentCount: 20},
	)

	assert.Equal(t, VerdictWorthIt, d.Verdict)
	assert.Equal(t, "Dense tutorial with a rare hands-on demo.", d.Justification)
}

func TestDecide_ModelJustificationRejected(t *testing.T) {
	tooLong := strings.Repeat("x", 91)
	cases := map[string]string{
		"empty":      "",
		"whitespace": "   ",
		"too long":   tooLong,
		"multiline":  "line one\nline two",
	}
	for name, j := range cases {
		d := Decide(
			Breakdown{Score: 80, Depth: 0.8, Sentiment: 0.8},
			analysis.Signals{Justification: j},
			analysis.Metadata{CommentCount: 20},
		)
		assert.NotEqual(t, j, d.Justification, name)
		assert.NotEmpty(t, d.Justification, name)
	}
}

func TestDecide_SevereSpamRule(t *testing.T) {
	spam := 0.6
	d := Decide(
		Breakdown{Score: 50, Depth: 0.6, Sentiment: 0.6},
		analysis.Signals{},
		analysis.Metadata{CommentCount: 40, SpamFraction: &spam},
	)

	assert.Contains(t, d.Justification, "spam")
}

func TestDecide_NoCommentsRule(t *testing.T) {
	d := Decide(
		Breakdown{Score: 55, Depth: 0.6, Sentiment: 0},
		analysis.Signals{},
		analysis.Metadata{CommentCount: 0},
	)

	assert.Contains(t, d.Justification, "content alone")
}

func TestDecide_BandTable(t *testing.T) {
	cases := []struct {
		depth, sentiment float64
	}{
		{0.1, 0.1}, {0.1, 0.5}, {0.1, 0.9},
		{0.5, 0.1}, {0.5, 0.5}, {0.5, 0.9},
		{0.9, 0.1}, {0.9, 0.5}, {0.9, 0.9},
	}
	seen := make(map[string]bool)
	for _, tc := range cases {
		d := Decide(
			Breakdown{Score: 50, Depth: tc.depth, Sentiment: tc.sentiment},
			analysis.Signals{},
			analysis.Metadata{CommentCount: 10},
		)
		assert.NotEmpty(t, d.Justification)
		assert.LessOrEqual(t, len(d.Justification), maxModelJustification)
		assert.False(t, seen[d.Justification], "duplicate message for %+v", tc)
		seen[d.Justification] = true
	}
}

func TestDecide_ChipsDeduplicated(t *testing.T) {
	d := Decide(
		Breakdown{Score: 75, Depth: 0.8, Sentiment: 0.8},
		analysis.Signals{Reasons: []string{"Clear structure", "clear structure", "Good examples"}},
		analysis.Metadata{CommentCount: 20},
	)

	assert.Equal(t, []string{"Clear structure", "Good examples"}, d.Chips)
}
