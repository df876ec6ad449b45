// internal/scoring/verdict.go
package scoring

import (
	"strings"

	"worthcheck/internal/analysis"
)

// Verdict is the categorical recommendation derived from the blended score.
type Verdict string

const (
	VerdictWorthIt    Verdict = "worth_it"
	VerdictSkip       Verdict = "skip"
	VerdictBorderline Verdict = "borderline"
)

const (
	worthItThreshold = 70.0
	skipThreshold    = 45.0

	maxModelJustification = 90
)

// Decision pairs the verdict with a one-line justification and a small set
// of supporting chips for display.
type Decision struct {
	Verdict       Verdict  `json:"verdict"`
	Justification string   `json:"justification"`
	Chips         []string `json:"chips,omitempty"`
}

// VerdictFor maps the 0-100 score onto the three categories. Boundary values
// belong to the outer categories.
func VerdictFor(score float64) Verdict {
	switch {
	case score >= worthItThreshold:
		return VerdictWorthIt
	case score <= skipThreshold:
		return VerdictSkip
	default:
		return VerdictBorderline
	}
}

// Decide synthesizes the user-facing decision from the blended breakdown and
// the original signals. A usable model-written justification wins over the
// rule table; the rules below it are evaluated top to bottom, first match.
func Decide(b Breakdown, sig analysis.Signals, meta analysis.Metadata) Decision {
	d := Decision{
		Verdict: VerdictFor(b.Score),
		Chips:   dedupe(sig.Reasons),
	}

	if j, ok := usableJustification(sig.Justification); ok {
		d.Justification = j
		return d
	}

	switch {
	case meta.Spam() > severeSpamThreshold:
		d.Justification = "Audience reaction heavily discounted for spam; judged mainly on content."
	case meta.CommentCount == 0:
		d.Justification = "No audience reaction available; judged on content alone."
	default:
		d.Justification = bandJustification(b.Depth, b.Sentiment)
	}
	return d
}

// usableJustification accepts a model-written justification only when it is
// non-empty, a single line, and short enough to display unclipped.
func usableJustification(raw string) (string, bool) {
	j := strings.TrimSpace(raw)
	if j == "" || len(j) > maxModelJustification || strings.ContainsAny(j, "\n\r") {
		return "", false
	}
	return j, true
}

type band int

const (
	bandLow band = iota
	bandMid
	bandHigh
)

func bandOf(v float64) band {
	switch {
	case v < 0.4:
		return bandLow
	case v < 0.7:
		return bandMid
	default:
		return bandHigh
	}
}

// bandJustification covers the nine depth x sentiment combinations.
func bandJustification(depth, sentiment float64) string {
	table := [3][3]string{
		bandLow: {
			bandLow:  "Shallow content and a cool audience reception.",
			bandMid:  "Thin content despite a lukewarm audience response.",
			bandHigh: "Viewers enjoyed it, but the content itself runs shallow.",
		},
		bandMid: {
			bandLow:  "Reasonable substance, but viewers were unimpressed.",
			bandMid:  "Middling substance with a mixed audience response.",
			bandHigh: "Viewers responded well to moderately substantive content.",
		},
		bandHigh: {
			bandLow:  "Substantive content that failed to land with viewers.",
			bandMid:  "Strong substance with a tepid audience response.",
			bandHigh: "Strong substance and an enthusiastic audience agree.",
		},
	}
	return table[bandOf(depth)][bandOf(sentiment)]
}
