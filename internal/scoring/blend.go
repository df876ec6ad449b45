// internal/scoring/blend.go
//
// Package scoring blends model-derived content signals with audience-reaction
// metadata into a single bounded value score, and derives the categorical
// verdict shown to users. Both entry points are total pure functions: absent
// inputs degrade to conservative defaults, never to errors.
package scoring

import (
	"math"
	"strings"

	"worthcheck/internal/analysis"
)

// Breakdown is the blender's output: the normalized components, the weights
// actually used, and the final bounded score on a 0-100 display scale with
// one decimal of precision. Recomputed from scratch per input pair.
type Breakdown struct {
	Depth         float64  `json:"depth"`
	Sentiment     float64  `json:"sentiment"`
	DepthWeight   float64  `json:"depthWeight"`
	CommentWeight float64  `json:"commentWeight"`
	SpamPenalty   float64  `json:"spamPenalty"`
	Score         float64  `json:"score"`
	Highlights    []string `json:"highlights,omitempty"`
	WatchOuts     []string `json:"watchOuts,omitempty"`
}

const (
	// Depth defaults when the model supplied no estimate. Thin source
	// material earns the lower default.
	defaultDepth     = 0.5
	defaultDepthThin = 0.35

	// The comment weight ramps from 0 to maxCommentWeight as the analyzed
	// count rises to fullWeightComments.
	maxCommentWeight   = 0.4
	fullWeightComments = 30

	moderateSpamThreshold = 0.25
	severeSpamThreshold   = 0.4
	spamPenaltyFloor      = 0.5

	synergyThreshold   = 0.78
	synergyMinComments = 12
	synergyMinPenalty  = 0.9

	scoreCeiling = 0.98
)

// Blend combines the model's content-depth and audience-sentiment estimates
// with corroborating metadata into one bounded score.
func Blend(sig analysis.Signals, meta analysis.Metadata) Breakdown {
	depth := normalizeDepth(sig.ContentDepthScore, meta.ThinSource)
	sentiment := normalizeScore(sig.CommentSentimentScore)
	spam := clamp01(meta.Spam())
	count := meta.CommentCount
	if count < 0 {
		count = 0
	}

	commentWeight := commentWeightFor(count, spam)
	depthWeight := math.Max(0.3, 1-commentWeight)
	penalty := spamPenaltyFor(spam)

	score := depth*depthWeight + sentiment*penalty*commentWeight

	// Stretch the top band apart and flatten the over-crowded middle.
	if score > 0.7 {
		score = math.Min(scoreCeiling, 0.7+(score-0.7)*1.25)
	} else if score >= 0.55 {
		score = 0.55 + (score-0.55)*0.9
	}

	score = applyEvidenceCaps(score, depth, sentiment, count)

	// Synergy boost: strong content corroborated by a strong, clean,
	// sufficiently large audience reaction.
	if depth > synergyThreshold && sentiment > synergyThreshold &&
		count >= synergyMinComments && penalty >= synergyMinPenalty {
		boost := 0.35 * ((depth+sentiment)/2 - synergyThreshold)
		score = math.Min(scoreCeiling, score+boost)
	}

	// Uncertainty tempering: reduced confidence, not reduced quality.
	if count > 0 && count < 8 {
		score *= 0.97
	}
	if penalty < 1.0 {
		score *= 0.97
	}

	return Breakdown{
		Depth:         depth,
		Sentiment:     sentiment,
		DepthWeight:   depthWeight,
		CommentWeight: commentWeight,
		SpamPenalty:   penalty,
		Score:         math.Round(clamp01(score)*1000) / 10,
		Highlights:    dedupe(sig.Highlights),
		WatchOuts:     dedupe(sig.WatchOuts),
	}
}

func normalizeDepth(depth *float64, thinSource bool) float64 {
	if depth == nil {
		if thinSource {
			return defaultDepthThin
		}
		return defaultDepth
	}
	return clamp01(*depth)
}

func normalizeScore(v *float64) float64 {
	if v == nil {
		return 0
	}
	return clamp01(*v)
}

// commentWeightFor ramps smoothly with sample size, then discounts the whole
// weight when the sample itself is polluted.
func commentWeightFor(count int, spam float64) float64 {
	w := maxCommentWeight * math.Min(1, float64(count)/fullWeightComments)
	switch {
	case spam > severeSpamThreshold:
		w *= 0.5
	case spam > moderateSpamThreshold:
		w *= 0.75
	}
	return w
}

// spamPenaltyFor scales the sentiment value: no penalty below 0.25 spam,
// linear down to the 0.5 floor between 0.25 and 0.5, flat floor above.
func spamPenaltyFor(spam float64) float64 {
	switch {
	case spam < moderateSpamThreshold:
		return 1.0
	case spam >= 0.5:
		return spamPenaltyFloor
	default:
		return 1.0 - (spam-moderateSpamThreshold)/(0.5-moderateSpamThreshold)*(1.0-spamPenaltyFloor)
	}
}

// applyEvidenceCaps bounds the score when the underlying evidence is weak.
func applyEvidenceCaps(score, depth, sentiment float64, count int) float64 {
	switch {
	case depth < 0.25 && sentiment < 0.30:
		score = math.Min(score, 0.55)
	case depth < 0.25:
		score = math.Min(score, 0.60)
	case depth < 0.40:
		if count >= 15 && sentiment >= synergyThreshold {
			score = math.Min(score, 0.72)
		} else {
			score = math.Min(score, 0.65)
		}
	}
	if sentiment < 0.30 && count >= 1 {
		score = math.Min(score, 0.70)
	}
	return score
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// dedupe removes duplicates case-insensitively while preserving first-seen
// order and original casing.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
