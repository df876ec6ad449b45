// internal/analysis/models.go
package analysis

// Signals is the typed record recovered from the model's JSON document.
// Immutable once decoded; absent scores stay nil so the blender can apply its
// own conservative defaults.
type Signals struct {
	ContentDepthScore     *float64 `json:"contentDepthScore,omitempty"`
	CommentSentimentScore *float64 `json:"overallCommentSentimentScore,omitempty"`
	Verdict               string   `json:"verdict,omitempty"`
	Justification         string   `json:"justification,omitempty"`
	HighlightedMoment     string   `json:"highlightedMoment,omitempty"`
	Learnings             []string `json:"learnings,omitempty"`
	Reasons               []string `json:"reasons,omitempty"`
	Highlights            []string `json:"highlights,omitempty"`
	WatchOuts             []string `json:"watchOuts,omitempty"`
}

// Metadata carries corroborating facts not produced by the model: how many
// audience comments were actually analyzed, the estimated spam fraction in
// that sample, and whether the underlying source material was itself thin.
type Metadata struct {
	CommentCount int      `json:"commentCount"`
	SpamFraction *float64 `json:"spamFraction,omitempty"`
	ThinSource   bool     `json:"thinSource"`
}

// Spam returns the spam fraction, or zero when the collaborator supplied none.
func (m Metadata) Spam() float64 {
	if m.SpamFraction == nil {
		return 0
	}
	return *m.SpamFraction
}
