// internal/pipeline/prompt.go
package pipeline

import (
	"fmt"
	"strings"
)

// maxPromptComments bounds how many sampled comments are inlined into the
// prompt; the full count still reaches the blender through metadata.
const maxPromptComments = 40

// thinTranscriptChars marks a transcript as thin source material when it is
// too short to support a meaningful depth estimate.
const thinTranscriptChars = 600

// Request carries everything the pipeline needs to analyze one video.
type Request struct {
	VideoID      string   `json:"videoId"`
	Title        string   `json:"title"`
	Channel      string   `json:"channel,omitempty"`
	Transcript   string   `json:"transcript"`
	Comments     []string `json:"comments,omitempty"`
	CommentCount int      `json:"commentCount"`
	SpamFraction *float64 `json:"spamFraction,omitempty"`
}

// ThinSource reports whether the transcript is too short to be a reliable
// basis for the content-depth estimate.
func (r *Request) ThinSource() bool {
	return len(strings.TrimSpace(r.Transcript)) < thinTranscriptChars
}

func buildPrompt(req *Request) string {
	var parts []string

	parts = append(parts, "You are a video quality analyst. Judge whether this video is worth a viewer's time based ONLY on the provided transcript and audience comments.")
	parts = append(parts, fmt.Sprintf("\nVideo Title: %s", req.Title))
	if req.Channel != "" {
		parts = append(parts, fmt.Sprintf("Channel: %s", req.Channel))
	}

	parts = append(parts, "\nTranscript:")
	if strings.TrimSpace(req.Transcript) == "" {
		parts = append(parts, "(no transcript available)")
	} else {
		parts = append(parts, req.Transcript)
	}

	if len(req.Comments) > 0 {
		parts = append(parts, fmt.Sprintf("\nAudience Comments (%d total, sample below):", req.CommentCount))
		sample := req.Comments
		if len(sample) > maxPromptComments {
			sample = sample[:maxPromptComments]
		}
		for _, c := range sample {
			parts = append(parts, fmt.Sprintf("- %s", c))
		}
	} else {
		parts = append(parts, "\nAudience Comments: none available")
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Respond with a single JSON object and nothing else")
	parts = append(parts, "- contentDepthScore: number 0.0-1.0, substance of the transcript")
	parts = append(parts, "- overallCommentSentimentScore: number 0.0-1.0, audience sentiment")
	parts = append(parts, "- justification: one sentence, at most 90 characters")
	parts = append(parts, "- highlights: short strings naming the strongest moments")
	parts = append(parts, "- watchOuts: short strings naming caveats or padding")
	parts = append(parts, "- reasons: short phrases supporting the judgment")
	parts = append(parts, "- Omit any score you cannot estimate from the material")

	parts = append(parts, "\nJSON:")

	return strings.Join(parts, "\n")
}
