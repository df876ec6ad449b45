// internal/gateway/models.go
package gateway

import "encoding/json"

// Envelope is the outer response structure returned by the LLM gateway, as
// opposed to the JSON document the model was asked to produce inside it.
type Envelope struct {
	ID                string             `json:"id,omitempty"`
	Status            string             `json:"status,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	OutputText        string             `json:"output_text,omitempty"`
	Output            []OutputItem       `json:"output,omitempty"`
	Error             *EnvelopeError     `json:"error,omitempty"`
}

type IncompleteDetails struct {
	Reason string `json:"reason,omitempty"`
}

type EnvelopeError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

type OutputItem struct {
	Type    string         `json:"type,omitempty"`
	Content []ContentPiece `json:"content,omitempty"`
}

// ContentPiece is one entry of an output item's content list. Upstream shapes
// vary: a piece may be a bare string, an object whose "text" field is a plain
// string, or an object whose "text" field is itself an object with a "value"
// field. All three decode into the same flat form.
type ContentPiece struct {
	Type string
	Text string
}

func (p *ContentPiece) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		p.Text = plain
		return nil
	}

	var raw struct {
		Type string          `json:"type"`
		Text json.RawMessage `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Type = raw.Type

	if len(raw.Text) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Text, &s); err == nil {
		p.Text = s
		return nil
	}
	var nested struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw.Text, &nested); err == nil {
		p.Text = nested.Value
	}
	return nil
}

func (p ContentPiece) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type,omitempty"`
		Text string `json:"text,omitempty"`
	}{Type: p.Type, Text: p.Text})
}

// ResponseRequest is the body of a generation request to the gateway.
type ResponseRequest struct {
	Model              string `json:"model"`
	Input              string `json:"input"`
	MaxOutputTokens    int    `json:"max_output_tokens,omitempty"`
	PreviousResponseID string `json:"previous_response_id,omitempty"`
}

// RequestContext carries per-call generation state through the pipeline. The
// generation identifier lives here rather than in process-wide state so that
// concurrent analyses never cross-contaminate continuation targets.
type RequestContext struct {
	GenerationID string
	Model        string
	Budget       int // output-token budget for the single continuation
}
