package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worthcheck/internal/common/config"
	stderrors "worthcheck/internal/common/errors"
	"worthcheck/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.GatewayConfig{
		BaseURL:            server.URL,
		APIKey:             "test-key",
		Model:              "test-model",
		Timeout:            5000,
		MaxOutputTokens:    2048,
		ContinuationBudget: 512,
	}
	return NewClient(cfg, logger.NewTestLogger(t)), server
}

func truncatedEnvelope(id, partial string) *Envelope {
	return &Envelope{
		ID:                id,
		Status:            "incomplete",
		IncompleteDetails: &IncompleteDetails{Reason: "max_output_tokens"},
		Output: []OutputItem{
			{Type: "message", Content: []ContentPiece{{Type: "output_text", Text: partial}}},
		},
	}
}

// ==========================
// Truncation Detection Tests
// ==========================

func TestTruncated(t *testing.T) {
	tests := []struct {
		name     string
		env      *Envelope
		expected bool
	}{
		{name: "nil envelope", env: nil, expected: false},
		{name: "completed", env: &Envelope{Status: "completed"}, expected: false},
		{name: "incomplete status", env: &Envelope{Status: "incomplete"}, expected: true},
		{
			name:     "max output tokens reason",
			env:      &Envelope{Status: "completed", IncompleteDetails: &IncompleteDetails{Reason: "max_output_tokens"}},
			expected: true,
		},
		{
			name:     "legacy reason wording",
			env:      &Envelope{IncompleteDetails: &IncompleteDetails{Reason: "max output length reached"}},
			expected: true,
		},
		{
			name:     "unrelated incomplete reason",
			env:      &Envelope{Status: "completed", IncompleteDetails: &IncompleteDetails{Reason: "content_filter"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncated(tt.env))
		})
	}
}

// ==========================
// Coordinator Tests
// ==========================

func TestCoordinator_RecoverMergesPartialText(t *testing.T) {
	var gotReq ResponseRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		resp := Envelope{
			ID:         "resp_follow",
			Status:     "completed",
			OutputText: `0.7}`,
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	coord := NewCoordinator(client, logger.NewNoOpLogger())
	env := truncatedEnvelope("resp_orig", `{"contentDepthScore":`)

	text, err := coord.Recover(context.Background(), env, RequestContext{Budget: 512})
	require.NoError(t, err)
	assert.Equal(t, `{"contentDepthScore":0.7}`, text)

	// The follow-up must chain to the original generation with a reduced budget.
	assert.Equal(t, "resp_orig", gotReq.PreviousResponseID)
	assert.Equal(t, 512, gotReq.MaxOutputTokens)
}

func TestCoordinator_RecoverWithoutPartialText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{ID: "resp_follow", OutputText: `{"a":1}`})
	})

	coord := NewCoordinator(client, logger.NewNoOpLogger())
	env := &Envelope{ID: "resp_orig", Status: "incomplete"}

	text, err := coord.Recover(context.Background(), env, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}

func TestCoordinator_NotTruncated(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for non-truncated envelope")
	})

	coord := NewCoordinator(client, logger.NewNoOpLogger())
	_, err := coord.Recover(context.Background(), &Envelope{Status: "completed"}, RequestContext{})
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeExtractionFailed))
}

func TestCoordinator_NoGenerationID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a generation identifier")
	})

	coord := NewCoordinator(client, logger.NewNoOpLogger())
	_, err := coord.Recover(context.Background(), &Envelope{Status: "incomplete"}, RequestContext{})
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeContinuationExhausted))
}

func TestCoordinator_FollowUpEmpty(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(Envelope{ID: "resp_follow", Status: "completed"})
	})

	coord := NewCoordinator(client, logger.NewNoOpLogger())
	env := &Envelope{ID: "resp_orig", Status: "incomplete"}

	_, err := coord.Recover(context.Background(), env, RequestContext{})
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeContinuationExhausted))
	assert.Equal(t, 1, calls, "exactly one continuation attempt is made")
}

// ==========================
// Client Transport Tests
// ==========================

func TestClient_CreateResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ResponseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 2048, req.MaxOutputTokens)
		assert.Empty(t, req.PreviousResponseID)

		_ = json.NewEncoder(w).Encode(Envelope{ID: "resp_1", Status: "completed", OutputText: "{}"})
	})

	env, err := client.CreateResponse(context.Background(), "analyze this")
	require.NoError(t, err)
	assert.Equal(t, "resp_1", env.ID)
}

func TestClient_NonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.CreateResponse(context.Background(), "analyze this")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeGatewayRequestFailed))
	assert.True(t, stderrors.IsRetryable(err))
}

func TestClient_EnvelopeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{
			Error: &EnvelopeError{Type: "invalid_request_error", Message: "bad model"},
		})
	})

	_, err := client.CreateResponse(context.Background(), "analyze this")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeGatewayRequestFailed))
}
