// internal/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"worthcheck/internal/common/config"
	stderrors "worthcheck/internal/common/errors"
	commonhttp "worthcheck/internal/common/http"
	"worthcheck/internal/common/logger"
	"worthcheck/internal/common/metrics"
)

const responsesPath = "/v1/responses"

// maxErrorBodyBytes bounds how much of an upstream error body is kept for logs.
const maxErrorBodyBytes = 512

// Client talks to the Responses-style LLM gateway. It performs no retries of
// its own; the only follow-up traffic is the single continuation round-trip
// issued by the Coordinator.
type Client struct {
	config *config.GatewayConfig
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(cfg *config.GatewayConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		http:   commonhttp.NewClient(cfg.GetTimeout()),
		logger: log.WithFields(map[string]interface{}{"component": "gateway"}),
	}
}

// CreateResponse issues the initial generation request.
func (c *Client) CreateResponse(ctx context.Context, input string) (*Envelope, error) {
	req := ResponseRequest{
		Model:           c.config.Model,
		Input:           input,
		MaxOutputTokens: c.config.MaxOutputTokens,
	}
	return c.send(ctx, req, "initial")
}

// ContinueResponse issues the single follow-up request chained to a prior
// generation, with a fresh, smaller output budget so the model continues
// rather than restarts.
func (c *Client) ContinueResponse(ctx context.Context, reqCtx RequestContext) (*Envelope, error) {
	budget := reqCtx.Budget
	if budget <= 0 {
		budget = c.config.ContinuationBudget
	}
	model := reqCtx.Model
	if model == "" {
		model = c.config.Model
	}
	req := ResponseRequest{
		Model:              model,
		Input:              "Continue exactly where you left off.",
		MaxOutputTokens:    budget,
		PreviousResponseID: reqCtx.GenerationID,
	}
	return c.send(ctx, req, "continuation")
}

func (c *Client) send(ctx context.Context, reqBody ResponseRequest, kind string) (*Envelope, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, stderrors.NewGatewayRequestFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+responsesPath, bytes.NewReader(body))
	if err != nil {
		return nil, stderrors.NewGatewayRequestFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GatewayLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewGatewayTimeoutError()
		}
		return nil, stderrors.NewGatewayRequestFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("gateway returned non-OK status", map[string]interface{}{
			"status": resp.StatusCode,
			"kind":   kind,
			"body":   string(snippet),
		})
		return nil, stderrors.NewGatewayRequestFailedError(
			fmt.Errorf("gateway status %d: %s", resp.StatusCode, string(snippet)))
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, stderrors.NewGatewayRequestFailedError(fmt.Errorf("decode envelope: %w", err))
	}
	if env.Error != nil {
		return nil, stderrors.NewGatewayRequestFailedError(
			fmt.Errorf("gateway error %s: %s", env.Error.Type, env.Error.Message))
	}
	return &env, nil
}
