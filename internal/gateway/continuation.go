// internal/gateway/continuation.go
package gateway

import (
	"context"
	"strings"

	stderrors "worthcheck/internal/common/errors"
	"worthcheck/internal/common/logger"
	"worthcheck/internal/common/metrics"
)

// Incomplete reasons that indicate the generation was cut off by an
// output-length limit rather than by content policy or an upstream fault.
func isLengthCapped(reason string) bool {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case "max_output_tokens", "max output length reached", "length":
		return true
	default:
		return false
	}
}

// Truncated reports whether the envelope indicates the generation stopped
// because of an output-length limit.
func Truncated(env *Envelope) bool {
	if env == nil {
		return false
	}
	if strings.EqualFold(env.Status, "incomplete") {
		return true
	}
	return env.IncompleteDetails != nil && isLengthCapped(env.IncompleteDetails.Reason)
}

// Coordinator recovers text from truncated generations. It issues at most one
// follow-up request chained to the same generation context; a second failure
// is terminal for the analysis.
type Coordinator struct {
	client *Client
	logger logger.Logger
}

func NewCoordinator(client *Client, log logger.Logger) *Coordinator {
	return &Coordinator{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "continuation"}),
	}
}

// Recover is invoked when extraction on the original envelope failed or
// yielded suspiciously empty content. It returns the text extracted from the
// follow-up envelope, or an error when the envelope was not truncated, no
// generation identifier is available, or the follow-up also yields nothing.
func (c *Coordinator) Recover(ctx context.Context, env *Envelope, reqCtx RequestContext) (string, error) {
	if !Truncated(env) {
		return "", stderrors.NewExtractionFailedError("envelope not truncated; nothing to continue")
	}

	if reqCtx.GenerationID == "" && env != nil {
		reqCtx.GenerationID = env.ID
	}
	if reqCtx.GenerationID == "" {
		return "", stderrors.NewContinuationExhaustedError("no generation identifier available")
	}

	c.logger.Info("generation truncated, issuing continuation", map[string]interface{}{
		"generationId": reqCtx.GenerationID,
		"budget":       reqCtx.Budget,
	})

	followUp, err := c.client.ContinueResponse(ctx, reqCtx)
	if err != nil {
		metrics.ContinuationAttempts.WithLabelValues("failed").Inc()
		return "", err
	}

	text, err := Extract(followUp)
	if err != nil {
		metrics.ContinuationAttempts.WithLabelValues("failed").Inc()
		return "", stderrors.NewContinuationExhaustedError("follow-up envelope contained no usable text")
	}

	metrics.ContinuationAttempts.WithLabelValues("recovered").Inc()

	// The follow-up continues the truncated document mid-stream; whatever
	// partial text the original envelope held belongs in front of it.
	if partial, err := Extract(env); err == nil {
		return partial + text, nil
	}
	return text, nil
}
