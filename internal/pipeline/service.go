// internal/pipeline/service.go
//
// Package pipeline orchestrates one full analysis: prompt the gateway,
// extract and repair the model's JSON, validate it, blend it with audience
// metadata, and synthesize the verdict. Each stage either produces the next
// stage's input or a StandardError that ends the run.
package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"worthcheck/internal/analysis"
	"worthcheck/internal/cache"
	stderrors "worthcheck/internal/common/errors"
	"worthcheck/internal/common/logger"
	"worthcheck/internal/common/metrics"
	"worthcheck/internal/common/observability"
	"worthcheck/internal/gateway"
	"worthcheck/internal/repair"
	"worthcheck/internal/scoring"
)

// Report is the pipeline's final product for one video.
type Report struct {
	VideoID     string            `json:"videoId"`
	Signals     analysis.Signals  `json:"signals"`
	Breakdown   scoring.Breakdown `json:"breakdown"`
	Decision    scoring.Decision  `json:"decision"`
	Cached      bool              `json:"cached,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Service runs analyses end to end.
type Service struct {
	gateway      *gateway.Client
	continuation *gateway.Coordinator
	cache        *cache.Results
	obs          *observability.Observability
	logger       logger.Logger
	budget       int
}

func NewService(
	gw *gateway.Client,
	coord *gateway.Coordinator,
	results *cache.Results,
	obs *observability.Observability,
	log logger.Logger,
	continuationBudget int,
) *Service {
	return &Service{
		gateway:      gw,
		continuation: coord,
		cache:        results,
		obs:          obs,
		logger:       log.WithFields(map[string]interface{}{"component": "pipeline"}),
		budget:       continuationBudget,
	}
}

// Analyze produces a report for the request, serving a cached report when one
// exists for the video.
func (s *Service) Analyze(ctx context.Context, req *Request) (*Report, error) {
	if payload, ok := s.cache.Get(ctx, req.VideoID); ok {
		var report Report
		if err := json.Unmarshal(payload, &report); err == nil {
			report.Cached = true
			return &report, nil
		}
		s.logger.Warn("discarding unreadable cached report", map[string]interface{}{
			"videoId": req.VideoID,
		})
	}

	start := time.Now()
	report, err := s.run(ctx, req)
	elapsed := time.Since(start)
	metrics.AnalysisDuration.Observe(elapsed.Seconds())

	if err != nil {
		code := stderrors.CodeOf(err)
		if code == "" {
			code = "UNKNOWN"
		}
		metrics.AnalysesFailed.WithLabelValues(string(code)).Inc()
		s.obs.RecordAnalysis(ctx, "failed")
		s.obs.RecordAnalysisDuration(ctx, elapsed, "failed")
		s.logger.WithError(err).Error("analysis failed", map[string]interface{}{
			"videoId":   req.VideoID,
			"errorCode": string(code),
		})
		return nil, err
	}

	metrics.AnalysesCompleted.Inc()
	s.obs.RecordAnalysis(ctx, "success")
	s.obs.RecordAnalysisDuration(ctx, elapsed, "success")

	if payload, err := json.Marshal(report); err == nil {
		s.cache.Put(ctx, req.VideoID, payload)
	}

	return report, nil
}

func (s *Service) run(ctx context.Context, req *Request) (*Report, error) {
	env, err := s.gateway.CreateResponse(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}

	text, err := s.resolveText(ctx, env)
	if err != nil {
		return nil, err
	}

	outcome := "repaired"
	if json.Valid([]byte(strings.TrimSpace(text))) {
		outcome = "clean"
	}
	doc, err := repair.Repair(text)
	if err != nil {
		metrics.RepairOutcomes.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.RepairOutcomes.WithLabelValues(outcome).Inc()

	sig, err := analysis.Decode(doc)
	if err != nil {
		return nil, err
	}

	meta := analysis.Metadata{
		CommentCount: req.CommentCount,
		SpamFraction: req.SpamFraction,
		ThinSource:   req.ThinSource(),
	}

	breakdown := scoring.Blend(*sig, meta)
	decision := scoring.Decide(breakdown, *sig, meta)

	s.logger.Info("analysis completed", map[string]interface{}{
		"videoId": req.VideoID,
		"score":   breakdown.Score,
		"verdict": string(decision.Verdict),
	})

	return &Report{
		VideoID:     req.VideoID,
		Signals:     *sig,
		Breakdown:   breakdown,
		Decision:    decision,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// resolveText turns the envelope into the document text to repair. Truncated
// generations go through the continuation coordinator; if that fails but the
// original envelope still holds partial text, the partial text is repaired
// as-is rather than failing the run outright.
func (s *Service) resolveText(ctx context.Context, env *gateway.Envelope) (string, error) {
	if !gateway.Truncated(env) {
		return gateway.Extract(env)
	}

	reqCtx := gateway.RequestContext{GenerationID: env.ID, Budget: s.budget}
	text, err := s.continuation.Recover(ctx, env, reqCtx)
	if err == nil {
		return text, nil
	}

	if partial, extractErr := gateway.Extract(env); extractErr == nil && strings.TrimSpace(partial) != "" {
		s.logger.WithError(err).Warn("continuation failed, repairing partial text", map[string]interface{}{
			"generationId": env.ID,
		})
		return partial, nil
	}
	return "", err
}
