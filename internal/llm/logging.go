package llm

import (
	"context"
	"log/slog"
	"time"
)

// RequestRecord describes one completed LLM request for the run log.
type RequestRecord struct {
	Model        string
	Purpose      string
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
	Success      bool
	ErrorMessage string
	CostUSD      float64
}

// RequestRecorder persists request records. Implemented by the sqlite
// run log in internal/store.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, rec RequestRecord) error
}

// LoggingProvider is a decorator that records every LLM request.
type LoggingProvider struct {
	inner    Provider
	recorder RequestRecorder
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, rec RequestRecorder) Provider {
	return &LoggingProvider{inner: p, recorder: rec}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	rec := RequestRecord{
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		rec.Model = resp.Model
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		if cost := LookupCost(rec.Model); cost != nil {
			rec.CostUSD = cost.Cost(rec.InputTokens, rec.OutputTokens)
		}
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}

	// Log the record but don't fail the request if logging fails.
	if logErr := l.recorder.RecordRequest(ctx, rec); logErr != nil {
		slog.Warn("failed to record LLM request", "error", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
