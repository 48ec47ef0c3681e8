package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"process_mate/internal/bootstrap"
	"process_mate/internal/domain"
)

// AnalysisRepository talks to the analyzer and engine services over HTTP.
// Their payloads are passed through untouched; only transport errors are
// interpreted here.
type AnalysisRepository struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	client *http.Client
}

func NewAnalysisRepository(cfg bootstrap.Config, log *zap.SugaredLogger) *AnalysisRepository {
	return &AnalysisRepository{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Analyze requests the thought-process breakdown for a position and the
// selected move.
func (a *AnalysisRepository) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.Payload, error) {
	return a.post(ctx, a.cfg.AnalyzerUrl+"/api/analyze", req)
}

// EngineAnalysis requests raw engine analysis for a position.
func (a *AnalysisRepository) EngineAnalysis(ctx context.Context, req domain.EngineAnalysisRequest) (domain.Payload, error) {
	if req.Depth == 0 {
		req.Depth = a.cfg.EngineDepth
	}
	return a.post(ctx, a.cfg.EngineUrl+"/api/engine-analysis", req)
}

func (a *AnalysisRepository) post(ctx context.Context, url string, body any) (domain.Payload, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.log.Errorf("analysis request to %s failed: %v", url, err)
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		a.log.Errorf("analysis service %s returned %d: %s", url, resp.StatusCode, payload)
		return nil, fmt.Errorf("analysis service returned %d", resp.StatusCode)
	}

	if !json.Valid(payload) {
		return nil, fmt.Errorf("analysis service returned malformed JSON")
	}
	return domain.Payload(payload), nil
}
