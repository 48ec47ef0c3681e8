package analysis

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"process_mate/internal/domain"
	errs "process_mate/internal/errors"
)

// AnalysisProvider is the analysis collaborator. Payloads it returns are
// opaque display data.
type AnalysisProvider interface {
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.Payload, error)
	EngineAnalysis(ctx context.Context, req domain.EngineAnalysisRequest) (domain.Payload, error)
}

// AnalysisUseCase dispatches analysis requests and suppresses stale
// responses: navigation can fire a new request before the previous one
// resolved, and only the result of the most recently issued request may
// reach the display. Cancellation is advisory, a stale response is simply
// discarded on arrival.
type AnalysisUseCase struct {
	provider AnalysisProvider
	log      *zap.SugaredLogger

	mu        sync.Mutex
	issued    map[string]uint64
	completed map[string]uint64
}

func NewAnalysisUseCase(provider AnalysisProvider, log *zap.SugaredLogger) *AnalysisUseCase {
	return &AnalysisUseCase{
		provider:  provider,
		log:       log,
		issued:    make(map[string]uint64),
		completed: make(map[string]uint64),
	}
}

// AnalyzeSelection requests analysis for the selection of one game. When a
// response arrives after a newer request already completed it is dropped
// with ErrStaleAnalysis; callers treat that as "show nothing new", never as
// a user-visible failure.
func (a *AnalysisUseCase) AnalyzeSelection(ctx context.Context, gameKey, fen, san string) (domain.Result, error) {
	ticket := a.begin(gameKey)

	payload, err := a.provider.Analyze(ctx, domain.AnalyzeRequest{FEN: fen, Move: san})
	if err != nil {
		return domain.Result{}, err
	}

	if !a.accept(gameKey, ticket) {
		a.log.Debugf("game %s: discarding analysis ticket %d", gameKey, ticket)
		return domain.Result{}, errs.ErrStaleAnalysis
	}

	return domain.Result{
		GameKey: gameKey,
		Ticket:  ticket,
		FEN:     fen,
		SAN:     san,
		Payload: payload,
	}, nil
}

// Analyze is the direct request/response path, no suppression involved.
func (a *AnalysisUseCase) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.Payload, error) {
	return a.provider.Analyze(ctx, req)
}

// EngineAnalysis is the direct engine path, no suppression involved.
func (a *AnalysisUseCase) EngineAnalysis(ctx context.Context, req domain.EngineAnalysisRequest) (domain.Payload, error) {
	return a.provider.EngineAnalysis(ctx, req)
}

// Forget drops the ticket counters of a closed game.
func (a *AnalysisUseCase) Forget(gameKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.issued, gameKey)
	delete(a.completed, gameKey)
}

func (a *AnalysisUseCase) begin(gameKey string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issued[gameKey]++
	return a.issued[gameKey]
}

func (a *AnalysisUseCase) accept(gameKey string, ticket uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ticket < a.completed[gameKey] {
		return false
	}
	a.completed[gameKey] = ticket
	return true
}
