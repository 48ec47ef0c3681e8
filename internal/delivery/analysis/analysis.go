package analysis

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"process_mate/internal/domain"
	"process_mate/internal/pgn"
	analysisuc "process_mate/internal/usecase/analysis"
)

type AnalysisHandler struct {
	log        *zap.SugaredLogger
	analysisUC *analysisuc.AnalysisUseCase
}

func NewAnalysisHandler(log *zap.SugaredLogger, analysisUC *analysisuc.AnalysisUseCase) *AnalysisHandler {
	return &AnalysisHandler{
		log:        log,
		analysisUC: analysisUC,
	}
}

func (a *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(a.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	payload, err := a.analysisUC.Analyze(r.Context(), req)
	if err != nil {
		a.log.Errorf("analyze failed: %v", err)
		writeJSONError(a.log, w, http.StatusBadGateway, "Analysis service unavailable")
		return
	}

	writeRawJSON(a.log, w, payload)
}

func (a *AnalysisHandler) HandleEngineAnalysis(w http.ResponseWriter, r *http.Request) {
	var req domain.EngineAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(a.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	payload, err := a.analysisUC.EngineAnalysis(r.Context(), req)
	if err != nil {
		a.log.Errorf("engine analysis failed: %v", err)
		writeJSONError(a.log, w, http.StatusBadGateway, "Engine service unavailable")
		return
	}

	writeRawJSON(a.log, w, payload)
}

type validatePgnRequest struct {
	PGN string `json:"pgn"`
}

type validatePgnResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Headers map[string]string  `json:"headers,omitempty"`
	Moves   []pgn.ImportedMove `json:"moves,omitempty"`
	FEN     string             `json:"fen,omitempty"`
}

// HandleValidatePgn parses a PGN without opening a session; a parse failure
// is a valid negative answer, not an HTTP error.
func (a *AnalysisHandler) HandleValidatePgn(w http.ResponseWriter, r *http.Request) {
	var req validatePgnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(a.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	imported, err := pgn.Parse(req.PGN)
	if err != nil {
		writeJSON(a.log, w, http.StatusOK, validatePgnResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(a.log, w, http.StatusOK, validatePgnResponse{
		Success: true,
		Headers: imported.Tags,
		Moves:   imported.Moves,
		FEN:     imported.FEN,
	})
}

func (a *AnalysisHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(a.log, w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("writeJSON encode error: %v", err)
	}
}

func writeRawJSON(log *zap.SugaredLogger, w http.ResponseWriter, payload domain.Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := w.Write(payload); err != nil {
		log.Errorf("writeRawJSON error: %v", err)
	}
}

func writeJSONError(log *zap.SugaredLogger, w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	log.Debugf("writeJSONError: %s", msg)
}
