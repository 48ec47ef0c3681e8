package domain

import "encoding/json"

// AnalyzeRequest asks the analyzer service for the thought-process breakdown
// of a position and, optionally, of the move that was selected in it.
type AnalyzeRequest struct {
	FEN  string `json:"fen"`
	Move string `json:"move,omitempty"`
}

// EngineAnalysisRequest asks for raw engine analysis of a position.
type EngineAnalysisRequest struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth,omitempty"`
}

// Payload is whatever the analysis collaborator returned. The structure is
// owned by that service; here it is display data and nothing more.
type Payload = json.RawMessage

// Result pairs an analysis payload with the selection it was computed for.
// Ticket orders results of one game so late arrivals can be discarded.
type Result struct {
	GameKey string  `json:"game_key"`
	Ticket  uint64  `json:"-"`
	FEN     string  `json:"fen"`
	SAN     string  `json:"san,omitempty"`
	Payload Payload `json:"payload"`
}
