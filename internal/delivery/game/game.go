package game

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"process_mate/internal/domain"
	gamedom "process_mate/internal/domain/game"
	"process_mate/internal/domain/movetree"
	errs "process_mate/internal/errors"
	"process_mate/internal/httpresponse"
	"process_mate/internal/utils"
	analysisuc "process_mate/internal/usecase/analysis"
	gameuc "process_mate/internal/usecase/game"
)

type GameHandler struct {
	log        *zap.SugaredLogger
	gameUC     *gameuc.GameUseCase
	analysisUC *analysisuc.AnalysisUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase, analysisUC *analysisuc.AnalysisUseCase) *GameHandler {
	return &GameHandler{
		log:        log,
		gameUC:     gameUC,
		analysisUC: analysisUC,
	}
}

func (g *GameHandler) HandleLoadGame(w http.ResponseWriter, r *http.Request) {
	var req gamedom.LoadRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("LoadGame: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	state, imported, err := g.gameUC.LoadPGN(r.Context(), req.PGN)
	if err != nil {
		g.writeError(w, "LoadGame", err)
		return
	}

	resp := gamedom.LoadResponse{
		GameKey:  state.GameKey,
		Tags:     imported.Tags,
		MainLine: state.Tree.MainLine,
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	state, err := g.gameUC.NewGame(r.Context())
	if err != nil {
		g.writeError(w, "NewGame", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, gamedom.CreateResponse{GameKey: state.GameKey})
}

func (g *GameHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	gameKey := r.URL.Query().Get("game_key")
	if gameKey == "" {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "game_key is required"})
		return
	}

	state, err := g.gameUC.State(r.Context(), gameKey)
	if err != nil {
		g.writeError(w, "GetState", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req gamedom.MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("Move: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	state, err := g.gameUC.ProposeMove(r.Context(), req.GameKey, req.Move)
	if err != nil {
		g.writeError(w, "Move", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req gamedom.NavigateRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("Navigate: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	state, err := g.gameUC.Navigate(r.Context(), req.GameKey, req.Action, req.Target)
	if err != nil {
		g.writeError(w, "Navigate", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleDeleteVariation(w http.ResponseWriter, r *http.Request) {
	var req gamedom.DeleteVariationRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("DeleteVariation: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	state, err := g.gameUC.DeleteVariation(r.Context(), req.GameKey, req.Anchor, req.Sibling)
	if err != nil {
		g.writeError(w, "DeleteVariation", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

type closeRequest struct {
	GameKey string `json:"game_key"`
}

func (g *GameHandler) HandleCloseGame(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("CloseGame: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	g.analysisUC.Forget(req.GameKey)
	if err := g.gameUC.CloseGame(r.Context(), req.GameKey); err != nil {
		g.writeError(w, "CloseGame", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, gamedom.CreateResponse{GameKey: req.GameKey})
}

type explainRequest struct {
	GameKey string `json:"game_key"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

func (g *GameHandler) HandleExplainMove(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("ExplainMove: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	text, err := g.gameUC.ExplainMove(r.Context(), req.GameKey)
	if err != nil {
		g.writeError(w, "ExplainMove", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, explainResponse{Explanation: text})
}

// boardEvent is one client action on the websocket board session. Action is
// move, first, prev, next, last, click or delete_variation.
type boardEvent struct {
	Action  string              `json:"action"`
	Move    *movetree.MoveInput `json:"move,omitempty"`
	Target  *movetree.Cursor    `json:"target,omitempty"`
	Anchor  int                 `json:"anchor,omitempty"`
	Sibling int                 `json:"sibling,omitempty"`
}

type boardUpdate struct {
	State    gamedom.State  `json:"state"`
	Error    string         `json:"error,omitempty"`
	Analysis *domain.Result `json:"analysis,omitempty"`
}

// HandleBoardSession runs one board over a websocket. Events are read and
// applied one at a time, which is what serializes all mutations of the
// session; analysis for the settled selection is fetched concurrently and
// pushed when it is still the freshest one.
func (g *GameHandler) HandleBoardSession(w http.ResponseWriter, r *http.Request) {
	gameKey := r.URL.Query().Get("game_key")
	if gameKey == "" {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "game_key is required"})
		return
	}

	if _, err := g.gameUC.State(r.Context(), gameKey); err != nil {
		g.writeError(w, "BoardSession", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("BoardSession upgrade error: ", err)
		return
	}
	defer conn.Close()
	defer g.analysisUC.Forget(gameKey)

	var writeMu sync.Mutex
	send := func(update boardUpdate) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(update); err != nil {
			g.log.Error("BoardSession write error: ", err)
		}
	}

	for {
		var event boardEvent
		if err := conn.ReadJSON(&event); err != nil {
			g.log.Info("BoardSession closed: ", err)
			return
		}

		state, err := g.applyEvent(r.Context(), gameKey, event)
		if err != nil {
			send(boardUpdate{State: state, Error: err.Error()})
			continue
		}
		send(boardUpdate{State: state})

		go g.pushAnalysis(gameKey, state, send)
	}
}

func (g *GameHandler) applyEvent(ctx context.Context, gameKey string, event boardEvent) (gamedom.State, error) {
	switch event.Action {
	case "move":
		if event.Move == nil {
			return g.gameUC.State(ctx, gameKey)
		}
		return g.gameUC.ProposeMove(ctx, gameKey, *event.Move)
	case "delete_variation":
		return g.gameUC.DeleteVariation(ctx, gameKey, event.Anchor, event.Sibling)
	default:
		return g.gameUC.Navigate(ctx, gameKey, event.Action, event.Target)
	}
}

func (g *GameHandler) pushAnalysis(gameKey string, state gamedom.State, send func(boardUpdate)) {
	result, err := g.analysisUC.AnalyzeSelection(context.Background(), gameKey, state.FEN, state.SAN)
	if err != nil {
		if !errors.Is(err, errs.ErrStaleAnalysis) {
			g.log.Errorf("game %s: analysis failed: %v", gameKey, err)
		}
		return
	}
	send(boardUpdate{State: state, Analysis: &result})
}

func (g *GameHandler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrIllegalMove),
		errors.Is(err, errs.ErrVariationBranching),
		errors.Is(err, errs.ErrImportReplay),
		errors.Is(err, errs.ErrEmptyPGN),
		errors.Is(err, errs.ErrNoSuchVariation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrGameNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		g.log.Errorf("%s: %v", op, err)
	} else {
		g.log.Warnf("%s: %v", op, err)
	}
	httpresponse.WriteResponseWithStatus(w, status,
		httpresponse.ErrorResponse{ErrorDescription: err.Error()})
}
