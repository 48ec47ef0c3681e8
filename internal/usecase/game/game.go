package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"process_mate/internal/domain/game"
	"process_mate/internal/domain/movetree"
	errs "process_mate/internal/errors"
	"process_mate/internal/pgn"
)

// GameStore is the persistence surface: Mongo for imported games, Redis for
// the live tree+cursor of each session.
type GameStore interface {
	GenerateGameKey(ctx context.Context) string
	PutGameRecord(ctx context.Context, record game.Record) error
	GetGameRecord(ctx context.Context, gameKey string) (game.Record, error)
	SaveLiveState(ctx context.Context, gameKey string, state []byte) error
	LoadLiveState(ctx context.Context, gameKey string) ([]byte, error)
	DeleteLiveState(ctx context.Context, gameKey string) error
}

// RulesOracle is the position oracle plus the starting position, which the
// tree itself never needs but session state reporting does.
type RulesOracle interface {
	movetree.Oracle
	StartingFEN() string
}

// LlmStore produces thought-process text for a move context.
type LlmStore interface {
	SendRequestToLlm(request string) (response string, err error)
}

// GameUseCase owns the live sessions. Every tree mutation and cursor
// transition of one session goes through that session's lock, so a partially
// updated tree/cursor pair is never observable.
type GameUseCase struct {
	store  GameStore
	oracle RulesOracle
	llm    LlmStore
	log    *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu   sync.Mutex
	game *game.Game
}

func NewGameUseCase(store GameStore, oracle RulesOracle, llm LlmStore, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{
		store:    store,
		oracle:   oracle,
		llm:      llm,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// NewGame opens an empty session: no moves, cursor at the initial position.
func (g *GameUseCase) NewGame(ctx context.Context) (game.State, error) {
	play := &game.Game{
		GameKey:   g.store.GenerateGameKey(ctx),
		CreatedAt: time.Now(),
		Tree:      movetree.New(),
		Cursor:    movetree.Start(),
	}

	s := &session{game: play}
	g.mu.Lock()
	g.sessions[play.GameKey] = s
	g.mu.Unlock()

	if err := g.persist(ctx, play); err != nil {
		return game.State{}, err
	}
	return g.state(play), nil
}

// LoadPGN imports a game: parse, rebuild the main line through the oracle,
// open a session at the initial position and archive the import. An illegal
// move fails the whole import and no session is installed.
func (g *GameUseCase) LoadPGN(ctx context.Context, pgnText string) (game.State, *pgn.Imported, error) {
	imported, err := pgn.Parse(pgnText)
	if err != nil {
		return game.State{}, nil, err
	}

	tree, err := movetree.BuildMainLine(imported.SANs, g.oracle)
	if err != nil {
		return game.State{}, nil, err
	}

	play := &game.Game{
		GameKey:   g.store.GenerateGameKey(ctx),
		Tags:      imported.Tags,
		PGN:       pgnText,
		CreatedAt: time.Now(),
		Tree:      tree,
		Cursor:    movetree.Start(),
	}

	record := game.Record{
		GameKey:   play.GameKey,
		Tags:      imported.Tags,
		PGN:       pgnText,
		Moves:     imported.Moves,
		CreatedAt: play.CreatedAt,
	}
	if err := g.store.PutGameRecord(ctx, record); err != nil {
		return game.State{}, nil, err
	}

	s := &session{game: play}
	g.mu.Lock()
	g.sessions[play.GameKey] = s
	g.mu.Unlock()

	if err := g.persist(ctx, play); err != nil {
		return game.State{}, nil, err
	}

	g.log.Infof("game %s loaded, %d main-line moves", play.GameKey, len(tree.MainLine))
	return g.state(play), imported, nil
}

// State reports the current selection of a session.
func (g *GameUseCase) State(ctx context.Context, gameKey string) (game.State, error) {
	s, err := g.session(ctx, gameKey)
	if err != nil {
		return game.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return g.state(s.game), nil
}

// ProposeMove runs the mutator against the session. The cursor moves to the
// accepted move; on rejection nothing changes.
func (g *GameUseCase) ProposeMove(ctx context.Context, gameKey string, in movetree.MoveInput) (game.State, error) {
	s, err := g.session(ctx, gameKey)
	if err != nil {
		return game.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, err := movetree.ProposeMove(s.game.Tree, s.game.Cursor, in, g.oracle)
	if err != nil {
		return g.state(s.game), err
	}
	s.game.Cursor = cursor

	if err := g.persist(ctx, s.game); err != nil {
		return game.State{}, err
	}
	return g.state(s.game), nil
}

// Navigate applies first/prev/next/last, or click with an explicit target.
// A click at a stale target is repaired and logged, not failed.
func (g *GameUseCase) Navigate(ctx context.Context, gameKey string, action string, target *movetree.Cursor) (game.State, error) {
	s, err := g.session(ctx, gameKey)
	if err != nil {
		return game.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, cursor := s.game.Tree, s.game.Cursor
	switch action {
	case "first":
		cursor = movetree.First(tree)
	case "prev":
		cursor = movetree.Prev(tree, cursor)
	case "next":
		cursor = movetree.Next(tree, cursor)
	case "last":
		cursor = movetree.Last(tree, cursor)
	case "click":
		if target == nil {
			return g.state(s.game), fmt.Errorf("click without target: %w", errs.ErrNoSuchVariation)
		}
		repaired, clickErr := movetree.Click(tree, *target)
		if clickErr != nil {
			g.log.Warnf("game %s: click target repaired: %v", gameKey, clickErr)
		}
		cursor = repaired
	default:
		return g.state(s.game), fmt.Errorf("unknown navigation action %q", action)
	}

	s.game.Cursor = cursor
	if err := g.persist(ctx, s.game); err != nil {
		return game.State{}, err
	}
	return g.state(s.game), nil
}

// DeleteVariation removes a sibling line; the session cursor is repaired
// when it pointed inside it.
func (g *GameUseCase) DeleteVariation(ctx context.Context, gameKey string, anchor, sibling int) (game.State, error) {
	s, err := g.session(ctx, gameKey)
	if err != nil {
		return game.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, err := movetree.DeleteVariation(s.game.Tree, s.game.Cursor, anchor, sibling)
	if err != nil {
		return g.state(s.game), err
	}
	s.game.Cursor = cursor

	if err := g.persist(ctx, s.game); err != nil {
		return game.State{}, err
	}
	return g.state(s.game), nil
}

// CloseGame ends a session: the in-memory state and the Redis copy are
// dropped. The Mongo record survives, so an imported game can be reopened
// from its archived moves.
func (g *GameUseCase) CloseGame(ctx context.Context, gameKey string) error {
	g.mu.Lock()
	delete(g.sessions, gameKey)
	g.mu.Unlock()
	return g.store.DeleteLiveState(ctx, gameKey)
}

// session returns the live session, reviving it from Redis when the process
// was restarted since the game was loaded, or from the Mongo record when the
// live state expired too. Variations and the cursor only live in the live
// state; a record revival starts over at the initial position.
func (g *GameUseCase) session(ctx context.Context, gameKey string) (*session, error) {
	g.mu.Lock()
	s, ok := g.sessions[gameKey]
	g.mu.Unlock()
	if ok {
		return s, nil
	}

	play, err := g.reviveLive(ctx, gameKey)
	if err != nil {
		if !errors.Is(err, errs.ErrGameNotFound) {
			return nil, err
		}
		play, err = g.reviveRecord(ctx, gameKey)
		if err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.sessions[gameKey]; ok {
		return existing, nil
	}
	s = &session{game: play}
	g.sessions[gameKey] = s
	return s, nil
}

func (g *GameUseCase) reviveLive(ctx context.Context, gameKey string) (*game.Game, error) {
	data, err := g.store.LoadLiveState(ctx, gameKey)
	if err != nil {
		return nil, err
	}
	var play game.Game
	if err := json.Unmarshal(data, &play); err != nil {
		return nil, fmt.Errorf("corrupt live state for %s: %w", gameKey, err)
	}
	if play.Tree == nil {
		play.Tree = movetree.New()
	}
	return &play, nil
}

func (g *GameUseCase) reviveRecord(ctx context.Context, gameKey string) (*game.Game, error) {
	record, err := g.store.GetGameRecord(ctx, gameKey)
	if err != nil {
		return nil, err
	}

	sans := make([]string, len(record.Moves))
	for i, move := range record.Moves {
		sans[i] = move.SAN
	}
	tree, err := movetree.BuildMainLine(sans, g.oracle)
	if err != nil {
		return nil, fmt.Errorf("rebuild archived game %s: %w", gameKey, err)
	}

	g.log.Infof("game %s revived from its archived record", gameKey)
	play := &game.Game{
		GameKey:   gameKey,
		Tags:      record.Tags,
		PGN:       record.PGN,
		CreatedAt: record.CreatedAt,
		Tree:      tree,
		Cursor:    movetree.Start(),
	}
	if err := g.persist(ctx, play); err != nil {
		return nil, err
	}
	return play, nil
}

func (g *GameUseCase) persist(ctx context.Context, play *game.Game) error {
	data, err := json.Marshal(play)
	if err != nil {
		return err
	}
	return g.store.SaveLiveState(ctx, play.GameKey, data)
}

// state snapshots the selection. The tree is cloned because callers marshal
// the snapshot after the session lock is released, possibly while the next
// event is already mutating the live tree. The FEN comes from the cached
// position of the selected move, which the replay invariant keeps equal to a
// full oracle replay.
func (g *GameUseCase) state(play *game.Game) game.State {
	st := game.State{
		GameKey: play.GameKey,
		Tree:    play.Tree.Clone(),
		Cursor:  play.Cursor,
		FEN:     g.oracle.StartingFEN(),
	}
	if move, ok := movetree.CurrentMove(play.Tree, play.Cursor); ok {
		st.FEN = move.FEN
		st.SAN = move.SAN
	}
	return st
}
