package game_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "process_mate/internal/domain/game"
	"process_mate/internal/domain/movetree"
	errs "process_mate/internal/errors"
	"process_mate/internal/rules"
	usecase "process_mate/internal/usecase/game"
)

type memStore struct {
	keys    int
	records map[string]domain.Record
	live    map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]domain.Record),
		live:    make(map[string][]byte),
	}
}

func (m *memStore) GenerateGameKey(context.Context) string {
	m.keys++
	return fmt.Sprintf("game-%d", m.keys)
}

func (m *memStore) PutGameRecord(_ context.Context, record domain.Record) error {
	m.records[record.GameKey] = record
	return nil
}

func (m *memStore) GetGameRecord(_ context.Context, gameKey string) (domain.Record, error) {
	record, ok := m.records[gameKey]
	if !ok {
		return domain.Record{}, errs.ErrGameNotFound
	}
	return record, nil
}

func (m *memStore) SaveLiveState(_ context.Context, gameKey string, state []byte) error {
	m.live[gameKey] = append([]byte(nil), state...)
	return nil
}

func (m *memStore) LoadLiveState(_ context.Context, gameKey string) ([]byte, error) {
	state, ok := m.live[gameKey]
	if !ok {
		return nil, errs.ErrGameNotFound
	}
	return state, nil
}

func (m *memStore) DeleteLiveState(_ context.Context, gameKey string) error {
	delete(m.live, gameKey)
	return nil
}

type fakeLlm struct {
	prompt string
}

func (f *fakeLlm) SendRequestToLlm(request string) (string, error) {
	f.prompt = request
	return "because it develops a piece", nil
}

func newUseCase(t *testing.T, store *memStore, llm usecase.LlmStore) *usecase.GameUseCase {
	t.Helper()
	return usecase.NewGameUseCase(store, rules.NewOracle(), llm, zap.NewNop().Sugar())
}

const testPGN = `[White "Anna"]
[Black "Boris"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 1-0`

func TestNewGameStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, err := uc.NewGame(ctx)
	require.NoError(t, err)
	require.Equal(t, "game-1", state.GameKey)
	require.Empty(t, state.Tree.MainLine)
	require.Equal(t, movetree.Start(), state.Cursor)
	require.Equal(t, rules.NewOracle().StartingFEN(), state.FEN)
	require.Contains(t, store.live, "game-1")
}

func TestLoadPGN(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, imported, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	require.Len(t, state.Tree.MainLine, 5)
	require.Equal(t, movetree.Start(), state.Cursor, "import leaves the cursor at the initial position")
	require.Equal(t, "Anna", imported.Tags["White"])

	record, err := store.GetGameRecord(ctx, state.GameKey)
	require.NoError(t, err)
	require.Equal(t, testPGN, record.PGN)
	require.Len(t, record.Moves, 5)
}

func TestLoadPGNIllegalMoveInstallsNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	_, _, err := uc.LoadPGN(ctx, "1. e4 e5 2. Ke2 Ke7 3. Ke1 Ke8 4. Ke2 Kd4 *")
	require.Error(t, err)
	require.Empty(t, store.records)
	require.Empty(t, store.live)
}

func TestProposeMoveAndNavigate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	// Walk onto the main line, then branch off it.
	state, err = uc.Navigate(ctx, key, "next", nil)
	require.NoError(t, err)
	require.Equal(t, "e4", state.SAN)

	state, err = uc.ProposeMove(ctx, key, movetree.MoveInput{SAN: "c5"})
	require.NoError(t, err)
	require.True(t, state.Cursor.InVariation)
	require.Equal(t, "c5", state.SAN)

	// Proposing the main-line move again just moves the cursor back onto it.
	state, err = uc.Navigate(ctx, key, "prev", nil)
	require.NoError(t, err)
	state, err = uc.ProposeMove(ctx, key, movetree.MoveInput{SAN: "e5"})
	require.NoError(t, err)
	require.False(t, state.Cursor.InVariation)
	require.Equal(t, movetree.Main(1), state.Cursor)
	require.Len(t, state.Tree.Variations(0), 1)

	state, err = uc.Navigate(ctx, key, "last", nil)
	require.NoError(t, err)
	require.Equal(t, "Bb5", state.SAN)

	state, err = uc.Navigate(ctx, key, "first", nil)
	require.NoError(t, err)
	require.Equal(t, movetree.Start(), state.Cursor)
	require.Equal(t, rules.NewOracle().StartingFEN(), state.FEN)
}

func TestProposeIllegalMoveLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	state, err = uc.ProposeMove(ctx, key, movetree.MoveInput{SAN: "Ke2"})
	require.ErrorIs(t, err, errs.ErrIllegalMove)
	require.Equal(t, movetree.Start(), state.Cursor)
	require.Empty(t, state.Tree.Branches)
}

func TestNavigateClick(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	target := movetree.Main(3)
	state, err = uc.Navigate(ctx, key, "click", &target)
	require.NoError(t, err)
	require.Equal(t, "Nc6", state.SAN)

	// Stale targets are repaired, not failed.
	stale := movetree.Variation(3, 7, 0)
	state, err = uc.Navigate(ctx, key, "click", &stale)
	require.NoError(t, err)
	require.Equal(t, movetree.Main(3), state.Cursor)

	_, err = uc.Navigate(ctx, key, "click", nil)
	require.ErrorIs(t, err, errs.ErrNoSuchVariation)

	_, err = uc.Navigate(ctx, key, "sideways", nil)
	require.Error(t, err)
}

func TestDeleteVariationRepairsSessionCursor(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	_, err = uc.Navigate(ctx, key, "next", nil)
	require.NoError(t, err)
	state, err = uc.ProposeMove(ctx, key, movetree.MoveInput{SAN: "c5"})
	require.NoError(t, err)
	require.True(t, state.Cursor.InVariation)

	state, err = uc.DeleteVariation(ctx, key, 0, 0)
	require.NoError(t, err)
	require.Equal(t, movetree.Main(0), state.Cursor)
	require.Empty(t, state.Tree.Branches)

	_, err = uc.DeleteVariation(ctx, key, 0, 0)
	require.ErrorIs(t, err, errs.ErrNoSuchVariation)
}

func TestSessionRevivedFromLiveState(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	_, err = uc.Navigate(ctx, key, "last", nil)
	require.NoError(t, err)

	// A fresh use case with the same store simulates a process restart.
	revived := newUseCase(t, store, nil)
	state, err = revived.State(ctx, key)
	require.NoError(t, err)
	require.Equal(t, movetree.Main(4), state.Cursor)
	require.Equal(t, "Bb5", state.SAN)
	require.Len(t, state.Tree.MainLine, 5)

	_, err = revived.State(ctx, "no-such-game")
	require.ErrorIs(t, err, errs.ErrGameNotFound)
}

func TestClosedGameRevivedFromRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	_, err = uc.Navigate(ctx, key, "last", nil)
	require.NoError(t, err)

	require.NoError(t, uc.CloseGame(ctx, key))
	require.Empty(t, store.live)

	// The archived record rebuilds the main line; the cursor starts over.
	state, err = uc.State(ctx, key)
	require.NoError(t, err)
	require.Len(t, state.Tree.MainLine, 5)
	require.Equal(t, movetree.Start(), state.Cursor)
	require.Contains(t, store.live, key, "revival persists a fresh live state")
}

func TestStateSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	before, err := uc.State(ctx, key)
	require.NoError(t, err)

	_, err = uc.Navigate(ctx, key, "next", nil)
	require.NoError(t, err)
	_, err = uc.ProposeMove(ctx, key, movetree.MoveInput{SAN: "c5"})
	require.NoError(t, err)

	// Mutations after the snapshot must not show through it.
	require.Len(t, before.Tree.MainLine, 5)
	require.Empty(t, before.Tree.Branches)
}

func TestStateMarshalsSafelyDuringMutation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	uc := newUseCase(t, store, nil)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	// Marshal snapshots while events mutate the same game; the race detector
	// verifies the snapshot shares nothing with the live tree.
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for i := 0; i < 100; i++ {
			snapshot, err := uc.State(ctx, key)
			if err != nil {
				errCh <- err
				return
			}
			if _, err := json.Marshal(snapshot); err != nil {
				errCh <- err
				return
			}
		}
	}()

	for i := 0; i < 20; i++ {
		_, err = uc.Navigate(ctx, key, "first", nil)
		require.NoError(t, err)
		for _, san := range []string{"d4", "d5", "Nf3"} {
			_, err = uc.ProposeMove(ctx, key, movetree.MoveInput{SAN: san})
			require.NoError(t, err)
		}
	}

	require.NoError(t, <-errCh)
}

func TestCloseUnloadedGame(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(t, newMemStore(), nil)

	require.NoError(t, uc.CloseGame(ctx, "never-loaded"))
}

func TestExplainMove(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	llm := &fakeLlm{}
	uc := newUseCase(t, store, llm)

	state, _, err := uc.LoadPGN(ctx, testPGN)
	require.NoError(t, err)
	key := state.GameKey

	target := movetree.Main(2)
	_, err = uc.Navigate(ctx, key, "click", &target)
	require.NoError(t, err)

	answer, err := uc.ExplainMove(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "because it develops a piece", answer)
	require.Contains(t, llm.prompt, "Current move: Nf3")
	require.Contains(t, llm.prompt, "e4 e5")
	require.True(t, strings.Contains(llm.prompt, "Nc6 Bb5"), "prompt carries the continuation")
}

func TestExplainMoveWithoutLlm(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(t, newMemStore(), nil)

	state, err := uc.NewGame(ctx)
	require.NoError(t, err)

	_, err = uc.ExplainMove(ctx, state.GameKey)
	require.ErrorIs(t, err, errs.ErrInternal)
}
