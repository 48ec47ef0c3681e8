package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"process_mate/internal/domain/movetree"
	errs "process_mate/internal/errors"
	"process_mate/internal/rules"
)

func TestReplayFromStart(t *testing.T) {
	oracle := rules.NewOracle()

	fen, err := oracle.Replay(nil)
	require.NoError(t, err)
	require.Equal(t, oracle.StartingFEN(), fen)

	fen, err = oracle.Replay([]string{"e4", "e5", "Nf3"})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(strings.Fields(fen)[1], "b"), "black to move after three plies")
}

func TestReplayRejectsIllegalMoveWithIndex(t *testing.T) {
	oracle := rules.NewOracle()

	_, err := oracle.Replay([]string{"e4", "e4", "Nf3"})
	require.ErrorIs(t, err, errs.ErrIllegalMove)

	var replayErr *movetree.ReplayError
	require.ErrorAs(t, err, &replayErr)
	require.Equal(t, 1, replayErr.Index)
	require.Equal(t, "e4", replayErr.SAN)
}

func TestApplyMoveAlgebraic(t *testing.T) {
	oracle := rules.NewOracle()

	applied, err := oracle.ApplyMove(oracle.StartingFEN(), movetree.MoveInput{SAN: "e4"})
	require.NoError(t, err)
	require.Equal(t, "e4", applied.SAN)

	replayed, err := oracle.Replay([]string{"e4"})
	require.NoError(t, err)
	require.Equal(t, replayed, applied.FEN, "apply and replay must agree on the position")
}

func TestApplyMoveCoordinates(t *testing.T) {
	oracle := rules.NewOracle()

	applied, err := oracle.ApplyMove(oracle.StartingFEN(), movetree.MoveInput{From: "g1", To: "f3"})
	require.NoError(t, err)
	require.Equal(t, "Nf3", applied.SAN, "coordinates resolve to canonical SAN")
}

func TestApplyMovePromotion(t *testing.T) {
	oracle := rules.NewOracle()

	// White pawn one step from promotion.
	fen := "8/5P1k/8/8/8/8/8/4K3 w - - 0 1"
	applied, err := oracle.ApplyMove(fen, movetree.MoveInput{From: "f7", To: "f8", Promotion: "q"})
	require.NoError(t, err)
	require.Contains(t, applied.SAN, "=Q")
}

func TestApplyMoveRejectsIllegal(t *testing.T) {
	oracle := rules.NewOracle()

	_, err := oracle.ApplyMove(oracle.StartingFEN(), movetree.MoveInput{SAN: "Qh5"})
	require.ErrorIs(t, err, errs.ErrIllegalMove)

	_, err = oracle.ApplyMove(oracle.StartingFEN(), movetree.MoveInput{From: "e2", To: "e5"})
	require.ErrorIs(t, err, errs.ErrIllegalMove)
}

func TestApplyMoveRejectsGarbageInput(t *testing.T) {
	oracle := rules.NewOracle()

	_, err := oracle.ApplyMove(oracle.StartingFEN(), movetree.MoveInput{SAN: "zz9"})
	require.ErrorIs(t, err, errs.ErrIllegalMove)
}

// Cached positions on tree moves are a performance cache; replay through the
// oracle is the definitive path and both must always agree.
func TestCachedPositionsEqualReplay(t *testing.T) {
	oracle := rules.NewOracle()

	tree, err := movetree.BuildMainLine([]string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}, oracle)
	require.NoError(t, err)

	cursor, err := movetree.ProposeMove(tree, movetree.Main(1), movetree.MoveInput{SAN: "Nc3"}, oracle)
	require.NoError(t, err)
	cursor, err = movetree.ProposeMove(tree, cursor, movetree.MoveInput{SAN: "Nf6"}, oracle)
	require.NoError(t, err)

	for i := range tree.MainLine {
		replayed, err := oracle.Replay(movetree.SANs(tree, movetree.Main(i)))
		require.NoError(t, err)
		require.Equal(t, replayed, tree.MainLine[i].FEN, "main-line ply %d", i)
	}
	for offset := 0; offset <= cursor.Offset; offset++ {
		c := movetree.Variation(cursor.Anchor, cursor.Sibling, offset)
		move, ok := movetree.CurrentMove(tree, c)
		require.True(t, ok)
		replayed, err := oracle.Replay(movetree.SANs(tree, c))
		require.NoError(t, err)
		require.Equal(t, replayed, move.FEN, "variation offset %d", offset)
	}
}
