// Package rules implements the position oracle on top of notnil/chess: the
// move tree asks it to replay SAN sequences and to validate proposed moves,
// and never inspects chess rules itself.
package rules

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"process_mate/internal/domain/movetree"
	errs "process_mate/internal/errors"
)

type Oracle struct{}

func NewOracle() *Oracle {
	return &Oracle{}
}

// StartingFEN is the position before any move.
func (o *Oracle) StartingFEN() string {
	return chess.StartingPosition().String()
}

// Replay applies sans in order from the initial position and returns the
// resulting FEN. The first illegal move aborts with a ReplayError carrying
// its index.
func (o *Oracle) Replay(sans []string) (string, error) {
	game := chess.NewGame()
	for i, san := range sans {
		if err := game.MoveStr(san); err != nil {
			return "", &movetree.ReplayError{Index: i, SAN: san, Err: errs.ErrIllegalMove}
		}
	}
	return game.Position().String(), nil
}

// ApplyMove validates in against the position fen and resolves it to
// canonical SAN plus the resulting position. Coordinate input is decoded as
// UCI; either form is rejected with ErrIllegalMove when the move is not
// legal in the position.
func (o *Oracle) ApplyMove(fen string, in movetree.MoveInput) (movetree.Applied, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return movetree.Applied{}, fmt.Errorf("bad position %q: %w", fen, err)
	}
	pos := chess.NewGame(opt).Position()

	move, err := decode(pos, in)
	if err != nil {
		return movetree.Applied{}, fmt.Errorf("%q: %w", inputText(in), errs.ErrIllegalMove)
	}

	legal := false
	for _, valid := range pos.ValidMoves() {
		if valid.String() == move.String() {
			move = valid
			legal = true
			break
		}
	}
	if !legal {
		return movetree.Applied{}, fmt.Errorf("%q: %w", inputText(in), errs.ErrIllegalMove)
	}

	san := chess.AlgebraicNotation{}.Encode(pos, move)
	next := pos.Update(move)
	return movetree.Applied{SAN: san, FEN: next.String()}, nil
}

func decode(pos *chess.Position, in movetree.MoveInput) (*chess.Move, error) {
	if in.IsAlgebraic() {
		return chess.AlgebraicNotation{}.Decode(pos, in.SAN)
	}
	uci := strings.ToLower(in.From + in.To + in.Promotion)
	return chess.UCINotation{}.Decode(pos, uci)
}

func inputText(in movetree.MoveInput) string {
	if in.IsAlgebraic() {
		return in.SAN
	}
	return in.From + in.To + in.Promotion
}
