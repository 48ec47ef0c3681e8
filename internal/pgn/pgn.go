// Package pgn is the import collaborator: it turns uploaded PGN text into
// the ordered SAN list the move tree is rebuilt from, plus the game's tag
// pairs. Grammar and movetext handling belong to notnil/chess.
package pgn

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	errs "process_mate/internal/errors"
)

// Imported is one parsed game.
type Imported struct {
	Tags  map[string]string `json:"tags"`
	SANs  []string          `json:"sans"`
	Moves []ImportedMove    `json:"moves"`
	FEN   string            `json:"fen"`
}

// ImportedMove mirrors the original import payload: SAN, UCI and the
// position after the move.
type ImportedMove struct {
	SAN string `json:"san"`
	UCI string `json:"uci"`
	FEN string `json:"fen"`
}

// Parse reads a single game from text.
func Parse(text string) (*Imported, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.ErrEmptyPGN
	}

	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse pgn: %w", err)
	}
	game := chess.NewGame(opt)

	imported := &Imported{
		Tags: make(map[string]string),
		FEN:  game.Position().String(),
	}
	for _, pair := range game.TagPairs() {
		imported.Tags[pair.Key] = pair.Value
	}

	moves := game.Moves()
	positions := game.Positions() // positions[i] is before moves[i]
	for i, move := range moves {
		san := chess.AlgebraicNotation{}.Encode(positions[i], move)
		imported.SANs = append(imported.SANs, san)
		imported.Moves = append(imported.Moves, ImportedMove{
			SAN: san,
			UCI: move.String(),
			FEN: positions[i+1].String(),
		})
	}
	return imported, nil
}
