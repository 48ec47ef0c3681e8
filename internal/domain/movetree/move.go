// Package movetree holds the move/variation tree of a loaded chess game: the
// main line, flat variations anchored at main-line plies, and the cursor that
// selects the displayed position. Rule knowledge lives behind the Oracle
// interface; the tree itself never decides legality.
package movetree

// Move is a single ply. Immutable once created.
type Move struct {
	SAN        string `json:"san"`
	FEN        string `json:"fen"`
	MoveNumber int    `json:"move_number"`
	White      bool   `json:"white"`
}

// Line is an ordered sequence of plies, indexed from 0. The main line is a
// Line and every variation is a Line.
type Line []Move

// MoveInput is a proposed move before the Oracle has resolved it: either
// algebraic text or a from/to square pair with an optional promotion piece.
type MoveInput struct {
	SAN       string `json:"san,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

// IsAlgebraic reports whether the input carries SAN text rather than
// coordinates.
func (in MoveInput) IsAlgebraic() bool {
	return in.SAN != ""
}

// moveAt builds the Move for a ply: ply 0 is white's first move, the move
// number is shared by the white/black pair.
func moveAt(ply int, san, fen string) Move {
	return Move{
		SAN:        san,
		FEN:        fen,
		MoveNumber: ply/2 + 1,
		White:      ply%2 == 0,
	}
}
