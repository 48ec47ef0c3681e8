package movetree

import (
	"fmt"

	errs "process_mate/internal/errors"
)

// Applied is the oracle's canonical form of an accepted move: normalized SAN
// plus the position after the move.
type Applied struct {
	SAN string
	FEN string
}

// Oracle is the external rules engine. Replay applies a SAN sequence from
// the initial position and returns the resulting FEN; ApplyMove validates a
// proposed move against a position and resolves it to canonical form. Both
// reject with ErrIllegalMove in their error chain.
type Oracle interface {
	Replay(sans []string) (string, error)
	ApplyMove(fen string, in MoveInput) (Applied, error)
}

// ReplayError reports the first illegal move of a replayed sequence.
type ReplayError struct {
	Index int
	SAN   string
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay rejected at move %d (%s): %v", e.Index, e.SAN, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// ProposeMove resolves the position at c, validates in against it and grows
// the tree: append when the cursor sits at the end of its line, otherwise
// branch off a variation at the current anchor. An input matching the move
// that already continues the line, or the first move of an existing sibling,
// reuses that move instead of duplicating it. On any error the tree is
// unchanged and the original cursor is returned.
func ProposeMove(t *Tree, c Cursor, in MoveInput, oracle Oracle) (Cursor, error) {
	if !Valid(t, c) {
		return Repair(t, c), errs.ErrNoSuchVariation
	}

	fen, err := oracle.Replay(SANs(t, c))
	if err != nil {
		return c, fmt.Errorf("resolve cursor position: %w", err)
	}

	applied, err := oracle.ApplyMove(fen, in)
	if err != nil {
		return c, err
	}

	if c.InVariation {
		return growVariation(t, c, applied)
	}
	return growMainLine(t, c, applied)
}

func growVariation(t *Tree, c Cursor, applied Applied) (Cursor, error) {
	line := t.activeLine(c)
	if line == nil {
		return c, errs.ErrNoSuchVariation
	}
	if c.Offset == len(line)-1 {
		ply := c.Anchor + c.Offset + 2
		siblings := t.Branches[c.Anchor]
		siblings[c.Sibling] = append(line, moveAt(ply, applied.SAN, applied.FEN))
		return Variation(c.Anchor, c.Sibling, c.Offset+1), nil
	}
	// Mid-variation: reuse the existing continuation, anything else would
	// need a sub-variation and the tree is flat.
	if line[c.Offset+1].SAN == applied.SAN {
		return Variation(c.Anchor, c.Sibling, c.Offset+1), nil
	}
	return c, errs.ErrVariationBranching
}

func growMainLine(t *Tree, c Cursor, applied Applied) (Cursor, error) {
	if c.Index == len(t.MainLine)-1 {
		ply := len(t.MainLine)
		t.MainLine = append(t.MainLine, moveAt(ply, applied.SAN, applied.FEN))
		return Main(len(t.MainLine) - 1), nil
	}
	if t.MainLine[c.Index+1].SAN == applied.SAN {
		return Main(c.Index + 1), nil
	}
	anchor := c.Index // RootAnchor when proposing over move 1
	for s, sibling := range t.Variations(anchor) {
		if len(sibling) > 0 && sibling[0].SAN == applied.SAN {
			return Variation(anchor, s, 0), nil
		}
	}
	ply := anchor + 1
	s := t.addVariation(anchor, Line{moveAt(ply, applied.SAN, applied.FEN)})
	return Variation(anchor, s, 0), nil
}

// DeleteVariation removes the identified sibling. A cursor inside the
// removed line falls back to the main-line move at its anchor; a cursor in a
// later sibling at the same anchor keeps pointing at the same line.
func DeleteVariation(t *Tree, c Cursor, anchor, sibling int) (Cursor, error) {
	if !t.removeVariation(anchor, sibling) {
		return c, errs.ErrNoSuchVariation
	}
	switch {
	case c.inBranch(anchor, sibling):
		c = Repair(t, Main(anchor))
	case c.InVariation && c.Anchor == anchor && c.Sibling > sibling:
		c = Variation(c.Anchor, c.Sibling-1, c.Offset)
	}
	return c, nil
}

// BuildMainLine replays an imported SAN list through the oracle and returns
// a tree whose main line carries the canonical SAN and resulting FEN of each
// ply. The whole import fails on the first illegal move; no partial tree is
// returned.
func BuildMainLine(sans []string, oracle Oracle) (*Tree, error) {
	fen, err := oracle.Replay(nil)
	if err != nil {
		return nil, fmt.Errorf("starting position: %w", err)
	}

	t := New()
	for i, san := range sans {
		applied, err := oracle.ApplyMove(fen, MoveInput{SAN: san})
		if err != nil {
			return nil, &ReplayError{Index: i, SAN: san, Err: errs.ErrImportReplay}
		}
		t.MainLine = append(t.MainLine, moveAt(i, applied.SAN, applied.FEN))
		fen = applied.FEN
	}
	return t, nil
}
