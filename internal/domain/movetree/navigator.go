package movetree

import (
	errs "process_mate/internal/errors"
)

// Navigation is pure: every function takes the tree and a cursor and returns
// the next cursor without touching the tree. The replay sequence computed
// here is the definitive way to reach a position; cached FENs on moves must
// always agree with it.

// First selects the initial position, unconditionally leaving any variation.
func First(*Tree) Cursor {
	return Start()
}

// Last selects the end of the active variation when one is active, otherwise
// the end of the main line.
func Last(t *Tree, c Cursor) Cursor {
	if c.InVariation {
		if line := t.activeLine(c); line != nil {
			return Variation(c.Anchor, c.Sibling, len(line)-1)
		}
	}
	if len(t.MainLine) == 0 {
		return Start()
	}
	return Main(len(t.MainLine) - 1)
}

// Next advances one ply along the active line. At the end of the line it is
// a no-op.
func Next(t *Tree, c Cursor) Cursor {
	if c.InVariation {
		if line := t.activeLine(c); line != nil && c.Offset+1 < len(line) {
			return Variation(c.Anchor, c.Sibling, c.Offset+1)
		}
		return c
	}
	if c.Index+1 < len(t.MainLine) {
		return Main(c.Index + 1)
	}
	return c
}

// Prev steps one ply back. Stepping before offset 0 of a variation exits to
// the main-line move the variation is anchored after.
func Prev(t *Tree, c Cursor) Cursor {
	if c.InVariation {
		if c.Offset > 0 {
			return Variation(c.Anchor, c.Sibling, c.Offset-1)
		}
		return Main(c.Anchor)
	}
	if c.Index > StartIndex {
		return Main(c.Index - 1)
	}
	return c
}

// Click jumps directly to target, entering or leaving a variation as needed.
// A target in a since-deleted branch yields the repaired fallback cursor
// together with ErrNoSuchVariation so the caller can log the repair.
func Click(t *Tree, target Cursor) (Cursor, error) {
	if Valid(t, target) {
		return target, nil
	}
	return Repair(t, target), errs.ErrNoSuchVariation
}

// Valid reports whether the cursor resolves to a reachable node.
func Valid(t *Tree, c Cursor) bool {
	if !c.InVariation {
		return c.Index >= StartIndex && c.Index < len(t.MainLine)
	}
	if !t.ValidAnchor(c.Anchor) {
		return false
	}
	line := t.activeLine(c)
	return line != nil && c.Offset >= 0 && c.Offset < len(line)
}

// Repair maps an invalid cursor back onto a live node: a cursor into a
// removed branch falls back to the main-line move at its anchor, a main-line
// cursor is clamped into range.
func Repair(t *Tree, c Cursor) Cursor {
	if Valid(t, c) {
		return c
	}
	if c.InVariation {
		return Repair(t, Main(c.Anchor))
	}
	if c.Index >= len(t.MainLine) {
		return Last(t, Main(StartIndex))
	}
	return Start()
}

// ReplaySequence reconstructs the ordered list of moves from the initial
// position up to and including the cursor target: the main-line prefix up to
// the anchor (or the cursor index), then the variation prefix when inside
// one. The initial-position cursor yields an empty sequence.
func ReplaySequence(t *Tree, c Cursor) Line {
	if !c.InVariation {
		if c.Index <= StartIndex {
			return nil
		}
		return appendLine(nil, t.MainLine[:c.Index+1])
	}
	var seq Line
	if c.Anchor > RootAnchor {
		seq = appendLine(seq, t.MainLine[:c.Anchor+1])
	}
	if line := t.activeLine(c); line != nil && c.Offset < len(line) {
		seq = appendLine(seq, line[:c.Offset+1])
	}
	return seq
}

// SANs is the replay sequence reduced to algebraic text, the shape the
// position oracle replays.
func SANs(t *Tree, c Cursor) []string {
	seq := ReplaySequence(t, c)
	out := make([]string, len(seq))
	for i, m := range seq {
		out[i] = m.SAN
	}
	return out
}

// CurrentMove returns the move the cursor selects; ok is false at the
// initial position or for a cursor that no longer resolves.
func CurrentMove(t *Tree, c Cursor) (Move, bool) {
	if !c.InVariation {
		if c.Index <= StartIndex || c.Index >= len(t.MainLine) {
			return Move{}, false
		}
		return t.MainLine[c.Index], true
	}
	line := t.activeLine(c)
	if line == nil || c.Offset < 0 || c.Offset >= len(line) {
		return Move{}, false
	}
	return line[c.Offset], true
}

func appendLine(dst Line, src Line) Line {
	return append(dst, src...)
}
