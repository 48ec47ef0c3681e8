package movetree

// StartIndex is the main-line cursor index for the initial position, before
// any move was played.
const StartIndex = -1

// Cursor identifies the selected node: a main-line index when InVariation is
// false, otherwise the (anchor, sibling, offset) triple of a variation ply.
// It is the single source of truth for which position is displayed.
type Cursor struct {
	Index       int  `json:"index"`
	InVariation bool `json:"in_variation"`
	Anchor      int  `json:"anchor"`
	Sibling     int  `json:"sibling"`
	Offset      int  `json:"offset"`
}

// Start returns the cursor for the initial position.
func Start() Cursor {
	return Cursor{Index: StartIndex}
}

// Main returns a main-line cursor.
func Main(index int) Cursor {
	return Cursor{Index: index}
}

// Variation returns a cursor inside a variation.
func Variation(anchor, sibling, offset int) Cursor {
	return Cursor{InVariation: true, Anchor: anchor, Sibling: sibling, Offset: offset}
}

// inBranch reports whether the cursor sits inside the given sibling line.
func (c Cursor) inBranch(anchor, sibling int) bool {
	return c.InVariation && c.Anchor == anchor && c.Sibling == sibling
}
