package movetree

// RootAnchor marks a variation that replaces the very first move: its line
// diverges from the initial position, before main-line index 0.
const RootAnchor = -1

// Tree is the move tree of one loaded game. Variations are flat: a Line in
// Branches cannot own further branches. Sibling order under an anchor is
// insertion order and stays stable, it is how an existing variation is
// re-identified when the same first move is played into it again.
type Tree struct {
	MainLine Line           `json:"main_line"`
	Branches map[int][]Line `json:"branches,omitempty"`
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{Branches: make(map[int][]Line)}
}

// Clone returns a deep copy sharing no storage with the receiver. State
// snapshots handed out of the session lock must not alias the live tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{MainLine: append(Line(nil), t.MainLine...)}
	if len(t.Branches) > 0 {
		c.Branches = make(map[int][]Line, len(t.Branches))
		for anchor, siblings := range t.Branches {
			lines := make([]Line, len(siblings))
			for i, line := range siblings {
				lines[i] = append(Line(nil), line...)
			}
			c.Branches[anchor] = lines
		}
	}
	return c
}

// ValidAnchor reports whether idx may carry variations: RootAnchor or an
// index into the main line.
func (t *Tree) ValidAnchor(idx int) bool {
	return idx == RootAnchor || (idx >= 0 && idx < len(t.MainLine))
}

// Variations returns the ordered sibling lines anchored after main-line
// index anchor. The returned slice is the tree's own storage.
func (t *Tree) Variations(anchor int) []Line {
	if t.Branches == nil {
		return nil
	}
	return t.Branches[anchor]
}

// HasVariations reports whether any variation is anchored at anchor.
// Deleting the last sibling removes the map key, so presence of the key is
// the answer.
func (t *Tree) HasVariations(anchor int) bool {
	_, ok := t.Branches[anchor]
	return ok
}

// activeLine returns the line the cursor moves along.
func (t *Tree) activeLine(c Cursor) Line {
	if !c.InVariation {
		return t.MainLine
	}
	siblings := t.Variations(c.Anchor)
	if c.Sibling < 0 || c.Sibling >= len(siblings) {
		return nil
	}
	return siblings[c.Sibling]
}

// addVariation appends a new sibling line at anchor and returns its index.
func (t *Tree) addVariation(anchor int, line Line) int {
	if t.Branches == nil {
		t.Branches = make(map[int][]Line)
	}
	t.Branches[anchor] = append(t.Branches[anchor], line)
	return len(t.Branches[anchor]) - 1
}

// removeVariation drops sibling at anchor, deleting the key when it was the
// last one. Reports whether the identifiers were still live.
func (t *Tree) removeVariation(anchor, sibling int) bool {
	siblings, ok := t.Branches[anchor]
	if !ok || sibling < 0 || sibling >= len(siblings) {
		return false
	}
	siblings = append(siblings[:sibling], siblings[sibling+1:]...)
	if len(siblings) == 0 {
		delete(t.Branches, anchor)
	} else {
		t.Branches[anchor] = siblings
	}
	return true
}
