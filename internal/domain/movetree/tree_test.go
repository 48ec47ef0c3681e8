package movetree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"process_mate/internal/domain/movetree"
)

func TestCloneSharesNoStorage(t *testing.T) {
	tree := buildTree(t, "e4", "e5")
	_, err := movetree.ProposeMove(tree, movetree.Main(0), movetree.MoveInput{SAN: "Nf3"}, fakeOracle{})
	require.NoError(t, err)

	clone := tree.Clone()

	// Grow the original along both the main line and the variation.
	_, err = movetree.ProposeMove(tree, movetree.Main(1), movetree.MoveInput{SAN: "Nc6"}, fakeOracle{})
	require.NoError(t, err)
	_, err = movetree.ProposeMove(tree, movetree.Variation(0, 0, 0), movetree.MoveInput{SAN: "Nc6"}, fakeOracle{})
	require.NoError(t, err)

	require.Len(t, clone.MainLine, 2)
	require.Len(t, clone.Variations(0), 1)
	require.Len(t, clone.Variations(0)[0], 1)

	// And the other way around.
	_, err = movetree.ProposeMove(clone, movetree.Main(1), movetree.MoveInput{SAN: "d4"}, fakeOracle{})
	require.NoError(t, err)
	require.Len(t, tree.MainLine, 3)
	require.Len(t, tree.Variations(1), 0)
}

func TestCloneEmptyTree(t *testing.T) {
	clone := movetree.New().Clone()
	require.Empty(t, clone.MainLine)
	require.False(t, clone.HasVariations(movetree.RootAnchor))
}
