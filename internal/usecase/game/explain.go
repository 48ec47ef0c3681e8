package game

import (
	"context"
	"fmt"
	"strings"

	"process_mate/internal/domain/movetree"
	errs "process_mate/internal/errors"
)

// ExplainMove asks the LLM for a thought-process walkthrough of the move the
// session cursor selects: the line played so far, the selected move, and how
// the current line continues after it.
func (g *GameUseCase) ExplainMove(ctx context.Context, gameKey string) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("llm is not configured: %w", errs.ErrInternal)
	}
	s, err := g.session(ctx, gameKey)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	tree, cursor := s.game.Tree, s.game.Cursor
	current, ok := movetree.CurrentMove(tree, cursor)
	seq := movetree.ReplaySequence(tree, cursor)
	var continuation []string
	next := movetree.Next(tree, cursor)
	for next != cursor && len(continuation) < 3 {
		move, valid := movetree.CurrentMove(tree, next)
		if !valid {
			break
		}
		continuation = append(continuation, move.SAN)
		cursor, next = next, movetree.Next(tree, next)
	}
	s.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("no move selected: %w", errs.ErrGameNotFound)
	}

	var sb strings.Builder
	for _, move := range seq[:len(seq)-1] {
		sb.WriteString(move.SAN)
		sb.WriteString(" ")
	}
	prompt := fmt.Sprintf(
		"Sequence of moves: %s\nCurrent move: %s\nNext moves: %s\nPosition (FEN): %s\n",
		strings.TrimSpace(sb.String()), current.SAN, strings.Join(continuation, " "), current.FEN,
	)

	return g.llm.SendRequestToLlm(prompt)
}
