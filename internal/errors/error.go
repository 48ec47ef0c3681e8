package errors

import "errors"

var (
	ErrIllegalMove        = errors.New("move is illegal in the current position")
	ErrNoSuchVariation    = errors.New("variation does not exist or was already deleted")
	ErrVariationBranching = errors.New("branching inside a variation is not supported")
	ErrImportReplay       = errors.New("imported game contains an illegal move")
	ErrStaleAnalysis      = errors.New("analysis response is stale")
	ErrGameNotFound       = errors.New("game not found")
	ErrEmptyPGN           = errors.New("empty pgn text")
	ErrInternal           = errors.New("internal error")
)
