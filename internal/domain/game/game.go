package game

import (
	"time"

	"process_mate/internal/domain/movetree"
	"process_mate/internal/pgn"
)

// Game is a live board session: one loaded game, its move tree and the
// cursor selecting the displayed position. Tree and Cursor are only ever
// touched through the usecase's single mutation entry point.
type Game struct {
	GameKey   string            `json:"game_key"`
	Tags      map[string]string `json:"tags,omitempty"`
	PGN       string            `json:"pgn,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Tree      *movetree.Tree    `json:"tree"`
	Cursor    movetree.Cursor   `json:"cursor"`
}

// Record is the Mongo shape of an imported game. The live tree stays in
// Redis; Mongo keeps the import itself.
type Record struct {
	GameKey   string             `json:"game_key" bson:"game_key"`
	Tags      map[string]string  `json:"tags,omitempty" bson:"tags,omitempty"`
	PGN       string             `json:"pgn" bson:"pgn"`
	Moves     []pgn.ImportedMove `json:"moves" bson:"moves"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type LoadRequest struct {
	PGN string `json:"pgn"`
}

type LoadResponse struct {
	GameKey  string            `json:"game_key"`
	Tags     map[string]string `json:"tags,omitempty"`
	MainLine movetree.Line     `json:"main_line"`
}

type CreateResponse struct {
	GameKey string `json:"game_key"`
}

type MoveRequest struct {
	GameKey string             `json:"game_key"`
	Move    movetree.MoveInput `json:"move"`
}

// NavigateRequest selects the next cursor: Action is one of first, prev,
// next, last or click; click carries the explicit target.
type NavigateRequest struct {
	GameKey string           `json:"game_key"`
	Action  string           `json:"action"`
	Target  *movetree.Cursor `json:"target,omitempty"`
}

type DeleteVariationRequest struct {
	GameKey string `json:"game_key"`
	Anchor  int    `json:"anchor"`
	Sibling int    `json:"sibling"`
}

// State is what every operation answers with: the tree, the cursor and the
// selected position. SAN is empty at the initial position.
type State struct {
	GameKey string          `json:"game_key"`
	Tree    *movetree.Tree  `json:"tree"`
	Cursor  movetree.Cursor `json:"cursor"`
	FEN     string          `json:"fen"`
	SAN     string          `json:"san,omitempty"`
}
