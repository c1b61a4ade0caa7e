package game

import "github.com/lukev/secrettoaster/internal/game/board"

// BuildBoard constructs the canonical Secret Toaster board. It is a thin,
// re-exported alias over board.BuildBoard so callers of this package don't
// need to import the board package directly for the common case.
func BuildBoard() *board.Board {
	return board.BuildBoard()
}
