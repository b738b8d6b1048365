package warroom

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/warroom/internal/mines"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrLiveGameExists   = errors.New("a game is already in progress")
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrPatternNameTaken = errors.New("pattern name is taken")
)

type GameReader interface {
	// LoadGame restores a game with its board and all cells in (y, x)
	// order. Missing games are reported with [ErrGameNotFound].
	LoadGame(ctx context.Context, gameID int64) (*mines.Game, error)
}

// GameTx is the persistence available while a game is locked.
type GameTx interface {
	GameReader

	// MarkMinesPlaced records the placement unless one was recorded
	// already, and reports whether it did.
	MarkMinesPlaced(ctx context.Context, boardID int64, minesCount int) (bool, error)
	UpsertCells(ctx context.Context, boardID int64, cells []mines.Cell) error
	UpdateGame(ctx context.Context, g *mines.Game) error
}

type Highscore struct {
	GameID  int64       `json:"game_id"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Mines   int         `json:"mines"`
	Pattern *string     `json:"pattern,omitempty"`
	Stats   mines.Stats `json:"stats"`
	EndedAt time.Time   `json:"ended_at"`
}

type Store interface {
	GameReader

	// CreateGame saves a new game standing by, its board and its cells,
	// assigning both IDs. Only one game may be live at a time.
	CreateGame(ctx context.Context, g *mines.Game) error
	CurrentGameID(ctx context.Context) (int64, error)
	// WithGameLock runs fn while holding the game's lock. Changes made
	// through tx are committed only if fn returns nil.
	WithGameLock(ctx context.Context, gameID int64, fn func(tx GameTx) error) error

	Pattern(ctx context.Context, name string) (*mines.Pattern, error)
	CreatePattern(ctx context.Context, p *mines.Pattern) error
	Highscores(ctx context.Context, limit int) ([]Highscore, error)
}
