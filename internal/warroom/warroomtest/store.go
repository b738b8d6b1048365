// Package warroomtest provides an in-memory store for exercising the
// coordinator without postgres.
package warroomtest

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

type storedGame struct {
	id        int64
	status    mines.Status
	startedAt time.Time
	endedAt   time.Time
	clicks    int
	stats     *mines.Stats

	boardID     int64
	width       int
	height      int
	minesCount  int
	minesPlaced bool
	pattern     *mines.Pattern
	cells       []mines.Cell
}

func (s storedGame) clone() *storedGame {
	s.cells = slices.Clone(s.cells)
	return &s
}

func (s *storedGame) game() (*mines.Game, error) {
	b, err := mines.RestoreBoard(s.boardID, s.width, s.height, s.minesCount, s.pattern, s.cells)
	if err != nil {
		return nil, err
	}
	b.MinesPlaced = s.minesPlaced
	g := mines.NewGame(b)
	g.ID = s.id
	g.Status = s.status
	g.StartedAt = s.startedAt
	g.EndedAt = s.endedAt
	g.Clicks = s.clicks
	g.Stats = s.stats
	return g, nil
}

// MemStore is an in-memory [warroom.Store]. It keeps games the way the
// postgres repository does: a game row, a board row and one row per cell.
type MemStore struct {
	mu       sync.Mutex
	locks    map[int64]*sync.Mutex
	games    map[int64]*storedGame
	patterns map[string]*mines.Pattern
	nextID   int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		locks:    make(map[int64]*sync.Mutex),
		games:    make(map[int64]*storedGame),
		patterns: make(map[string]*mines.Pattern),
	}
}

func (s *MemStore) LoadGame(_ context.Context, gameID int64) (*mines.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.games[gameID]
	if !ok {
		return nil, warroom.ErrGameNotFound
	}
	return sg.game()
}

func (s *MemStore) CreateGame(_ context.Context, g *mines.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sg := range s.games {
		if !sg.status.Over() {
			return warroom.ErrLiveGameExists
		}
	}
	s.nextID++
	g.ID, g.Board.ID = s.nextID, s.nextID
	s.games[g.ID] = &storedGame{
		id:         g.ID,
		status:     g.Status,
		boardID:    g.Board.ID,
		width:      g.Board.Width,
		height:     g.Board.Height,
		minesCount: g.Board.MinesCount,
		pattern:    g.Board.Pattern,
		cells:      g.Board.Cells(),
	}
	s.locks[g.ID] = &sync.Mutex{}
	return nil
}

func (s *MemStore) CurrentGameID(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current int64
	for id := range s.games {
		current = max(current, id)
	}
	if current == 0 {
		return 0, warroom.ErrGameNotFound
	}
	return current, nil
}

var _ warroom.Store = (*MemStore)(nil)

type memTx struct {
	staged *storedGame
}

func (tx *memTx) LoadGame(context.Context, int64) (*mines.Game, error) {
	return tx.staged.game()
}

func (tx *memTx) MarkMinesPlaced(_ context.Context, _ int64, minesCount int) (bool, error) {
	if tx.staged.minesPlaced {
		return false, nil
	}
	tx.staged.minesPlaced = true
	tx.staged.minesCount = minesCount
	return true, nil
}

func (tx *memTx) UpsertCells(_ context.Context, _ int64, cells []mines.Cell) error {
	for _, c := range cells {
		tx.staged.cells[c.Y*tx.staged.width+c.X] = c
	}
	return nil
}

func (tx *memTx) UpdateGame(_ context.Context, g *mines.Game) error {
	tx.staged.status = g.Status
	tx.staged.startedAt = g.StartedAt
	tx.staged.endedAt = g.EndedAt
	tx.staged.clicks = g.Clicks
	tx.staged.stats = g.Stats
	return nil
}

func (s *MemStore) WithGameLock(_ context.Context, gameID int64, fn func(tx warroom.GameTx) error) error {
	s.mu.Lock()
	lock, ok := s.locks[gameID]
	s.mu.Unlock()
	if !ok {
		return warroom.ErrGameNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	tx := &memTx{staged: s.games[gameID].clone()}
	s.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.games[gameID] = tx.staged
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Pattern(_ context.Context, name string) (*mines.Pattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patterns[name]
	if !ok {
		return nil, warroom.ErrPatternNotFound
	}
	return p, nil
}

func (s *MemStore) CreatePattern(_ context.Context, p *mines.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[p.Name]; ok {
		return warroom.ErrPatternNameTaken
	}
	s.patterns[p.Name] = p
	return nil
}

func (s *MemStore) Highscores(_ context.Context, limit int) ([]warroom.Highscore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scores []warroom.Highscore
	for _, sg := range s.games {
		if sg.status != mines.AllianceWins {
			continue
		}
		h := warroom.Highscore{
			GameID: sg.id, Width: sg.width, Height: sg.height,
			Mines: sg.minesCount, Stats: *sg.stats, EndedAt: sg.endedAt,
		}
		if sg.pattern != nil {
			h.Pattern = &sg.pattern.Name
		}
		scores = append(scores, h)
	}
	slices.SortFunc(scores, func(a, b warroom.Highscore) int {
		return cmp.Compare(b.Stats.Score, a.Stats.Score)
	})
	return scores[:min(limit, len(scores))], nil
}
