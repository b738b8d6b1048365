package warroom

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vancomm/warroom/internal/broadcast"
	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/presence"
)

const rosterKey = "roster"

type Options struct {
	Limits   mines.Limits
	Debounce time.Duration
}

// Coordinator runs the shared games: it locks and persists every move,
// tracks who is in the room and tells the gateway what changed.
type Coordinator struct {
	logger   *slog.Logger
	store    Store
	registry *presence.Registry
	gateway  broadcast.Gateway
	debounce *broadcast.Debouncer
	opts     Options

	Now func() time.Time

	randMu sync.Mutex
	rnd    *rand.Rand
}

func NewCoordinator(
	logger *slog.Logger,
	store Store,
	registry *presence.Registry,
	gateway broadcast.Gateway,
	opts Options,
) *Coordinator {
	return &Coordinator{
		logger:   logger,
		store:    store,
		registry: registry,
		gateway:  gateway,
		debounce: broadcast.NewDebouncer(opts.Debounce),
		opts:     opts,
		rnd: rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		)),
	}
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// Close cancels pending broadcasts.
func (c *Coordinator) Close() {
	c.debounce.Stop()
}

// NewGame creates the next game of the room. Pattern settings name a
// stored pattern; its layout wins over any dimensions in settings.
func (c *Coordinator) NewGame(ctx context.Context, settings mines.Settings) (*mines.Game, error) {
	var pattern *mines.Pattern
	if settings.Kind == mines.KindPattern {
		p, err := c.store.Pattern(ctx, settings.Name)
		if err != nil {
			return nil, err
		}
		pattern, settings = p, mines.FromPattern(p)
	}
	if err := settings.Validate(c.opts.Limits); err != nil {
		return nil, err
	}

	board, err := mines.Generate(settings.Width, settings.Height)
	if err != nil {
		return nil, err
	}
	board.MinesCount = settings.Mines
	board.Pattern = pattern

	g := mines.NewGame(board)
	if err := c.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	c.logger.Info("new game",
		"game", g.ID, "kind", settings.Kind.String(),
		"width", settings.Width, "height", settings.Height, "mines", settings.Mines)
	return g, nil
}

func (c *Coordinator) CurrentGame(ctx context.Context) (*mines.Game, error) {
	id, err := c.store.CurrentGameID(ctx)
	if err != nil {
		return nil, err
	}
	return c.store.LoadGame(ctx, id)
}

func (c *Coordinator) Game(ctx context.Context, gameID int64) (*mines.Game, error) {
	return c.store.LoadGame(ctx, gameID)
}

func (c *Coordinator) rand() *rand.Rand {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return rand.New(rand.NewPCG(c.rnd.Uint64(), c.rnd.Uint64()))
}

// Act applies a move by token to a game. The game stays locked until the
// move and its consequences are stored; broadcasting happens after.
func (c *Coordinator) Act(
	ctx context.Context, gameID int64, token string, action mines.Action,
) (mines.Result, error) {
	var (
		res   mines.Result
		board []mines.Cell
	)
	err := c.store.WithGameLock(ctx, gameID, func(tx GameTx) error {
		g, err := tx.LoadGame(ctx, gameID)
		if err != nil {
			return err
		}
		g.Now = c.now
		g.Rand = c.rand()

		placed := g.Board.MinesPlaced
		clicks := g.Clicks
		res, err = g.Act(action)
		if err != nil {
			return err
		}

		changed := res.Changed
		if !placed && g.Board.MinesPlaced {
			ok, err := tx.MarkMinesPlaced(ctx, g.Board.ID, g.Board.MinesCount)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("board %d: %w", g.Board.ID, mines.ErrAlreadyPlaced)
			}
			changed = g.Board.Cells()
		}
		if len(changed) > 0 {
			if err := tx.UpsertCells(ctx, g.Board.ID, changed); err != nil {
				return err
			}
		}
		if len(res.Events) > 0 || g.Clicks != clicks {
			if err := tx.UpdateGame(ctx, g); err != nil {
				return err
			}
		}
		if res.Status.Over() && len(res.Events) > 0 {
			board = g.Board.Cells()
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	if res.Noop() {
		return res, nil
	}
	if board != nil {
		c.gateway.CellsChanged(gameID, mines.Views(board, true))
	} else {
		c.gateway.CellsChanged(gameID, mines.Views(res.Changed, false))
	}
	for _, e := range res.Events {
		c.gateway.Lifecycle(gameID, e, res.Status)
	}
	c.activate(ctx, token)
	return res, nil
}

func (c *Coordinator) activate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	flipped, err := c.registry.Activate(ctx, token)
	if errors.Is(err, presence.ErrNotFound) {
		return
	} else if err != nil {
		c.logger.Warn("unable to activate participant", "token", token, "error", err)
		return
	}
	if flipped {
		c.scheduleRoster(0)
	}
}

// scheduleRoster pushes the roster once a change that shows up after the
// given delay is visible. Requests a pending push already covers are
// folded into it.
func (c *Coordinator) scheduleRoster(after time.Duration) {
	c.debounce.Schedule(rosterKey, after, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		roster, err := c.registry.Roster(ctx)
		if err != nil {
			c.logger.Error("unable to read roster", "error", err)
			return
		}
		c.gateway.RosterChanged(roster)
	})
}

func (c *Coordinator) Join(ctx context.Context, token string) error {
	joined, err := c.registry.Add(ctx, token)
	if err != nil {
		return err
	}
	if joined {
		c.logger.Debug("participant joined", "token", token)
		c.scheduleRoster(0)
	}
	return nil
}

// Leave starts the participant's grace window. The roster is pushed once
// the window has passed, unless they come back first.
func (c *Coordinator) Leave(ctx context.Context, token string) error {
	if err := c.registry.Expire(ctx, token); err != nil {
		return err
	}
	c.logger.Debug("participant left", "token", token)
	c.scheduleRoster(c.registry.ShortGrace())
	return nil
}

func (c *Coordinator) Roster(ctx context.Context) (presence.Roster, error) {
	return c.registry.Roster(ctx)
}

// CreatePattern parses art into a named pattern and stores it.
func (c *Coordinator) CreatePattern(ctx context.Context, name, art string) (*mines.Pattern, error) {
	p, err := mines.ParsePattern(name, art)
	if err != nil {
		return nil, &mines.SettingsError{Field: "pattern", Message: err.Error()}
	}
	if err := mines.FromPattern(p).Validate(c.opts.Limits); err != nil {
		return nil, err
	}
	if err := c.store.CreatePattern(ctx, p); err != nil {
		return nil, err
	}
	c.logger.Info("new pattern", "name", p.Name, "mines", p.MinesCount())
	return p, nil
}

func (c *Coordinator) Pattern(ctx context.Context, name string) (*mines.Pattern, error) {
	return c.store.Pattern(ctx, name)
}

func (c *Coordinator) Highscores(ctx context.Context, limit int) ([]Highscore, error) {
	return c.store.Highscores(ctx, limit)
}
