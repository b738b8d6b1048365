package mines

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Status string

const (
	StandingBy      Status = "standing_by"
	SweepInProgress Status = "sweep_in_progress"
	AllianceWins    Status = "alliance_wins"
	MinesWin        Status = "mines_win"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StandingBy, SweepInProgress, AllianceWins, MinesWin:
		return st, nil
	}
	return "", fmt.Errorf("unknown game status %q", s)
}

func (s Status) Over() bool {
	return s == AllianceWins || s == MinesWin
}

// Event is a one-shot lifecycle notification.
type Event string

const (
	EventStarted Event = "game_started"
	EventVictory Event = "game_won"
	EventDefeat  Event = "game_lost"
)

type Move string

const (
	MoveReveal      Move = "reveal"
	MoveChord       Move = "chord"
	MoveFlag        Move = "flag"
	MoveHighlight   Move = "highlight"
	MoveDehighlight Move = "dehighlight"
)

// ParseMove accepts full move names as well as the one-letter websocket
// commands.
func ParseMove(s string) (Move, error) {
	switch s {
	case "reveal", "open", "o":
		return MoveReveal, nil
	case "chord", "c":
		return MoveChord, nil
	case "flag", "f":
		return MoveFlag, nil
	case "highlight", "h":
		return MoveHighlight, nil
	case "dehighlight", "u":
		return MoveDehighlight, nil
	}
	return "", fmt.Errorf("unknown move %q", s)
}

type Action struct {
	Move Move
	At   Coordinates
}

type Result struct {
	Move          Move
	Changed       []Cell
	Events        []Event
	Status        Status
	Exploded      bool
	ChordRejected bool
}

func (r Result) Noop() bool {
	return len(r.Changed) == 0 && len(r.Events) == 0
}

// Game owns one board and serializes every action on it.
type Game struct {
	mu sync.Mutex

	ID        int64
	Board     *Board
	Status    Status
	StartedAt time.Time // zero while standing by
	EndedAt   time.Time // zero until the game is over
	Clicks    int
	Stats     *Stats // set on victory only

	Now  func() time.Time
	Rand *rand.Rand
}

func NewGame(board *Board) *Game {
	return &Game{Board: board, Status: StandingBy}
}

func (g *Game) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

func (g *Game) rand() *rand.Rand {
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		))
	}
	return g.Rand
}

func (g *Game) fields() logrus.Fields {
	return logrus.Fields{"game": g.ID, "status": g.Status}
}

// Start places the mines around seed and begins the sweep. It is a no-op
// unless the game is standing by, and reports whether it did anything.
func (g *Game) Start(seed Coordinates) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.start(seed)
}

func (g *Game) start(seed Coordinates) (bool, error) {
	if g.Status != StandingBy {
		return false, nil
	}
	var err error
	if p := g.Board.Pattern; p != nil {
		err = g.Board.PlaceMinesFromPattern(seed, p.Coordinates)
	} else {
		err = g.Board.PlaceMinesRandom(seed, g.Board.MinesCount, g.rand())
	}
	if err != nil {
		return false, fmt.Errorf("unable to start game %d: %w", g.ID, err)
	}
	g.StartedAt = g.now()
	g.Status = SweepInProgress
	Log.WithFields(g.fields()).WithField("seed", seed).Debug("game started")
	return true, nil
}

func (g *Game) EndInDefeat() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.end(MinesWin)
}

func (g *Game) EndInVictory() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.end(AllianceWins)
}

func (g *Game) end(status Status) bool {
	if g.Status != SweepInProgress {
		if g.Status.Over() {
			violation("game ended twice", g.fields())
		}
		return false
	}
	g.EndedAt = g.now()
	g.Status = status
	if status == AllianceWins {
		stats := NewStats(Calc3BV(g.Board), g.Clicks, g.EndedAt.Sub(g.StartedAt))
		g.Stats = &stats
	}
	Log.WithFields(g.fields()).Info("game over")
	return true
}

// Act applies a participant's move. The game's lock is held for the whole
// move, including any cascade and the victory check that follows it.
// Losing is reported through the result; errors are reserved for invalid
// input and placement failures.
func (g *Game) Act(a Action) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res := Result{Move: a.Move, Status: g.Status}
	if !g.Board.InBounds(a.At) {
		return res, fmt.Errorf("%v: %w", a.At, ErrOutOfBounds)
	}
	if g.Status.Over() {
		return res, nil
	}

	if a.Move == MoveReveal && g.Status == StandingBy {
		if cell := g.Board.Cell(a.At); cell.Flagged {
			return res, nil
		}
		started, err := g.start(a.At)
		if err != nil {
			return res, err
		}
		if started {
			res.Events = append(res.Events, EventStarted)
		}
	}

	var o Outcome
	switch a.Move {
	case MoveReveal:
		o = g.Board.Reveal(a.At)
	case MoveChord:
		o = g.Board.Chord(a.At)
	case MoveFlag:
		o = g.Board.ToggleFlag(a.At)
	case MoveHighlight:
		o = g.Board.Highlight(a.At)
	case MoveDehighlight:
		o = g.Board.Dehighlight(a.At)
	default:
		return res, fmt.Errorf("unknown move %q", a.Move)
	}

	counts := a.Move == MoveReveal || a.Move == MoveChord || a.Move == MoveFlag
	if counts && !o.Noop() && !o.ChordRejected {
		g.Clicks++
	}

	res.Exploded = o.Exploded
	res.ChordRejected = o.ChordRejected
	res.Changed = make([]Cell, 0, len(o.Changed))
	for _, c := range o.Changed {
		res.Changed = append(res.Changed, *g.Board.Cell(c))
	}

	if g.Status == SweepInProgress {
		switch {
		case o.Exploded:
			if g.end(MinesWin) {
				res.Events = append(res.Events, EventDefeat)
			}
		case (a.Move == MoveReveal || a.Move == MoveChord) && g.Board.Victory():
			if g.end(AllianceWins) {
				res.Events = append(res.Events, EventVictory)
			}
		}
	}
	res.Status = g.Status
	return res, nil
}

// Snapshot returns a copy of the game's cells and status taken under the
// game's lock.
func (g *Game) Snapshot() (Status, []Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Status, g.Board.Cells()
}
