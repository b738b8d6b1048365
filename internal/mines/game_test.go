package mines

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// patternGame returns a saved game that will place its mines exactly at
// the given coordinates on the first reveal.
func patternGame(t *testing.T, width, height int, mines ...Coordinates) (*Game, *fakeClock) {
	t.Helper()
	b, err := Generate(width, height)
	require.NoError(t, err)
	b.ID = 1
	b.Pattern = &Pattern{Name: "test", Width: width, Height: height, Coordinates: mines}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := NewGame(b)
	g.ID = 1
	g.Now = clock.Now
	return g, clock
}

func TestGameFirstRevealStarts(t *testing.T) {
	g, clock := patternGame(t, 3, 3, At(2, 2))

	res, err := g.Act(Action{MoveReveal, At(1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []Event{EventStarted}, res.Events)
	assert.Equal(t, SweepInProgress, g.Status)
	assert.Equal(t, clock.Now(), g.StartedAt)
	assert.True(t, g.EndedAt.IsZero())
	assert.Equal(t, 1, g.Clicks)

	started, err := g.Start(At(0, 0))
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, []Coordinates{At(2, 2)}, g.Board.Mines())
}

func TestGameScenarioCascadeToVictory(t *testing.T) {
	g, clock := patternGame(t, 3, 3, At(2, 2))

	clock.Advance(time.Second)
	res, err := g.Act(Action{MoveReveal, At(0, 0)})
	require.NoError(t, err)

	assert.Len(t, res.Changed, 8)
	assert.Equal(t, []Event{EventStarted, EventVictory}, res.Events)
	assert.Equal(t, AllianceWins, res.Status)
	require.NotNil(t, g.Stats)
	assert.Equal(t, 1, g.Stats.ThreeBV)
	assert.Equal(t, 1, g.Stats.Clicks)
	assert.Equal(t, 100.0, g.Stats.Efficiency)
}

func TestGameScenarioMineOnSecondClick(t *testing.T) {
	g, clock := patternGame(t, 3, 3, At(2, 2), At(0, 2))

	_, err := g.Act(Action{MoveReveal, At(1, 1)})
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	res, err := g.Act(Action{MoveReveal, At(2, 2)})
	require.NoError(t, err)

	assert.True(t, res.Exploded)
	assert.Equal(t, []Event{EventDefeat}, res.Events)
	assert.Equal(t, MinesWin, g.Status)
	assert.Len(t, res.Changed, 1)
	assert.Equal(t, clock.Now(), g.EndedAt)
	assert.Nil(t, g.Stats)
}

func TestGameSeedNeverExplodes(t *testing.T) {
	// the pattern puts a mine on the very first click
	g, _ := patternGame(t, 3, 3, At(0, 0), At(1, 0))

	res, err := g.Act(Action{MoveReveal, At(0, 0)})
	require.NoError(t, err)

	assert.False(t, res.Exploded)
	assert.Equal(t, SweepInProgress, g.Status)
	assert.Equal(t, 1, g.Board.MinesCount)
}

func TestGameRandomStart(t *testing.T) {
	b, err := Generate(9, 9)
	require.NoError(t, err)
	b.ID = 3
	b.MinesCount = 10
	g := NewGame(b)
	g.Rand = rand.New(rand.NewPCG(1, 2))

	_, err = g.Act(Action{MoveReveal, At(4, 4)})
	require.NoError(t, err)
	assert.Len(t, b.Mines(), 10)
	assert.True(t, b.Cell(At(4, 4)).Revealed)
}

func TestGameStartUnsavedBoard(t *testing.T) {
	b, err := Generate(9, 9)
	require.NoError(t, err)
	b.MinesCount = 10
	g := NewGame(b)

	_, err = g.Act(Action{MoveReveal, At(4, 4)})
	assert.ErrorIs(t, err, ErrUnsavedBoard)
	assert.Equal(t, StandingBy, g.Status)
	assert.True(t, g.StartedAt.IsZero())
}

func TestGameTerminalIsFrozen(t *testing.T) {
	g, _ := patternGame(t, 3, 3, At(2, 2))
	_, err := g.Act(Action{MoveReveal, At(0, 0)})
	require.NoError(t, err)
	require.Equal(t, AllianceWins, g.Status)

	endedAt, stats := g.EndedAt, *g.Stats

	assert.False(t, g.EndInDefeat())
	assert.False(t, g.EndInVictory())
	res, err := g.Act(Action{MoveFlag, At(2, 2)})
	require.NoError(t, err)
	assert.True(t, res.Noop())

	assert.Equal(t, AllianceWins, g.Status)
	assert.Equal(t, endedAt, g.EndedAt)
	assert.Equal(t, stats, *g.Stats)
}

func TestGameEndOnlyFromSweep(t *testing.T) {
	g, _ := patternGame(t, 3, 3, At(2, 2))
	assert.False(t, g.EndInVictory())
	assert.Equal(t, StandingBy, g.Status)
}

func TestGameFlaggedFirstClickDoesNotStart(t *testing.T) {
	g, _ := patternGame(t, 3, 3, At(2, 2))
	_, err := g.Act(Action{MoveFlag, At(0, 0)})
	require.NoError(t, err)

	res, err := g.Act(Action{MoveReveal, At(0, 0)})
	require.NoError(t, err)
	assert.True(t, res.Noop())
	assert.Equal(t, StandingBy, g.Status)
}

func TestGameOutOfBounds(t *testing.T) {
	g, _ := patternGame(t, 3, 3, At(2, 2))
	_, err := g.Act(Action{MoveReveal, At(3, 3)})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestGameRejectedChordIsNotAClick(t *testing.T) {
	g, _ := patternGame(t, 3, 3, At(0, 0), At(2, 2))
	_, err := g.Act(Action{MoveReveal, At(1, 1)})
	require.NoError(t, err)

	res, err := g.Act(Action{MoveChord, At(1, 1)})
	require.NoError(t, err)
	assert.True(t, res.ChordRejected)
	assert.Equal(t, 1, g.Clicks)
}

func TestGameConcurrentActions(t *testing.T) {
	g, _ := patternGame(t, 16, 16, At(0, 0), At(15, 15), At(8, 8))
	_, err := g.Act(Action{MoveReveal, At(4, 4)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for x := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range 16 {
				g.Act(Action{MoveHighlight, At(x, y)})
				g.Act(Action{MoveChord, At(x, y)})
				g.Act(Action{MoveDehighlight, At(x, y)})
			}
		}()
	}
	wg.Wait()

	status, cells := g.Snapshot()
	assert.NotEqual(t, StandingBy, status)
	for _, c := range cells {
		assert.False(t, c.Revealed && c.Flagged)
	}
}

func TestParseMove(t *testing.T) {
	for in, want := range map[string]Move{
		"o": MoveReveal, "reveal": MoveReveal, "c": MoveChord,
		"f": MoveFlag, "h": MoveHighlight, "u": MoveDehighlight,
	} {
		got, err := ParseMove(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMove("x")
	assert.Error(t, err)
}
