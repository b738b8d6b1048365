package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	Log.SetLevel(logrus.WarnLevel)
	m.Run()
}

// newBoard builds a saved board with mines at the given coordinates.
func newBoard(t *testing.T, width, height int, mines ...Coordinates) *Board {
	t.Helper()
	b, err := Generate(width, height)
	require.NoError(t, err)
	b.ID = 1
	for _, c := range mines {
		b.Cell(c).Mine = true
	}
	b.MinesCount = len(mines)
	b.MinesPlaced = len(mines) > 0
	return b
}

func TestGenerate(t *testing.T) {
	b, err := Generate(4, 3)
	require.NoError(t, err)

	assert.Equal(t, 12, b.TotalCells())
	cells := b.Cells()
	for i := 1; i < len(cells); i++ {
		assert.True(t, cells[i-1].Less(cells[i].Coordinates), "cells out of order at %d", i)
	}
	for _, c := range cells {
		assert.False(t, c.Mine || c.Revealed || c.Flagged)
		assert.Nil(t, c.Value)
	}

	_, err = Generate(0, 3)
	assert.Error(t, err)
}

func TestBoardNeighborsClipped(t *testing.T) {
	b := newBoard(t, 3, 3)

	assert.Len(t, b.Neighbors(At(0, 0)), 3)
	assert.Len(t, b.Neighbors(At(1, 0)), 5)
	assert.Len(t, b.Neighbors(At(1, 1)), 8)
	assert.Len(t, At(0, 0).Neighbors(), 8)
}

func TestCellsAt(t *testing.T) {
	b := newBoard(t, 3, 3)

	cells, err := b.CellsAt(At(0, 0), At(2, 2))
	require.NoError(t, err)
	assert.Equal(t, At(2, 2), cells[1].Coordinates)

	_, err = b.CellsAt(At(0, 0), At(3, 0))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestPlaceMinesRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for sx := range 6 {
		for sy := range 6 {
			b := newBoard(t, 6, 6)
			seed := At(sx, sy)
			require.NoError(t, b.PlaceMinesRandom(seed, 35, r))

			assert.Len(t, b.Mines(), 35)
			assert.False(t, b.Cell(seed).Mine, "mine on seed %v", seed)
			assert.LessOrEqual(t, b.MinesCount, b.TotalCells()-1)
		}
	}
}

func TestPlaceMinesTwice(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b := newBoard(t, 6, 6)
	require.NoError(t, b.PlaceMinesRandom(At(0, 0), 5, r))
	before := b.Mines()

	assert.ErrorIs(t, b.PlaceMinesRandom(At(0, 0), 5, r), ErrAlreadyPlaced)
	assert.ErrorIs(t, b.PlaceMinesFromPattern(At(0, 0), []Coordinates{At(5, 5)}), ErrAlreadyPlaced)
	assert.Equal(t, before, b.Mines())
}

func TestPlaceMinesUnsaved(t *testing.T) {
	b, err := Generate(6, 6)
	require.NoError(t, err)

	assert.ErrorIs(t, b.PlaceMinesRandom(At(0, 0), 5, rand.New(rand.NewPCG(1, 2))), ErrUnsavedBoard)
	assert.ErrorIs(t, b.PlaceMinesFromPattern(At(0, 0), nil), ErrUnsavedBoard)
	assert.Empty(t, b.Mines())
}

func TestPlaceMinesTooMany(t *testing.T) {
	b := newBoard(t, 3, 3)
	assert.ErrorIs(t, b.PlaceMinesRandom(At(0, 0), 9, rand.New(rand.NewPCG(1, 2))), ErrTooManyMines)

	require.NoError(t, b.PlaceMinesRandom(At(0, 0), 8, rand.New(rand.NewPCG(1, 2))))
	assert.Len(t, b.Mines(), 8)
}

func TestPlaceMinesFromPatternDropsSeed(t *testing.T) {
	b := newBoard(t, 4, 4)
	pattern := []Coordinates{At(0, 0), At(1, 1), At(3, 3), At(1, 1)}

	require.NoError(t, b.PlaceMinesFromPattern(At(1, 1), pattern))

	assert.Equal(t, []Coordinates{At(0, 0), At(3, 3)}, b.Mines())
	assert.Equal(t, 2, b.MinesCount)
	assert.False(t, b.Cell(At(1, 1)).Mine)
}

func TestPlaceMinesFromPatternOutOfBounds(t *testing.T) {
	b := newBoard(t, 4, 4)
	err := b.PlaceMinesFromPattern(At(0, 0), []Coordinates{At(1, 1), At(4, 0)})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Empty(t, b.Mines())
	assert.False(t, b.MinesPlaced)
}

func TestRestoreBoard(t *testing.T) {
	src := newBoard(t, 3, 2, At(2, 1))
	src.Reveal(At(0, 0))

	b, err := RestoreBoard(7, 3, 2, 1, nil, src.Cells())
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.True(t, b.MinesPlaced)
	assert.Equal(t, src.String(), b.String())

	_, err = RestoreBoard(7, 3, 2, 1, nil, src.Cells()[:5])
	assert.Error(t, err)

	dup := src.Cells()
	dup[1] = dup[0]
	_, err = RestoreBoard(7, 3, 2, 1, nil, dup)
	assert.Error(t, err)
}

func TestVictoryMonotonic(t *testing.T) {
	b := newBoard(t, 3, 3, At(2, 2))
	assert.False(t, b.Victory())

	for _, c := range b.Cells() {
		if !c.Mine {
			b.Cell(c.Coordinates).reveal(0)
		}
	}
	assert.True(t, b.Victory())

	// revealing the mine as well keeps the predicate true
	b.Cell(At(2, 2)).reveal(0)
	assert.True(t, b.Victory())
}

func TestBoardString(t *testing.T) {
	b := newBoard(t, 3, 2, At(2, 1))
	b.ToggleFlag(At(2, 1))
	b.Reveal(At(0, 0))

	assert.Equal(t, ". 1 -\n. 1 *\n", b.String())
}

func TestCellViewHidesMines(t *testing.T) {
	b := newBoard(t, 3, 2, At(2, 1))
	b.Reveal(At(0, 0))

	for _, v := range Views(b.Cells(), false) {
		assert.False(t, v.Mine, "mine leaked at (%d, %d)", v.X, v.Y)
	}
	mine := b.Cell(At(2, 1)).View(true)
	assert.True(t, mine.Mine)
	assert.False(t, mine.Revealed)
}
