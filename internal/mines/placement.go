package mines

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

func (b *Board) checkPlacement(seed Coordinates) error {
	if b.MinesPlaced {
		violation("second mine placement", logrus.Fields{"board": b.ID})
		return ErrAlreadyPlaced
	}
	if b.ID == 0 {
		return ErrUnsavedBoard
	}
	if !b.InBounds(seed) {
		return fmt.Errorf("seed cell %v: %w", seed, ErrOutOfBounds)
	}
	return nil
}

// PlaceMinesRandom puts count mines on cells chosen uniformly at random
// among all cells except seed.
func (b *Board) PlaceMinesRandom(seed Coordinates, count int, r *rand.Rand) error {
	if err := b.checkPlacement(seed); err != nil {
		return err
	}
	if count < 0 || count > len(b.cells)-1 {
		return fmt.Errorf("%d mines on %d cells: %w", count, len(b.cells), ErrTooManyMines)
	}

	/*
	 * Write down the list of possible mine locations, then pick count
	 * of them off the list.
	 */
	seedIndex := b.index(seed)
	candidates := make([]int, 0, len(b.cells)-1)
	for i := range b.cells {
		if i != seedIndex {
			candidates = append(candidates, i)
		}
	}
	k := len(candidates)
	for range count {
		i := r.IntN(k)
		b.cells[candidates[i]].Mine = true
		k--
		candidates[i] = candidates[k]
	}

	b.MinesCount = count
	b.MinesPlaced = true
	return nil
}

// PlaceMinesFromPattern puts mines exactly at coordinates, except at seed:
// a pattern mine on the seed cell is dropped so the opening click is safe.
func (b *Board) PlaceMinesFromPattern(seed Coordinates, coordinates []Coordinates) error {
	if err := b.checkPlacement(seed); err != nil {
		return err
	}
	cells, err := b.CellsAt(coordinates...)
	if err != nil {
		return err
	}

	count := 0
	for _, cell := range cells {
		if cell.Coordinates == seed || cell.Mine {
			continue
		}
		cell.Mine = true
		count++
	}

	b.MinesCount = count
	b.MinesPlaced = true
	return nil
}
