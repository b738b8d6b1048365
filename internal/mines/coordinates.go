package mines

import (
	"cmp"
	"fmt"
)

type Coordinates struct {
	X int `json:"x" schema:"x,required"`
	Y int `json:"y" schema:"y,required"`
}

func At(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

// [Coordinates] implements [fmt.Stringer]
func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Compare orders coordinates row-major: by y, then by x.
func (c Coordinates) Compare(o Coordinates) int {
	if r := cmp.Compare(c.Y, o.Y); r != 0 {
		return r
	}
	return cmp.Compare(c.X, o.X)
}

func (c Coordinates) Less(o Coordinates) bool {
	return c.Compare(o) < 0
}

func (c Coordinates) Translate(dx, dy int) Coordinates {
	return Coordinates{X: c.X + dx, Y: c.Y + dy}
}

// Neighbors returns the 8 positions at Chebyshev distance 1, unclipped.
// Use [Board.Neighbors] to get only the ones inside a board.
func (c Coordinates) Neighbors() []Coordinates {
	ns := make([]Coordinates, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				ns = append(ns, c.Translate(dx, dy))
			}
		}
	}
	return ns
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Adjacent reports whether o is one of c's 8 neighbors.
func (c Coordinates) Adjacent(o Coordinates) bool {
	return c != o && absDiff(c.X, o.X) <= 1 && absDiff(c.Y, o.Y) <= 1
}
