package mines

import (
	"fmt"
	"strings"
)

type Board struct {
	ID          int64 // 0 until the board has been saved
	Width       int
	Height      int
	MinesCount  int
	Pattern     *Pattern
	MinesPlaced bool

	cells []Cell /* row-major, index y*Width+x */
}

// Generate allocates a board with one unrevealed cell per coordinate in
// [0,width) x [0,height).
func Generate(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid board dimensions %dx%d", width, height)
	}
	b := &Board{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
	for y := range height {
		for x := range width {
			b.cells[y*width+x].Coordinates = At(x, y)
		}
	}
	return b, nil
}

// RestoreBoard rebuilds a board from persisted cells. Every coordinate of
// the board must be present exactly once.
func RestoreBoard(
	id int64, width, height, minesCount int, pattern *Pattern, cells []Cell,
) (*Board, error) {
	b, err := Generate(width, height)
	if err != nil {
		return nil, err
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf(
			"board %d: have %d cells, want %d", id, len(cells), width*height,
		)
	}
	seen := make([]bool, len(b.cells))
	for _, c := range cells {
		if !b.InBounds(c.Coordinates) {
			return nil, fmt.Errorf("board %d: cell %v: %w", id, c.Coordinates, ErrOutOfBounds)
		}
		i := b.index(c.Coordinates)
		if seen[i] {
			return nil, fmt.Errorf("board %d: duplicate cell %v", id, c.Coordinates)
		}
		seen[i] = true
		b.cells[i] = c
		if c.Mine {
			b.MinesPlaced = true
		}
	}
	b.ID = id
	b.MinesCount = minesCount
	b.Pattern = pattern
	return b, nil
}

func (b *Board) index(c Coordinates) int {
	return c.Y*b.Width + c.X
}

func (b *Board) InBounds(c Coordinates) bool {
	return 0 <= c.X && c.X < b.Width && 0 <= c.Y && c.Y < b.Height
}

func (b *Board) TotalCells() int {
	return len(b.cells)
}

// Cell returns the cell at c, or nil if c is outside the board.
func (b *Board) Cell(c Coordinates) *Cell {
	if !b.InBounds(c) {
		return nil
	}
	return &b.cells[b.index(c)]
}

// Cells returns a copy of all cells in (y, x) order.
func (b *Board) Cells() []Cell {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return cells
}

// CellsAt looks up several cells at once. It fails if any coordinate lies
// outside the board.
func (b *Board) CellsAt(cs ...Coordinates) ([]*Cell, error) {
	cells := make([]*Cell, 0, len(cs))
	for _, c := range cs {
		cell := b.Cell(c)
		if cell == nil {
			return nil, fmt.Errorf("%v: %w", c, ErrOutOfBounds)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// Neighbors returns the in-bounds neighbors of c.
func (b *Board) Neighbors(c Coordinates) []Coordinates {
	ns := c.Neighbors()
	clipped := ns[:0]
	for _, n := range ns {
		if b.InBounds(n) {
			clipped = append(clipped, n)
		}
	}
	return clipped
}

func (b *Board) countNeighbors(c Coordinates, pred func(*Cell) bool) int {
	count := 0
	for _, n := range b.Neighbors(c) {
		if pred(&b.cells[b.index(n)]) {
			count++
		}
	}
	return count
}

func (b *Board) MineNeighbors(c Coordinates) int {
	return b.countNeighbors(c, func(cell *Cell) bool { return cell.Mine })
}

func (b *Board) FlaggedNeighbors(c Coordinates) int {
	return b.countNeighbors(c, func(cell *Cell) bool { return cell.Flagged })
}

// Victory reports whether every non-mine cell has been revealed.
func (b *Board) Victory() bool {
	for i := range b.cells {
		if !b.cells[i].Mine && !b.cells[i].Revealed {
			return false
		}
	}
	return true
}

func (b *Board) RevealedCount() int {
	n := 0
	for i := range b.cells {
		if b.cells[i].Revealed {
			n++
		}
	}
	return n
}

func (b *Board) FlaggedCount() int {
	n := 0
	for i := range b.cells {
		if b.cells[i].Flagged {
			n++
		}
	}
	return n
}

// Mines returns the coordinates of all placed mines in (y, x) order.
func (b *Board) Mines() []Coordinates {
	var mines []Coordinates
	for i := range b.cells {
		if b.cells[i].Mine {
			mines = append(mines, b.cells[i].Coordinates)
		}
	}
	return mines
}

// [Board] implements [fmt.Stringer]
func (b *Board) String() string {
	var sb strings.Builder
	for y := range b.Height {
		for x := range b.Width {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.cells[y*b.Width+x].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
