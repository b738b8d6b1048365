package mines

import "strconv"

// Cell is the per-position state of a board. Cells are created once by
// [Generate] and live as long as their board.
type Cell struct {
	Coordinates
	Mine            bool
	Revealed        bool
	Flagged         bool
	Highlighted     bool
	HighlightOrigin bool

	// Value is nil until the cell is revealed, then holds the number of
	// mines around it. 0 means blank.
	Value *int
}

func (c Cell) Blank() bool {
	return c.Value != nil && *c.Value == 0
}

func (c Cell) Highlightable() bool {
	return !c.Revealed && !c.Flagged
}

func (c *Cell) reveal(value int) {
	c.Revealed = true
	c.Flagged = false
	c.Highlighted = false
	c.HighlightOrigin = false
	c.Value = &value
}

// dehighlight reports whether anything changed.
func (c *Cell) dehighlight() bool {
	if !c.Highlighted && !c.HighlightOrigin {
		return false
	}
	c.Highlighted = false
	c.HighlightOrigin = false
	return true
}

// [Cell] implements [fmt.Stringer]
func (c Cell) String() string {
	switch {
	case c.Flagged:
		return "*"
	case !c.Revealed:
		if c.Highlighted || c.HighlightOrigin {
			return "+"
		}
		return "-"
	case c.Mine:
		return "!"
	case c.Blank():
		return "."
	default:
		return strconv.Itoa(*c.Value)
	}
}

// CellView is what participants get to see of a cell. Mines stay hidden
// until they are revealed or the game is over.
type CellView struct {
	X           int  `json:"x"`
	Y           int  `json:"y"`
	Revealed    bool `json:"revealed"`
	Flagged     bool `json:"flagged,omitempty"`
	Highlighted bool `json:"highlighted,omitempty"`
	Mine        bool `json:"mine,omitempty"`
	Value       *int `json:"value,omitempty"`
}

func (c Cell) View(showMines bool) CellView {
	return CellView{
		X:           c.X,
		Y:           c.Y,
		Revealed:    c.Revealed,
		Flagged:     c.Flagged,
		Highlighted: c.Highlighted || c.HighlightOrigin,
		Mine:        c.Mine && (c.Revealed || showMines),
		Value:       c.Value,
	}
}

func Views(cells []Cell, showMines bool) []CellView {
	views := make([]CellView, len(cells))
	for i, c := range cells {
		views[i] = c.View(showMines)
	}
	return views
}
