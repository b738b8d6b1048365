package mines

import (
	"fmt"
	"slices"
	"strings"
)

// Pattern is a named mine layout. Boards made from a pattern get their
// mines exactly at its coordinates.
type Pattern struct {
	Name        string        `json:"name"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Coordinates []Coordinates `json:"coordinates"`
}

// ParsePattern reads a layout drawn as text, one line per row: '*' or 'x'
// marks a mine, '.', '-', '_' or ' ' an empty cell. Trailing empty cells
// may be omitted; the width is the longest row.
func ParsePattern(name, art string) (*Pattern, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("pattern name must not be empty")
	}
	lines := strings.Split(strings.Trim(art, "\n"), "\n")
	p := &Pattern{Name: name, Height: len(lines)}
	for y, line := range lines {
		line = strings.TrimRight(line, "\r")
		p.Width = max(p.Width, len(line))
		for x, ch := range []byte(line) {
			switch ch {
			case '*', 'x', 'X':
				p.Coordinates = append(p.Coordinates, At(x, y))
			case '.', '-', '_', ' ':
			default:
				return nil, fmt.Errorf("pattern %q: unexpected %q at %v", name, ch, At(x, y))
			}
		}
	}
	if len(p.Coordinates) == 0 {
		return nil, fmt.Errorf("pattern %q has no mines", name)
	}
	return p, nil
}

func (p *Pattern) MinesCount() int {
	return len(p.Coordinates)
}

// Normalize sorts coordinates in (y, x) order and drops duplicates and
// anything outside the pattern's bounds. It reports how many were dropped.
func (p *Pattern) Normalize() int {
	before := len(p.Coordinates)
	p.Coordinates = slices.DeleteFunc(p.Coordinates, func(c Coordinates) bool {
		return c.X < 0 || c.X >= p.Width || c.Y < 0 || c.Y >= p.Height
	})
	slices.SortFunc(p.Coordinates, Coordinates.Compare)
	p.Coordinates = slices.Compact(p.Coordinates)
	return before - len(p.Coordinates)
}

// [Pattern] implements [fmt.Stringer]
func (p Pattern) String() string {
	rows := make([][]byte, p.Height)
	for y := range rows {
		rows[y] = []byte(strings.Repeat(".", p.Width))
	}
	for _, c := range p.Coordinates {
		if 0 <= c.Y && c.Y < p.Height && 0 <= c.X && c.X < p.Width {
			rows[c.Y][c.X] = '*'
		}
	}
	var sb strings.Builder
	for _, row := range rows {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}
