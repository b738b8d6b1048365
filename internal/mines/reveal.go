package mines

import (
	"github.com/gammazero/deque"
)

// Outcome describes what a board action did. Hitting a mine or a rejected
// chord are regular outcomes, not errors.
type Outcome struct {
	Changed       []Coordinates
	Exploded      bool
	ChordRejected bool

	seen map[Coordinates]struct{}
}

func (o *Outcome) add(c Coordinates) {
	if o.seen == nil {
		o.seen = make(map[Coordinates]struct{})
	}
	if _, ok := o.seen[c]; ok {
		return
	}
	o.seen[c] = struct{}{}
	o.Changed = append(o.Changed, c)
}

// Noop reports whether no cell changed.
func (o Outcome) Noop() bool {
	return len(o.Changed) == 0
}

// Reveal opens the cell at c. Revealing a blank cell cascades through its
// whole blank region and the numbered cells bordering it; flagged cells in
// the way are unflagged and revealed too. Already revealed and flagged
// cells are left alone.
func (b *Board) Reveal(c Coordinates) Outcome {
	var o Outcome
	cell := b.Cell(c)
	if cell == nil || cell.Revealed || cell.Flagged {
		return o
	}
	b.cascade(c, &o)
	return o
}

// cascade reveals from start until the blank region is exhausted or a
// mine is hit, in which case the rest of the work is dropped.
func (b *Board) cascade(start Coordinates, o *Outcome) {
	var todo deque.Deque[Coordinates]
	queued := make([]bool, len(b.cells))

	todo.PushBack(start)
	queued[b.index(start)] = true

	for todo.Len() > 0 {
		c := todo.PopFront()
		cell := &b.cells[b.index(c)]
		if cell.Revealed {
			continue
		}
		cell.reveal(b.MineNeighbors(c))
		o.add(c)

		if cell.Mine {
			o.Exploded = true
			return
		}
		if *cell.Value != 0 {
			continue
		}
		for _, n := range b.Neighbors(c) {
			i := b.index(n)
			if queued[i] || b.cells[i].Revealed {
				continue
			}
			queued[i] = true
			todo.PushBack(n)
		}
	}
}

// Chord reveals every unflagged neighbor of the revealed cell at c, provided
// the number of flags around it matches its value. Every neighbor is
// processed even after a mine goes off. If the flags do not match, the
// neighborhood is only dehighlighted and ChordRejected is set.
func (b *Board) Chord(c Coordinates) Outcome {
	var o Outcome
	cell := b.Cell(c)
	if cell == nil {
		return o
	}
	if !cell.Revealed || cell.Value == nil || b.FlaggedNeighbors(c) != *cell.Value {
		b.dehighlightAround(c, &o)
		o.ChordRejected = true
		return o
	}
	for _, n := range b.Neighbors(c) {
		neighbor := &b.cells[b.index(n)]
		if neighbor.dehighlight() {
			o.add(n)
		}
		if neighbor.Flagged || neighbor.Revealed {
			continue
		}
		b.cascade(n, &o)
	}
	return o
}

// Highlight previews a chord: on a revealed cell it marks the unrevealed,
// unflagged neighbors; on an unrevealed cell it marks the cell itself.
func (b *Board) Highlight(c Coordinates) Outcome {
	var o Outcome
	cell := b.Cell(c)
	if cell == nil {
		return o
	}
	if !cell.Revealed {
		if cell.Highlightable() && !cell.HighlightOrigin {
			cell.Highlighted = true
			cell.HighlightOrigin = true
			o.add(c)
		}
		return o
	}
	for _, n := range b.Neighbors(c) {
		neighbor := &b.cells[b.index(n)]
		if neighbor.Highlightable() && !neighbor.Highlighted {
			neighbor.Highlighted = true
			o.add(n)
		}
	}
	return o
}

func (b *Board) Dehighlight(c Coordinates) Outcome {
	var o Outcome
	if b.InBounds(c) {
		b.dehighlightAround(c, &o)
	}
	return o
}

func (b *Board) dehighlightAround(c Coordinates, o *Outcome) {
	if b.cells[b.index(c)].dehighlight() {
		o.add(c)
	}
	for _, n := range b.Neighbors(c) {
		if b.cells[b.index(n)].dehighlight() {
			o.add(n)
		}
	}
}

// ToggleFlag flags or unflags an unrevealed cell.
func (b *Board) ToggleFlag(c Coordinates) Outcome {
	var o Outcome
	cell := b.Cell(c)
	if cell == nil || cell.Revealed {
		return o
	}
	cell.Flagged = !cell.Flagged
	cell.dehighlight()
	o.add(c)
	return o
}
