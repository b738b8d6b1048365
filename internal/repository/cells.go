package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/warroom/internal/mines"
)

type cellRow struct {
	X               int  `db:"x"`
	Y               int  `db:"y"`
	Mine            bool `db:"mine"`
	Revealed        bool `db:"revealed"`
	Flagged         bool `db:"flagged"`
	Highlighted     bool `db:"highlighted"`
	HighlightOrigin bool `db:"highlight_origin"`
	Value           *int `db:"value"`
}

// insertCells copies a freshly generated board into the cell table.
func (q *Queries) insertCells(ctx context.Context, boardID int64, cells []mines.Cell) error {
	_, err := q.db.CopyFrom(
		ctx,
		pgx.Identifier{"cell"},
		[]string{"board_id", "x", "y", "mine"},
		pgx.CopyFromSlice(len(cells), func(i int) ([]any, error) {
			c := cells[i]
			return []any{boardID, c.X, c.Y, c.Mine}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("unable to copy cells of board %d: %w", boardID, err)
	}
	return nil
}

func (q *Queries) boardCells(ctx context.Context, boardID int64) ([]mines.Cell, error) {
	rows, _ := q.db.Query(ctx, `
	SELECT x, y, mine, revealed, flagged, highlighted, highlight_origin, value
	FROM cell
	WHERE board_id = $1
	ORDER BY y, x;`,
		boardID,
	)
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (mines.Cell, error) {
		r, err := pgx.RowToStructByName[cellRow](row)
		if err != nil {
			return mines.Cell{}, err
		}
		return mines.Cell{
			Coordinates:     mines.At(r.X, r.Y),
			Mine:            r.Mine,
			Revealed:        r.Revealed,
			Flagged:         r.Flagged,
			Highlighted:     r.Highlighted,
			HighlightOrigin: r.HighlightOrigin,
			Value:           r.Value,
		}, nil
	})
}

const upsertCell = `
INSERT INTO cell (
	board_id, x, y, mine, revealed, flagged, highlighted, highlight_origin, value
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (board_id, y, x)
DO UPDATE SET
	mine = excluded.mine,
	revealed = excluded.revealed,
	flagged = excluded.flagged,
	highlighted = excluded.highlighted,
	highlight_origin = excluded.highlight_origin,
	value = excluded.value;`

func (q *Queries) UpsertCells(ctx context.Context, boardID int64, cells []mines.Cell) error {
	batch := &pgx.Batch{}
	for _, c := range cells {
		batch.Queue(upsertCell,
			boardID, c.X, c.Y, c.Mine, c.Revealed, c.Flagged,
			c.Highlighted, c.HighlightOrigin, c.Value,
		)
	}
	if err := q.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("unable to upsert cells of board %d: %w", boardID, err)
	}
	return nil
}
