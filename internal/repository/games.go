package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

const liveGameIndex = "game_live_idx"

type gameRow struct {
	GameID      int64        `db:"game_id"`
	Status      string       `db:"status"`
	StartedAt   *time.Time   `db:"started_at"`
	EndedAt     *time.Time   `db:"ended_at"`
	Clicks      int          `db:"clicks"`
	Stats       *mines.Stats `db:"stats"`
	BoardID     int64        `db:"board_id"`
	Width       int          `db:"width"`
	Height      int          `db:"height"`
	MinesCount  int          `db:"mines_count"`
	MinesPlaced bool         `db:"mines_placed"`

	PatternName        *string             `db:"pattern_name"`
	PatternWidth       *int                `db:"pattern_width"`
	PatternHeight      *int                `db:"pattern_height"`
	PatternCoordinates []mines.Coordinates `db:"pattern_coordinates"`
}

func (r gameRow) pattern() *mines.Pattern {
	if r.PatternName == nil {
		return nil
	}
	return &mines.Pattern{
		Name:        *r.PatternName,
		Width:       *r.PatternWidth,
		Height:      *r.PatternHeight,
		Coordinates: r.PatternCoordinates,
	}
}

func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func orNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (q *Queries) createGame(ctx context.Context, g *mines.Game) error {
	var patternName *string
	if p := g.Board.Pattern; p != nil {
		patternName = &p.Name
	}

	err := q.db.QueryRow(ctx, `
	INSERT INTO board (width, height, mines_count, pattern_id)
	VALUES (
		@width, @height, @mines_count,
		(SELECT pattern_id FROM pattern WHERE name = @pattern_name)
	)
	RETURNING board_id;`,
		pgx.NamedArgs{
			"width":        g.Board.Width,
			"height":       g.Board.Height,
			"mines_count":  g.Board.MinesCount,
			"pattern_name": patternName,
		},
	).Scan(&g.Board.ID)
	if err != nil {
		return fmt.Errorf("unable to insert board: %w", err)
	}

	if err := q.insertCells(ctx, g.Board.ID, g.Board.Cells()); err != nil {
		return err
	}

	var status string
	err = q.db.QueryRow(ctx, `
	INSERT INTO game (board_id)
	VALUES ($1)
	RETURNING game_id, status;`,
		g.Board.ID,
	).Scan(&g.ID, &status)
	if name, ok := uniqueViolation(err); ok && name == liveGameIndex {
		return warroom.ErrLiveGameExists
	} else if err != nil {
		return fmt.Errorf("unable to insert game: %w", err)
	}
	g.Status, err = mines.ParseStatus(status)
	return err
}

func (q *Queries) LoadGame(ctx context.Context, gameID int64) (*mines.Game, error) {
	rows, _ := q.db.Query(ctx, `
	SELECT
		g.game_id,
		g.status,
		g.started_at,
		g.ended_at,
		g.clicks,
		g.stats,
		b.board_id,
		b.width,
		b.height,
		b.mines_count,
		b.mines_placed_at IS NOT NULL mines_placed,
		p.name pattern_name,
		p.width pattern_width,
		p.height pattern_height,
		p.coordinates pattern_coordinates
	FROM game g
		JOIN board b USING (board_id)
		LEFT OUTER JOIN pattern p USING (pattern_id)
	WHERE g.game_id = $1;`,
		gameID,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[gameRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, warroom.ErrGameNotFound
	} else if err != nil {
		return nil, fmt.Errorf("unable to fetch game %d: %w", gameID, err)
	}

	status, err := mines.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}

	cells, err := q.boardCells(ctx, row.BoardID)
	if err != nil {
		return nil, err
	}
	board, err := mines.RestoreBoard(
		row.BoardID, row.Width, row.Height, row.MinesCount, row.pattern(), cells,
	)
	if err != nil {
		return nil, fmt.Errorf("board %d is corrupt: %w", row.BoardID, err)
	}
	board.MinesPlaced = row.MinesPlaced

	g := mines.NewGame(board)
	g.ID = row.GameID
	g.Status = status
	g.StartedAt = orZero(row.StartedAt)
	g.EndedAt = orZero(row.EndedAt)
	g.Clicks = row.Clicks
	g.Stats = row.Stats
	return g, nil
}

func (q *Queries) CurrentGameID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		"SELECT game_id FROM game ORDER BY game_id DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, warroom.ErrGameNotFound
	}
	return id, err
}

func (q *Queries) MarkMinesPlaced(ctx context.Context, boardID int64, minesCount int) (bool, error) {
	tag, err := q.db.Exec(ctx, `
	UPDATE board
	SET mines_placed_at = now(), mines_count = $2
	WHERE board_id = $1 AND mines_placed_at IS NULL;`,
		boardID, minesCount,
	)
	if err != nil {
		return false, fmt.Errorf("unable to mark mines placed on board %d: %w", boardID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) UpdateGame(ctx context.Context, g *mines.Game) error {
	_, err := q.db.Exec(ctx, `
	UPDATE game
	SET
		status = @status,
		started_at = @started_at,
		ended_at = @ended_at,
		clicks = @clicks,
		stats = @stats
	WHERE game_id = @game_id;`,
		pgx.NamedArgs{
			"game_id":    g.ID,
			"status":     string(g.Status),
			"started_at": orNil(g.StartedAt),
			"ended_at":   orNil(g.EndedAt),
			"clicks":     g.Clicks,
			"stats":      g.Stats,
		},
	)
	if err != nil {
		return fmt.Errorf("unable to update game %d: %w", g.ID, err)
	}
	return nil
}
