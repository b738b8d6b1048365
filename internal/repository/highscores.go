// custom query
package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

func (q *Queries) Highscores(ctx context.Context, limit int) ([]warroom.Highscore, error) {
	rows, err := q.db.Query(ctx, `
	SELECT
		g.game_id,
		b.width,
		b.height,
		b.mines_count,
		p.name,
		g.stats,
		g.ended_at
	FROM game g
		JOIN board b USING (board_id)
		LEFT OUTER JOIN pattern p USING (pattern_id)
	WHERE
		g.status = $1
		AND g.stats IS NOT NULL
		AND g.ended_at IS NOT NULL
	ORDER BY (g.stats->>'score')::integer DESC, g.ended_at
	LIMIT $2;`,
		string(mines.AllianceWins), limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (warroom.Highscore, error) {
		var (
			h       warroom.Highscore
			endedAt time.Time
		)
		err := row.Scan(
			&h.GameID, &h.Width, &h.Height, &h.Mines, &h.Pattern, &h.Stats, &endedAt,
		)
		h.EndedAt = endedAt.UTC()
		return h, err
	})
}
