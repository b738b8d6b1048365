package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

const patternNameKey = "pattern_name_key"

func (q *Queries) Pattern(ctx context.Context, name string) (*mines.Pattern, error) {
	rows, _ := q.db.Query(ctx,
		"SELECT name, width, height, coordinates FROM pattern WHERE name = $1",
		name,
	)
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[mines.Pattern])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, warroom.ErrPatternNotFound
	}
	return p, err
}

func (q *Queries) CreatePattern(ctx context.Context, p *mines.Pattern) error {
	p.Normalize()
	_, err := q.db.Exec(ctx, `
	INSERT INTO pattern (name, width, height, coordinates)
	VALUES ($1, $2, $3, $4);`,
		p.Name, p.Width, p.Height, p.Coordinates,
	)
	if name, ok := uniqueViolation(err); ok && name == patternNameKey {
		return warroom.ErrPatternNameTaken
	} else if err != nil {
		return fmt.Errorf("unable to insert pattern %q: %w", p.Name, err)
	}
	return nil
}
