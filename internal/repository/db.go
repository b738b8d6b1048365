package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// Repository is the postgres implementation of [warroom.Store].
type Repository struct {
	*Queries
	pool *pgxpool.Pool
}

var _ warroom.Store = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Queries: New(pool), pool: pool}
}

// WithGameLock runs fn in a transaction holding the game's advisory lock,
// so moves on one game are serialized across every server instance.
func (r *Repository) WithGameLock(
	ctx context.Context, gameID int64, fn func(tx warroom.GameTx) error,
) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", gameID); err != nil {
			return err
		}
		return fn(r.WithTx(tx))
	})
}

func (r *Repository) CreateGame(ctx context.Context, g *mines.Game) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return r.WithTx(tx).createGame(ctx, g)
	})
}

// uniqueViolation reports the constraint a unique violation tripped over.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
