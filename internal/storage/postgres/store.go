package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solverBridge/internal/model"
)

// Store provides Postgres persistence for round outcomes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutRound upserts one round record with its solutions.
func (s *Store) PutRound(ctx context.Context, record model.RoundRecord) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO rounds (
			auction_id, solver, started_at, finished_at, solution_count, error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (auction_id, solver)
		DO UPDATE SET
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			solution_count = EXCLUDED.solution_count,
			error = EXCLUDED.error,
			updated_at = now()
	`,
		record.AuctionID,
		record.Solver,
		record.StartedAt,
		record.FinishedAt,
		len(record.Solutions),
		record.Error,
	)
	for _, solution := range record.Solutions {
		batch.Queue(`
			INSERT INTO round_solutions (
				auction_id, solver, solution_id, trade_count, interaction_count,
				score_kind, score, gas, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (auction_id, solver, solution_id)
			DO UPDATE SET
				trade_count = EXCLUDED.trade_count,
				interaction_count = EXCLUDED.interaction_count,
				score_kind = EXCLUDED.score_kind,
				score = EXCLUDED.score,
				gas = EXCLUDED.gas,
				updated_at = now()
		`,
			record.AuctionID,
			record.Solver,
			int64(solution.ID),
			solution.Trades,
			solution.Interactions,
			solution.ScoreKind,
			solution.Score,
			int64(solution.Gas),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
