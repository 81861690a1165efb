package state

import (
	"context"
	"errors"

	"rebalance_bot/pkg/db"

	"github.com/jackc/pgx/v5"
)

// Postgres stores the run marker durably so a restart mid-day cannot
// re-trigger the cycle.
type Postgres struct {
	db db.TxManager
}

func NewPostgres(txm db.TxManager) *Postgres {
	return &Postgres{db: txm}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	return p.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx,
			`CREATE TABLE IF NOT EXISTS run_marker (id INT PRIMARY KEY, day TEXT NOT NULL)`)
		return err
	})
}

func (p *Postgres) LastRun(ctx context.Context) (string, error) {
	var day string
	err := p.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		row := tx.QueryRow(ctxTx, `SELECT day FROM run_marker WHERE id = 1`)
		if err := row.Scan(&day); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				day = ""
				return nil
			}
			return err
		}
		return nil
	})
	return day, err
}

func (p *Postgres) SetLastRun(ctx context.Context, day string) error {
	return p.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO run_marker (id, day) VALUES (1, $1)
			 ON CONFLICT (id) DO UPDATE SET day = EXCLUDED.day`, day)
		return err
	})
}
