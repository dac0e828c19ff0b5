package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithinTx runs fn inside a single transaction. fn returning an error
// rolls everything back; otherwise the transaction commits.
func (p *Postgres) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres - WithinTx - Pool.Begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("postgres - WithinTx - Rollback: %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres - WithinTx - Commit: %w", err)
	}
	return nil
}
