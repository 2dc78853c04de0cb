package sqlite

import (
	"context"
	"fmt"

	"github.com/vantage-labs/orcaflow/internal/store"
)

// WithTx runs fn inside a single SQLite transaction: all the writes fn
// issues through tx either commit together or roll back together. A
// cancelled context rolls the transaction back rather than committing
// partial state.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	txStore := &Store{conn: s.conn, db: sqlTx}
	if err := fn(ctx, txStore); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if ctx.Err() != nil {
		_ = sqlTx.Rollback()
		return ctx.Err()
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}
