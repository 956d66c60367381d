package repo

import (
	"context"
	"errors"
)

// Tx is the transaction handle services hold while they span several store
// calls. pgx.Tx satisfies it, as does the in-memory store's transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

var ErrForeignTx = errors.New("transaction was not opened by this store")
