package persistence

import (
	"context"

	"github.com/invoicehub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txContextKey struct{}

// withTx stores a transaction handle in the context so repositories
// called within the transaction join it
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// session returns the transaction from the context when one is active,
// otherwise the fallback connection. Every repository method goes
// through this so multi-repository units of work commit atomically.
func session(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// GormTxRunner implements shared.TxRunner on a GORM connection
type GormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner creates a new GormTxRunner
func NewGormTxRunner(db *gorm.DB) *GormTxRunner {
	return &GormTxRunner{db: db}
}

// InTx runs fn inside a single transaction. Nested calls join the
// transaction already carried by the context.
func (r *GormTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

// Ensure GormTxRunner implements TxRunner
var _ shared.TxRunner = (*GormTxRunner)(nil)
