package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

// TxManager defines the transaction management interface.
type TxManager interface {
	// WithTransaction executes fn within a transaction. An error or panic rolls it back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

type txContextKey struct{}

// ContextWithTx stores a transaction in the context for use by repositories.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// DBFromContext returns the transaction stored in ctx, or fallback.
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}

func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Panic in transaction: %v", p)
				panic(p)
			}
		}()

		if err := fn(ContextWithTx(ctx, tx)); err != nil {
			return fmt.Errorf("transaction failed: %w", err)
		}
		return nil
	})
}
