package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tradewatch/internal/ports"
)

// dbFor resolves the gorm handle for this call: the transaction from context
// when a unit of work is active, the repository's base handle otherwise.
func dbFor(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}
