package middlewares

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// SetTxToContext stores a transaction in the context. Services that own a
// transactional boundary use it to scope their repository calls to one
// transaction; repositories pick it up through their txGetter.
func SetTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}
