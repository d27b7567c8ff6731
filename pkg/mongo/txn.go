package mongo

import (
	"context"
	"time"
)

// Transaction timeout bounds every transactional call; no order placement or
// settlement should ever block past it.
const transactionTimeout = 15 * time.Second

// Txn implements the checkout Tx port over MongoDB multi-document
// transactions. The session rides the context, so every collection operation
// made inside fn joins the transaction and the whole body commits or aborts
// as one unit.
type Txn struct{}

func NewTxn() Txn { return Txn{} }

func (Txn) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, transactionTimeout)
	defer cancel()

	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}
