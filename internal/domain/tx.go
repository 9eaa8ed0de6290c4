package domain

import "context"

// TransactionManager runs a function inside a database transaction.
// Repositories participating in the transaction read it from the context.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
