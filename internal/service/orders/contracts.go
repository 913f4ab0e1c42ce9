package orders

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/store"
)

// orderStore defines the persistence operations required by the state
// machine.
type orderStore interface {
	WithTx(ctx context.Context, fn func(tx store.TxStore) error) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	SaveOrder(ctx context.Context, o *domain.Order) error
	DeleteOrder(ctx context.Context, id string) error
	GetWorker(ctx context.Context, id string) (*domain.Worker, error)
}

// idAllocator issues day-scoped order identifiers.
type idAllocator interface {
	Next(ctx context.Context) (string, error)
}

// localView is the optional materialized view kept current between
// feed deliveries. Transitions touch it only after the store confirms;
// deletes may touch it first when optimistic delete is enabled.
type localView interface {
	PutOrder(o domain.Order)
	DropOrder(id string)
}
