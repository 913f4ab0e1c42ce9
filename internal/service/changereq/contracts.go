package changereq

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/store"
)

// requestStore defines the persistence operations used by the workflow.
type requestStore interface {
	WithTx(ctx context.Context, fn func(tx store.TxStore) error) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetWorker(ctx context.Context, id string) (*domain.Worker, error)
	SaveChangeRequest(ctx context.Context, cr *domain.ChangeRequest) error
}

// localView mirrors confirmed mutations into the materialized view.
type localView interface {
	PutOrder(o domain.Order)
	PutChangeRequest(cr domain.ChangeRequest)
	DropChangeRequest(id string)
}
