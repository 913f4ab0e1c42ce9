package workers

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// workerStore defines the persistence operations required here.
type workerStore interface {
	ListWorkers(ctx context.Context) ([]domain.Worker, error)
	GetWorker(ctx context.Context, id string) (*domain.Worker, error)
	SaveWorker(ctx context.Context, w *domain.Worker) error
	UpdateWorker(ctx context.Context, u domain.PartialWorkerUpdate) (bool, error)
	DeleteWorker(ctx context.Context, id string) error

	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	SaveExpense(ctx context.Context, e *domain.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// localView mirrors confirmed mutations into the materialized view.
type localView interface {
	PutWorker(w domain.Worker)
	DropWorker(id string)
	PutExpense(e domain.Expense)
	DropExpense(id string)
}
