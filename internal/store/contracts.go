package store

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// TxStore is the transactional view handed to status-transition and
// approval closures. Reads inside a transaction lock the row, so a
// concurrent double-accept sees the already-rotated status.
type TxStore interface {
	GetOrderForUpdate(ctx context.Context, id string) (*domain.Order, error)
	PutOrder(ctx context.Context, o *domain.Order) error
	GetWorker(ctx context.Context, id string) (*domain.Worker, error)
	CreditWorkerDelivery(ctx context.Context, workerID string, price int64) error
	GetChangeRequestForUpdate(ctx context.Context, id string) (*domain.ChangeRequest, error)
	DeleteChangeRequest(ctx context.Context, id string) error
}

// TxRunner opens a transaction and executes fn within it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx TxStore) error) error
}

// Store is the persistence collaborator contract. Save and Update are
// idempotent; Update applies only the supplied fields. Get methods
// return (nil, nil) when the entity does not exist.
type Store interface {
	TxRunner

	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	SaveOrder(ctx context.Context, o *domain.Order) error
	UpdateOrder(ctx context.Context, id string, patch domain.AdminPatch) (bool, error)
	DeleteOrder(ctx context.Context, id string) error

	ListWorkers(ctx context.Context) ([]domain.Worker, error)
	GetWorker(ctx context.Context, id string) (*domain.Worker, error)
	SaveWorker(ctx context.Context, w *domain.Worker) error
	UpdateWorker(ctx context.Context, u domain.PartialWorkerUpdate) (bool, error)
	DeleteWorker(ctx context.Context, id string) error

	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	SaveExpense(ctx context.Context, e *domain.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	ListChangeRequests(ctx context.Context) ([]domain.ChangeRequest, error)
	SaveChangeRequest(ctx context.Context, cr *domain.ChangeRequest) error
	DeleteChangeRequest(ctx context.Context, id string) error

	// NextDailySequence atomically increments and returns the counter
	// for the given day key. First call on a new day returns 1.
	NextDailySequence(ctx context.Context, day string) (int64, error)

	BackupAll(ctx context.Context) (*Snapshot, error)
	RestoreAll(ctx context.Context, s *Snapshot) error
	FullReset(ctx context.Context) error
}

// Snapshot is a full dump of every collection, including the daily
// sequence counters so historical id continuity survives a restore.
type Snapshot struct {
	Orders         []domain.Order         `json:"orders"`
	Workers        []domain.Worker        `json:"workers"`
	Expenses       []domain.Expense       `json:"expenses"`
	ChangeRequests []domain.ChangeRequest `json:"changeRequests"`
	Sequences      map[string]int64       `json:"sequences"`
}
