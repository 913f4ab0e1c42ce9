package handlers

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/ledger"
	"delivery-dispatch/internal/service/orders"
	"delivery-dispatch/internal/store"
	dsync "delivery-dispatch/internal/sync"
)

// OrdersUsecase is the order state machine surface consumed over HTTP.
type OrdersUsecase interface {
	Create(ctx context.Context, in orders.CreateInput) (*domain.Order, error)
	Accept(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error)
	Reject(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error)
	Deliver(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error)
	AdminEdit(ctx context.Context, orderID string, patch domain.AdminPatch) (*domain.Order, *domain.Notification, error)
	Delete(ctx context.Context, orderID string) error
}

// ChangeRequestsUsecase is the courier edit-proposal workflow surface.
type ChangeRequestsUsecase interface {
	Submit(ctx context.Context, orderID, workerID string, patch domain.OrderPatch) (*domain.ChangeRequest, error)
	Approve(ctx context.Context, requestID string) (*domain.Order, *domain.Notification, error)
	Reject(ctx context.Context, requestID string) (*domain.Notification, error)
}

// WorkersUsecase is the courier and expense bookkeeping surface.
type WorkersUsecase interface {
	Get(ctx context.Context, id string) (*domain.Worker, error)
	List(ctx context.Context) ([]domain.Worker, error)
	Create(ctx context.Context, w *domain.Worker) (*domain.Worker, error)
	Update(ctx context.Context, u domain.PartialWorkerUpdate) (*domain.Worker, error)
	Delete(ctx context.Context, id string) error
	AddExpense(ctx context.Context, workerID, title string, amount int64) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	Summary(ctx context.Context, workerID string, from, to time.Time) (*ledger.Summary, error)
}

// StateProvider exposes the read-only materialized snapshot.
type StateProvider interface {
	Snapshot() dsync.Snapshot
}

// BulkStore is the backup/restore/reset surface of the persistence
// collaborator.
type BulkStore interface {
	BackupAll(ctx context.Context) (*store.Snapshot, error)
	RestoreAll(ctx context.Context, s *store.Snapshot) error
	FullReset(ctx context.Context) error
}
