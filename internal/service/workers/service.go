package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/ledger"
	"delivery-dispatch/internal/logx"
)

// Service coordinates courier and expense bookkeeping. Earnings and
// completed-order counters are deliberately out of reach here: only
// the deliver transition moves them.
type Service struct {
	store            workerStore
	view             localView
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
	newID            func() string
}

// NewService creates a worker Service.
func NewService(st workerStore, view localView, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		store:            st,
		view:             view,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func validateCreate(w *domain.Worker) error {
	if w == nil {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(w.Name) == "" {
		return apperr.ErrInvalid
	}
	if !domain.ValidatePhone(w.Phone) {
		return apperr.ErrInvalid
	}
	if w.Status == "" {
		w.Status = domain.WorkerActive
	}
	if !w.Status.Valid() {
		return apperr.ErrInvalid
	}
	return nil
}

func validateUpdate(u *domain.PartialWorkerUpdate) error {
	if u.ID == "" || u.Empty() {
		return apperr.ErrInvalid
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperr.ErrInvalid
	}
	if u.Phone != nil && !domain.ValidatePhone(*u.Phone) {
		return apperr.ErrInvalid
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.ErrInvalid
	}
	return nil
}

// Get retrieves a worker by its ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Worker, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	w, err := s.store.GetWorker(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.ErrNotFound
	}
	return w, nil
}

// List returns every worker.
func (s *Service) List(ctx context.Context) ([]domain.Worker, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.ListWorkers(ctx)
}

// Create persists a new worker. Counters start at zero; the phone must
// be unique (the store maps a duplicate to ErrConflict).
func (s *Service) Create(ctx context.Context, w *domain.Worker) (*domain.Worker, error) {
	if err := validateCreate(w); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	w.ID = s.newID()
	w.OrdersCompleted = 0
	w.TotalEarnings = 0
	if err := s.store.SaveWorker(ctx, w); err != nil {
		return nil, err
	}
	if s.view != nil {
		s.view.PutWorker(*w)
	}
	s.logger.Info("worker created",
		logx.String("worker_id", w.ID),
		logx.String("phone", w.Phone),
	)
	return w, nil
}

// Update applies a partial update (name, phone, status, opening
// balance, location, tone).
func (s *Service) Update(ctx context.Context, u domain.PartialWorkerUpdate) (*domain.Worker, error) {
	if err := validateUpdate(&u); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.store.UpdateWorker(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	w, err := s.store.GetWorker(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if w != nil && s.view != nil {
		s.view.PutWorker(*w)
	}
	return w, nil
}

// Delete removes a worker. Historical orders keep their denormalized
// worker name, so nothing cascades.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.DeleteWorker(ctx, id); err != nil {
		return err
	}
	if s.view != nil {
		s.view.DropWorker(id)
	}
	s.logger.Info("worker deleted", logx.String("worker_id", id))
	return nil
}

// AddExpense records a courier expense against their own account.
func (s *Service) AddExpense(ctx context.Context, workerID, title string, amount int64) (*domain.Expense, error) {
	if strings.TrimSpace(title) == "" || amount <= 0 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("worker %s: %w", workerID, apperr.ErrNotFound)
	}

	e := &domain.Expense{
		ID:       s.newID(),
		WorkerID: workerID,
		Title:    strings.TrimSpace(title),
		Amount:   amount,
		At:       s.now(),
	}
	if err := s.store.SaveExpense(ctx, e); err != nil {
		return nil, err
	}
	if s.view != nil {
		s.view.PutExpense(*e)
	}
	s.logger.Info("expense recorded",
		logx.String("expense_id", e.ID),
		logx.String("worker_id", workerID),
		logx.Int64("amount", amount),
	)
	return e, nil
}

// DeleteExpense removes an expense record.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if s.view != nil {
		s.view.DropExpense(id)
	}
	return nil
}

// ListExpenses returns every expense.
func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.ListExpenses(ctx)
}

// Summary recomputes the courier's financial summary for a window from
// the raw entities. It is never cached or persisted, so it cannot
// drift from the orders and expenses it is derived from.
func (s *Service) Summary(ctx context.Context, workerID string, from, to time.Time) (*ledger.Summary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("worker %s: %w", workerID, apperr.ErrNotFound)
	}

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	sum := ledger.Compute(ledger.Input{
		OpeningBalance: w.OpeningBalance,
		Delivered:      ledger.FilterDelivered(orders, workerID, from, to),
		Expenses:       ledger.FilterExpenses(expenses, workerID, from, to),
	})
	return &sum, nil
}
