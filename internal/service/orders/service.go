package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/store"
)

// Service enforces the order lifecycle. Every transition validates the
// current status inside a transaction before mutating anything, which
// guards against double-accept and double-deliver races.
type Service struct {
	store            orderStore
	alloc            idAllocator
	view             localView
	logger           logx.Logger
	operationTimeout time.Duration
	optimisticDelete bool
	now              func() time.Time
}

// Options tunes service behaviour.
type Options struct {
	// OptimisticDelete removes the order from the local view before
	// the store confirms; a failed delete is reported but not rolled
	// back. Status transitions never behave this way.
	OptimisticDelete bool
}

// NewService creates the order state machine service.
func NewService(st orderStore, alloc idAllocator, view localView, timeout time.Duration, logger logx.Logger, opts Options) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		store:            st,
		alloc:            alloc,
		view:             view,
		logger:           logger,
		operationTimeout: timeout,
		optimisticDelete: opts.OptimisticDelete,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CreateInput carries the admin-supplied fields for a new order.
type CreateInput struct {
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Price          int64  `json:"price"`
	SenderPhone    string `json:"senderPhone"`
	RecipientPhone string `json:"recipientPhone"`
	Description    string `json:"description"`
	WorkerID       string `json:"workerId"`
}

func validateCreate(in *CreateInput) error {
	if strings.TrimSpace(in.Origin) == "" || strings.TrimSpace(in.Destination) == "" {
		return apperr.ErrInvalid
	}
	if in.Price <= 0 {
		return apperr.ErrInvalid
	}
	if !domain.ValidatePhone(in.SenderPhone) {
		return apperr.ErrInvalid
	}
	if in.RecipientPhone != "" && !domain.ValidatePhone(in.RecipientPhone) {
		return apperr.ErrInvalid
	}
	return nil
}

// Create allocates an id and persists a new pending order, assigned or
// unassigned.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if err := validateCreate(&in); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o := &domain.Order{
		Origin:         strings.TrimSpace(in.Origin),
		Destination:    strings.TrimSpace(in.Destination),
		Price:          in.Price,
		SenderPhone:    in.SenderPhone,
		RecipientPhone: in.RecipientPhone,
		Description:    in.Description,
		Status:         domain.OrderPending,
		CreatedAt:      s.now(),
	}
	if in.WorkerID != "" {
		w, err := s.store.GetWorker(ctx, in.WorkerID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, fmt.Errorf("assign worker %q: %w", in.WorkerID, apperr.ErrNotFound)
		}
		o.WorkerID = w.ID
		o.WorkerName = w.Name
	}

	id, err := s.alloc.Next(ctx)
	if err != nil {
		return nil, err
	}
	o.ID = id

	if err := s.store.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	s.applyLocal(o)

	s.logger.Info("order created",
		logx.String("order_id", o.ID),
		logx.Int64("price", o.Price),
		logx.String("worker_id", o.WorkerID),
	)
	return o, nil
}

// Accept moves a pending order to accepted on behalf of the courier.
// An unassigned order is claimed by the accepting courier.
func (s *Service) Accept(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error) {
	o, err := s.transition(ctx, orderID, domain.OrderAccepted, func(tx store.TxStore, o *domain.Order) error {
		if o.WorkerID != "" && o.WorkerID != workerID {
			return fmt.Errorf("order %s assigned to another courier: %w", orderID, apperr.ErrConflict)
		}
		if o.WorkerID == "" {
			w, err := workerInTx(ctx, tx, workerID)
			if err != nil {
				return err
			}
			o.WorkerID = w.ID
			o.WorkerName = w.Name
		}
		now := s.now()
		o.Status = domain.OrderAccepted
		o.AcceptedAt = &now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("order accepted",
		logx.String("order_id", orderID),
		logx.String("worker_id", workerID),
	)
	return o, &domain.Notification{
		RecipientID: workerID,
		Message:     fmt.Sprintf("order %s accepted", orderID),
		Severity:    domain.SeverityInfo,
	}, nil
}

// Reject cancels a pending order and returns it to the unassigned
// pool. Courier counters are never touched.
func (s *Service) Reject(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error) {
	o, err := s.transition(ctx, orderID, domain.OrderCancelled, func(_ store.TxStore, o *domain.Order) error {
		if o.WorkerID != workerID {
			return fmt.Errorf("order %s not assigned to courier %s: %w", orderID, workerID, apperr.ErrConflict)
		}
		now := s.now()
		o.Status = domain.OrderCancelled
		o.CancelledAt = &now
		o.WorkerID = ""
		o.WorkerName = ""
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Warn("order rejected",
		logx.String("order_id", orderID),
		logx.String("worker_id", workerID),
	)
	return o, &domain.Notification{
		RecipientID: workerID,
		Message:     fmt.Sprintf("order %s rejected", orderID),
		Severity:    domain.SeverityWarning,
	}, nil
}

// Deliver completes an accepted order and credits the courier's
// counters in the same transaction.
func (s *Service) Deliver(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error) {
	o, err := s.transition(ctx, orderID, domain.OrderDelivered, func(tx store.TxStore, o *domain.Order) error {
		if o.WorkerID != workerID {
			return fmt.Errorf("order %s not assigned to courier %s: %w", orderID, workerID, apperr.ErrConflict)
		}
		now := s.now()
		o.Status = domain.OrderDelivered
		o.DeliveredAt = &now
		return tx.CreditWorkerDelivery(ctx, workerID, o.Price)
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("order delivered",
		logx.String("order_id", orderID),
		logx.String("worker_id", workerID),
		logx.Int64("price", o.Price),
	)
	return o, &domain.Notification{
		RecipientID: workerID,
		Message:     fmt.Sprintf("order %s delivered", orderID),
		Severity:    domain.SeveritySuccess,
	}, nil
}

// AdminEdit patches a non-terminal order and, when the order is
// assigned and something actually changed, returns a before/after diff
// notification for the assigned courier.
func (s *Service) AdminEdit(ctx context.Context, orderID string, patch domain.AdminPatch) (*domain.Order, *domain.Notification, error) {
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated domain.Order
	var notice *domain.Notification

	err := s.store.WithTx(ctx, func(tx store.TxStore) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		if o.Status.Terminal() {
			return fmt.Errorf("order %s is %s: %w", orderID, o.Status, apperr.ErrTerminalState)
		}

		before := *o
		patch.Apply(o)
		if patch.WorkerID != nil {
			if *patch.WorkerID == "" {
				o.WorkerName = ""
			} else {
				w, err := workerInTx(ctx, tx, *patch.WorkerID)
				if err != nil {
					return err
				}
				o.WorkerName = w.Name
			}
		}

		if err := tx.PutOrder(ctx, o); err != nil {
			return err
		}
		updated = *o

		if changes := diffOrders(&before, o); len(changes) > 0 && o.Assigned() {
			notice = &domain.Notification{
				RecipientID: o.WorkerID,
				Message:     editNotice(o.ID, changes),
				Severity:    domain.SeverityInfo,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.applyLocal(&updated)
	return &updated, notice, nil
}

// Delete removes an order. With optimistic delete enabled the local
// view drops the order before the store confirms, and a store failure
// is reported without restoring it.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.optimisticDelete && s.view != nil {
		s.view.DropOrder(orderID)
	}
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		if s.optimisticDelete {
			s.logger.Error("optimistic delete not confirmed",
				logx.String("order_id", orderID),
				logx.Any("err", err),
			)
		}
		return err
	}
	if !s.optimisticDelete && s.view != nil {
		s.view.DropOrder(orderID)
	}
	s.logger.Info("order deleted", logx.String("order_id", orderID))
	return nil
}

// transition runs a guarded status rotation in one transaction.
func (s *Service) transition(ctx context.Context, orderID string, to domain.OrderStatus, mutate func(tx store.TxStore, o *domain.Order) error) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.Order
	err := s.store.WithTx(ctx, func(tx store.TxStore) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		if !domain.CanTransition(o.Status, to) {
			if o.Status.Terminal() {
				return fmt.Errorf("order %s is %s: %w", orderID, o.Status, apperr.ErrTerminalState)
			}
			return fmt.Errorf("order %s: %s -> %s: %w", orderID, o.Status, to, apperr.ErrConflict)
		}
		if err := mutate(tx, o); err != nil {
			return err
		}
		if err := tx.PutOrder(ctx, o); err != nil {
			return err
		}
		result = *o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.applyLocal(&result)
	return &result, nil
}

// workerInTx resolves a worker for name denormalization through the
// open transaction. Reading via the store here would re-enter the
// store lock on the in-memory backend and escape the transaction on
// Postgres.
func workerInTx(ctx context.Context, tx store.TxStore, workerID string) (*domain.Worker, error) {
	w, err := tx.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("worker %s: %w", workerID, apperr.ErrNotFound)
	}
	return w, nil
}

// applyLocal pushes a confirmed mutation into the materialized view so
// readers do not wait for the next feed delivery.
func (s *Service) applyLocal(o *domain.Order) {
	if s.view != nil {
		s.view.PutOrder(*o)
	}
}
