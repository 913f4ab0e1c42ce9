// Package changereq implements the courier edit-proposal workflow: a
// courier may not change an existing order directly, so edits travel
// as pending change requests resolved by the admin.
package changereq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/store"
)

// Service manages the pending change-request set. Requests are keyed
// by their own id: several may target one order at once, and resolving
// one leaves the others pending. Overlapping approvals are applied
// verbatim in resolution order; conflicts are not detected.
type Service struct {
	store            requestStore
	view             localView
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
	newID            func() string
}

// NewService creates the change-request workflow service.
func NewService(st requestStore, view localView, timeout time.Duration, logger logx.Logger) *Service {
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

func validatePatch(p domain.OrderPatch) error {
	if p.Empty() {
		return apperr.ErrInvalid
	}
	if p.Price != nil && *p.Price <= 0 {
		return apperr.ErrInvalid
	}
	if p.SenderPhone != nil && !domain.ValidatePhone(*p.SenderPhone) {
		return apperr.ErrInvalid
	}
	if p.RecipientPhone != nil && *p.RecipientPhone != "" && !domain.ValidatePhone(*p.RecipientPhone) {
		return apperr.ErrInvalid
	}
	return nil
}

// Submit records a courier's edit proposal for an in-flight order.
// The order is not mutated here.
func (s *Service) Submit(ctx context.Context, orderID, workerID string, patch domain.OrderPatch) (*domain.ChangeRequest, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	if o.Status.Terminal() {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, o.Status, apperr.ErrTerminalState)
	}
	if o.WorkerID != workerID {
		return nil, fmt.Errorf("order %s not assigned to courier %s: %w", orderID, workerID, apperr.ErrConflict)
	}

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("worker %s: %w", workerID, apperr.ErrNotFound)
	}

	cr := &domain.ChangeRequest{
		ID:          s.newID(),
		OrderID:     orderID,
		WorkerID:    w.ID,
		WorkerName:  w.Name,
		Patch:       patch,
		SubmittedAt: s.now(),
	}
	if err := s.store.SaveChangeRequest(ctx, cr); err != nil {
		return nil, err
	}
	if s.view != nil {
		s.view.PutChangeRequest(*cr)
	}

	s.logger.Info("change request submitted",
		logx.String("request_id", cr.ID),
		logx.String("order_id", orderID),
		logx.String("worker_id", workerID),
	)
	return cr, nil
}

// Approve merges the request's patch into the target order and removes
// the request, atomically. The patch is applied verbatim even if the
// order changed since submission. A request whose order disappeared or
// reached a terminal state is resolved without a merge.
func (s *Service) Approve(ctx context.Context, requestID string) (*domain.Order, *domain.Notification, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		merged domain.Order
		hasOrd bool
		notice *domain.Notification
	)
	err := s.store.WithTx(ctx, func(tx store.TxStore) error {
		cr, err := tx.GetChangeRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if cr == nil {
			return fmt.Errorf("change request %s: %w", requestID, apperr.ErrNotFound)
		}

		o, err := tx.GetOrderForUpdate(ctx, cr.OrderID)
		if err != nil {
			return err
		}
		if o != nil && !o.Status.Terminal() {
			domain.AdminPatch{OrderPatch: cr.Patch}.Apply(o)
			if err := tx.PutOrder(ctx, o); err != nil {
				return err
			}
			merged = *o
			hasOrd = true
		}

		if err := tx.DeleteChangeRequest(ctx, requestID); err != nil {
			return err
		}
		notice = &domain.Notification{
			RecipientID: cr.WorkerID,
			Message:     fmt.Sprintf("change request for order %s approved", cr.OrderID),
			Severity:    domain.SeveritySuccess,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if s.view != nil {
		s.view.DropChangeRequest(requestID)
		if hasOrd {
			s.view.PutOrder(merged)
		}
	}
	s.logger.Info("change request approved", logx.String("request_id", requestID))
	if !hasOrd {
		return nil, notice, nil
	}
	return &merged, notice, nil
}

// Reject removes the request from the pending set without touching the
// order.
func (s *Service) Reject(ctx context.Context, requestID string) (*domain.Notification, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var notice *domain.Notification
	err := s.store.WithTx(ctx, func(tx store.TxStore) error {
		cr, err := tx.GetChangeRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if cr == nil {
			return fmt.Errorf("change request %s: %w", requestID, apperr.ErrNotFound)
		}
		if err := tx.DeleteChangeRequest(ctx, requestID); err != nil {
			return err
		}
		notice = &domain.Notification{
			RecipientID: cr.WorkerID,
			Message:     fmt.Sprintf("change request for order %s rejected", cr.OrderID),
			Severity:    domain.SeverityWarning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.view != nil {
		s.view.DropChangeRequest(requestID)
	}
	s.logger.Warn("change request rejected", logx.String("request_id", requestID))
	return notice, nil
}
