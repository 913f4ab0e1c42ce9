package handlers

import (
	"context"
	"errors"
	"net/http"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/service/orders"
)

// OrderHandler serves HTTP endpoints for order resources and
// transitions.
type OrderHandler struct {
	uc    OrdersUsecase
	state StateProvider
}

// NewOrderHandler wires the order usecase into HTTP handlers.
func NewOrderHandler(uc OrdersUsecase, state StateProvider) *OrderHandler {
	return &OrderHandler{uc: uc, state: state}
}

// transitionResponse pairs the mutated order with the notification
// payload the presentation layer routes to audio/push collaborators.
type transitionResponse struct {
	Order        *domain.Order        `json:"order"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrTerminalState), errors.Is(err, apperr.ErrConflict):
		writeError(w, r, http.StatusConflict, "state conflict")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	o, err := h.uc.Create(ctx, req)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+o.ID)
	writeJSON(w, r, http.StatusCreated, o)
}

// List handles GET /orders from the materialized snapshot.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.state.Snapshot().Orders)
}

// GetByID handles GET /orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := idFromURL(r, "id")
	for _, o := range h.state.Snapshot().Orders {
		if o.ID == id {
			writeJSON(w, r, http.StatusOK, o)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "not found")
}

// workerRef carries the acting courier's id for transition endpoints.
type workerRef struct {
	WorkerID string `json:"workerId"`
}

// Accept handles POST /orders/{id}/accept.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.Accept)
}

// Reject handles POST /orders/{id}/reject.
func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.Reject)
}

// Deliver handles POST /orders/{id}/deliver.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.Deliver)
}

func (h *OrderHandler) transition(
	w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, orderID, workerID string) (*domain.Order, *domain.Notification, error),
) {
	id := idFromURL(r, "id")
	var req workerRef
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if req.WorkerID == "" {
		writeError(w, r, http.StatusBadRequest, "workerId required")
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	o, notice, err := fn(ctx, id, req.WorkerID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transitionResponse{Order: o, Notification: notice})
}

// Update handles PATCH /orders/{id} (admin edit).
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idFromURL(r, "id")
	var patch domain.AdminPatch
	if ok := decodeJSON(w, r, &patch); !ok {
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	o, notice, err := h.uc.AdminEdit(ctx, id, patch)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transitionResponse{Order: o, Notification: notice})
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idFromURL(r, "id")
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	if err := h.uc.Delete(ctx, id); err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
