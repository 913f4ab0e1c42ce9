package handlers

import (
	"net/http"

	"delivery-dispatch/internal/domain"
)

// ChangeRequestHandler serves the courier edit-proposal endpoints.
type ChangeRequestHandler struct {
	uc    ChangeRequestsUsecase
	state StateProvider
}

// NewChangeRequestHandler wires the workflow usecase into HTTP handlers.
func NewChangeRequestHandler(uc ChangeRequestsUsecase, state StateProvider) *ChangeRequestHandler {
	return &ChangeRequestHandler{uc: uc, state: state}
}

// submitRequest is the POST /orders/{id}/change-requests body.
type submitRequest struct {
	WorkerID string            `json:"workerId"`
	Patch    domain.OrderPatch `json:"patch"`
}

// Submit handles POST /orders/{id}/change-requests.
func (h *ChangeRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	orderID := idFromURL(r, "id")
	var req submitRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if req.WorkerID == "" {
		writeError(w, r, http.StatusBadRequest, "workerId required")
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	cr, err := h.uc.Submit(ctx, orderID, req.WorkerID, req.Patch)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	w.Header().Set("Location", "/change-requests/"+cr.ID)
	writeJSON(w, r, http.StatusCreated, cr)
}

// List handles GET /change-requests from the materialized snapshot.
func (h *ChangeRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.state.Snapshot().ChangeRequests)
}

// Approve handles POST /change-requests/{id}/approve.
func (h *ChangeRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	o, notice, err := h.uc.Approve(ctx, idFromURL(r, "id"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transitionResponse{Order: o, Notification: notice})
}

// Reject handles POST /change-requests/{id}/reject.
func (h *ChangeRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	notice, err := h.uc.Reject(ctx, idFromURL(r, "id"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transitionResponse{Notification: notice})
}
