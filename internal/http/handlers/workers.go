package handlers

import (
	"errors"
	"net/http"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

// WorkerHandler serves HTTP endpoints for courier and expense
// resources.
type WorkerHandler struct{ uc WorkersUsecase }

// NewWorkerHandler wires a WorkersUsecase into HTTP handlers.
func NewWorkerHandler(uc WorkersUsecase) *WorkerHandler { return &WorkerHandler{uc: uc} }

func writeWorkerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, r, http.StatusConflict, "phone already exists")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// GetByID handles GET /workers/{id}.
func (h *WorkerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	c, err := h.uc.Get(ctx, idFromURL(r, "id"))
	if err != nil {
		writeWorkerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

// List handles GET /workers.
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	list, err := h.uc.List(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

// Create handles POST /workers.
func (h *WorkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.Worker
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	created, err := h.uc.Create(ctx, &req)
	if err != nil {
		writeWorkerError(w, r, err)
		return
	}
	w.Header().Set("Location", "/workers/"+created.ID)
	writeJSON(w, r, http.StatusCreated, created)
}

// Update handles PATCH /workers/{id} with partial updates.
func (h *WorkerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.PartialWorkerUpdate
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	req.ID = idFromURL(r, "id")

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	updated, err := h.uc.Update(ctx, req)
	if err != nil {
		writeWorkerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /workers/{id}.
func (h *WorkerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	if err := h.uc.Delete(ctx, idFromURL(r, "id")); err != nil {
		writeWorkerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// expenseRequest is the POST /expenses body.
type expenseRequest struct {
	WorkerID string `json:"workerId"`
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
}

// CreateExpense handles POST /expenses.
func (h *WorkerHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	e, err := h.uc.AddExpense(ctx, req.WorkerID, req.Title, req.Amount)
	if err != nil {
		writeWorkerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, e)
}

// ListExpenses handles GET /expenses.
func (h *WorkerHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	list, err := h.uc.ListExpenses(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

// DeleteExpense handles DELETE /expenses/{id}.
func (h *WorkerHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	if err := h.uc.DeleteExpense(ctx, idFromURL(r, "id")); err != nil {
		writeWorkerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Summary handles GET /workers/{id}/summary?from=&to= with RFC 3339
// bounds; either bound may be omitted.
func (h *WorkerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid from")
			return
		}
		from = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid to")
			return
		}
		to = t
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	sum, err := h.uc.Summary(ctx, idFromURL(r, "id"), from, to)
	if err != nil {
		writeWorkerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sum)
}
