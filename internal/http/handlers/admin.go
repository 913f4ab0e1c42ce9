package handlers

import (
	"net/http"

	"delivery-dispatch/internal/store"
)

// AdminHandler serves the bulk persistence operations and the
// materialized snapshot read.
type AdminHandler struct {
	bulk  BulkStore
	state StateProvider
}

// NewAdminHandler wires the bulk store surface into HTTP handlers.
func NewAdminHandler(bulk BulkStore, state StateProvider) *AdminHandler {
	return &AdminHandler{bulk: bulk, state: state}
}

// State handles GET /state: the reactive read-only snapshot.
func (h *AdminHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.state.Snapshot())
}

// Backup handles POST /admin/backup and returns the full dump.
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	s, err := h.bulk.BackupAll(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

// Restore handles POST /admin/restore with a snapshot body.
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var s store.Snapshot
	if ok := decodeJSON(w, r, &s); !ok {
		return
	}
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	if err := h.bulk.RestoreAll(ctx, &s); err != nil {
		writeError(w, r, http.StatusInternalServerError, "restore failed")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Reset handles POST /admin/reset: a full system wipe.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	if err := h.bulk.FullReset(ctx); err != nil {
		writeError(w, r, http.StatusInternalServerError, "reset failed")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
