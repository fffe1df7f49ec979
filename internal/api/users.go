package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/store"
)

// UsersHandler serves per-user views.
type UsersHandler struct {
	DB *sql.DB
}

// Dashboard handles GET /api/users/dashboard.
func (h *UsersHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := store.GetDashboard(r.Context(), h.DB, currentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}
