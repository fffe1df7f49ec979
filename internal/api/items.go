package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles lost and found item reports.
type ItemsHandler struct {
	DB *sql.DB
}

type foundItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	DateFound   string `json:"date_found"`
}

type lostItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	DateLost    string `json:"date_lost"`
}

// parseReport builds and validates an item report from request fields.
func parseReport(title, description, category, location, date string) (model.ItemReport, error) {
	r := model.ItemReport{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Location:    strings.TrimSpace(location),
	}
	if date != "" {
		d, err := parseDate(date)
		if err != nil {
			return r, model.Errorf(model.ErrValidation, "invalid date %q: use YYYY-MM-DD or RFC 3339", date)
		}
		r.Date = d
	}
	return r, r.Validate(time.Now())
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ListFound handles GET /api/items/found.
func (h *ItemsHandler) ListFound(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.FoundItemFilter{Category: q.Get("category")}
	if s := q.Get("status"); s != "" {
		status, err := model.ParseFoundItemStatus(s)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = status
	}

	items, err := store.ListFoundItems(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// CreateFound handles POST /api/items/found.
func (h *ItemsHandler) CreateFound(w http.ResponseWriter, r *http.Request) {
	var req foundItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := parseReport(req.Title, req.Description, req.Category, req.Location, req.DateFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := currentUser(r.Context())
	item, err := store.CreateFoundItem(r.Context(), h.DB, user.ID, report)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("found item reported", "user", user.ID, "item", item.ID, "category", item.Category)
	jsonResponse(w, http.StatusCreated, item)
}

// GetFound handles GET /api/items/found/{id}.
func (h *ItemsHandler) GetFound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := store.GetFoundItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListLost handles GET /api/items/lost.
func (h *ItemsHandler) ListLost(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListLostItems(r.Context(), h.DB, store.LostItemFilter{
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.LostItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// CreateLost handles POST /api/items/lost.
func (h *ItemsHandler) CreateLost(w http.ResponseWriter, r *http.Request) {
	var req lostItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := parseReport(req.Title, req.Description, req.Category, req.Location, req.DateLost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := currentUser(r.Context())
	item, err := store.CreateLostItem(r.Context(), h.DB, user.ID, report)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("lost item reported", "user", user.ID, "item", item.ID, "category", item.Category)
	jsonResponse(w, http.StatusCreated, item)
}

// GetLost handles GET /api/items/lost/{id}.
func (h *ItemsHandler) GetLost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := store.GetLostItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ResolveLost handles PATCH /api/items/lost/{id}/resolve.
func (h *ItemsHandler) ResolveLost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := currentUser(r.Context())
	item, err := store.ResolveLostItem(r.Context(), h.DB, id, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("lost item resolved", "user", user.ID, "item", item.ID)
	jsonResponse(w, http.StatusOK, item)
}
