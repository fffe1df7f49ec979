package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// feedLimit caps how many notifications one feed request returns.
const feedLimit = 50

// NotificationsHandler serves the caller's notification feed.
type NotificationsHandler struct {
	DB *sql.DB
}

type feedResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unread_count"`
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	list, err := store.ListNotifications(r.Context(), h.DB, user.ID, feedLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	unread, err := store.CountUnreadNotifications(r.Context(), h.DB, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if list == nil {
		list = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, feedResponse{Notifications: list, UnreadCount: unread})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := currentUser(r.Context())
	if err := store.MarkNotificationRead(r.Context(), h.DB, id, user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	n, err := store.MarkAllNotificationsRead(r.Context(), h.DB, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"marked": n})
}
