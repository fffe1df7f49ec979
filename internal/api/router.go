package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/claims"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/notify"
)

// Options holds the router's collaborators. Only DB and JWTSecret are
// required.
type Options struct {
	DB        *sql.DB
	JWTSecret string

	// Metrics defaults to a fresh registry.
	Metrics *metrics.Metrics
	// Notifier defaults to the database-backed notification feed.
	Notifier claims.Notifier
	// LoginLimiter throttles login and registration. Nil disables throttling.
	LoginLimiter *RateLimiter
}

// NewRouter creates the HTTP handler with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	db := opts.DB
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = &notify.Feed{DB: db}
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret}
	itemsHandler := &ItemsHandler{DB: db}
	claimsHandler := &ClaimsHandler{Claims: &claims.Service{DB: db, Notifier: notifier, Metrics: m}}
	notificationsHandler := &NotificationsHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	requireAdmin := RequireAdmin(db)
	limit := func(h http.Handler) http.Handler { return h }
	if opts.LoginLimiter != nil {
		limit = opts.LoginLimiter.Limit
	}

	// Accounts.
	mux.Handle("POST /api/auth/register", limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items: listings are public, reporting needs an account.
	mux.HandleFunc("GET /api/items/found", itemsHandler.ListFound)
	mux.Handle("POST /api/items/found", authMW(http.HandlerFunc(itemsHandler.CreateFound)))
	mux.HandleFunc("GET /api/items/found/{id}", itemsHandler.GetFound)
	mux.HandleFunc("GET /api/items/lost", itemsHandler.ListLost)
	mux.Handle("POST /api/items/lost", authMW(http.HandlerFunc(itemsHandler.CreateLost)))
	mux.HandleFunc("GET /api/items/lost/{id}", itemsHandler.GetLost)
	mux.Handle("PATCH /api/items/lost/{id}/resolve", authMW(http.HandlerFunc(itemsHandler.ResolveLost)))

	// Claims.
	mux.Handle("POST /api/items/claim/{id}", authMW(http.HandlerFunc(claimsHandler.Submit)))
	mux.Handle("GET /api/claims", authMW(http.HandlerFunc(claimsHandler.ListMine)))
	mux.Handle("GET /api/admin/claim-requests", authMW(requireAdmin(http.HandlerFunc(claimsHandler.ListAll))))
	mux.Handle("PATCH /api/admin/claim-requests/{id}", authMW(requireAdmin(http.HandlerFunc(claimsHandler.Decide))))

	// Notifications.
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("POST /api/notifications/read-all", authMW(http.HandlerFunc(notificationsHandler.MarkAllRead)))
	mux.Handle("POST /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	mux.Handle("GET /api/users/dashboard", authMW(http.HandlerFunc(usersHandler.Dashboard)))

	// Operations.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", m.Handler())

	return m.InstrumentHandler(mux)
}
