package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AuthHandler handles account endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register handles POST /api/auth/register. New accounts always get the user
// role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	email, err := parseEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, email, string(hash), model.RoleUser)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "user", user.ID, "email", user.Email)
	jsonResponse(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "user", user.ID, "role", user.Role)
	jsonResponse(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout. The token stays revoked until it
// would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged out", "user", claims.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, currentUser(r.Context()))
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user", user.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// parseEmail accepts a bare address only. Display-name forms such as
// "Ana <ana@example.edu>" are refused so that the stored address is the one
// the unique index compares.
func parseEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", model.Errorf(model.ErrValidation, "valid email required")
	}
	return addr.Address, nil
}
