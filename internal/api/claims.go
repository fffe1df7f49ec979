package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/claims"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ClaimsHandler handles claim submission and the admin review endpoints.
type ClaimsHandler struct {
	Claims *claims.Service
}

type submitClaimRequest struct {
	VerificationDetails *model.VerificationDetails `json:"verification_details"`
}

type decideClaimRequest struct {
	Status string `json:"status"`
}

// Submit handles POST /api/items/claim/{id}.
func (h *ClaimsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req submitClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VerificationDetails == nil {
		jsonError(w, http.StatusBadRequest, "verification details required")
		return
	}

	user := currentUser(r.Context())
	claim, err := h.Claims.Submit(r.Context(), itemID, user.ID, *req.VerificationDetails)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}

// ListMine handles GET /api/claims.
func (h *ClaimsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	list, err := h.Claims.List(r.Context(), store.ClaimFilter{ClaimantID: user.ID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// ListAll handles GET /api/admin/claim-requests.
func (h *ClaimsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter := store.ClaimFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		switch status := model.ClaimStatus(s); status {
		case model.ClaimPending, model.ClaimApproved, model.ClaimRejected:
			filter.Status = status
		default:
			jsonError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	list, err := h.Claims.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Decide handles PATCH /api/admin/claim-requests/{id}.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req decideClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetClaims(r.Context())
	claim, err := h.Claims.Decide(r.Context(), id, req.Status, session.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}
