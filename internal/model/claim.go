package model

import (
	"strings"
	"time"
)

// Claim is a request by a claimant to take ownership of a found item.
type Claim struct {
	ID           int64               `json:"id"`
	ItemID       int64               `json:"item_id"`
	ClaimantID   int64               `json:"claimant_id"`
	Verification VerificationDetails `json:"verification_details"`
	Status       ClaimStatus         `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	DecidedAt    *time.Time          `json:"decided_at,omitempty"`
	DecidedBy    *int64              `json:"decided_by,omitempty"`

	// Joined fields (not always populated).
	ItemTitle     string          `json:"item_title,omitempty"`
	ItemCategory  string          `json:"item_category,omitempty"`
	ItemStatus    FoundItemStatus `json:"item_status,omitempty"`
	ClaimantName  string          `json:"claimant_name,omitempty"`
	ClaimantEmail string          `json:"claimant_email,omitempty"`
}

// VerificationDetails is the evidence a claimant provides. Only
// IdentifyingFeatures is mandatory.
type VerificationDetails struct {
	PurchaseDate        string `json:"purchase_date,omitempty"`
	PurchaseLocation    string `json:"purchase_location,omitempty"`
	SerialNumber        string `json:"serial_number,omitempty"`
	IdentifyingFeatures string `json:"identifying_features"`
	AdditionalDetails   string `json:"additional_details,omitempty"`
}

// Validate checks that the mandatory evidence is present.
func (v VerificationDetails) Validate() error {
	if strings.TrimSpace(v.IdentifyingFeatures) == "" {
		return Errorf(ErrValidation, "identifying features required")
	}
	return nil
}

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

// Claim statuses. Approved and rejected are terminal.
const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// Terminal reports whether no further decision may be applied.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimApproved || s == ClaimRejected
}

// ParseDecision validates an admin decision. Only terminal statuses are
// accepted.
func ParseDecision(s string) (ClaimStatus, error) {
	switch d := ClaimStatus(s); d {
	case ClaimApproved, ClaimRejected:
		return d, nil
	}
	return "", Errorf(ErrValidation, "invalid status: must be 'approved' or 'rejected'")
}

// ClaimEvent describes a change of claim status that the claimant should
// hear about.
type ClaimEvent struct {
	ClaimID    int64       `json:"claim_id"`
	ClaimantID int64       `json:"claimant_id"`
	ItemID     int64       `json:"item_id"`
	ItemTitle  string      `json:"item_title"`
	NewStatus  ClaimStatus `json:"new_status"`
}
