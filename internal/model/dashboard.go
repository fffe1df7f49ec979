package model

// Dashboard summarises a user's activity.
type Dashboard struct {
	User             *User          `json:"user"`
	Stats            DashboardStats `json:"stats"`
	RecentLostItems  []LostItem     `json:"recent_lost_items"`
	RecentFoundItems []FoundItem    `json:"recent_found_items"`
	RecentClaims     []Claim        `json:"recent_claims"`
}

// DashboardStats holds the per-user counters.
type DashboardStats struct {
	LostItems       int `json:"lost_items"`
	FoundItems      int `json:"found_items"`
	ClaimsSubmitted int `json:"claims_submitted"`
	ClaimsApproved  int `json:"claims_approved"`
}
