package domain

import "time"

// Quote is the persisted quoting entity. GeneratedContent holds the draft
// markdown until finalization and the full finalized markdown afterwards.
type Quote struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Title            string    `json:"title"`
	JobDescription   string    `json:"job_description"`
	GeneratedContent string    `json:"generated_content"`
	ImageURL         string    `json:"image_url,omitempty"`
	DocumentURL      string    `json:"document_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CompanyProfile carries the letterhead data stamped onto rendered quotes.
type CompanyProfile struct {
	OwnerID            string `json:"owner_id"`
	Name               string `json:"name"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Website            string `json:"website"`
	LogoURL            string `json:"logo_url,omitempty"`
	TermsAndConditions string `json:"terms_and_conditions,omitempty"`
}

type PlanTier string

const (
	PlanFree PlanTier = "free"
	PlanPro  PlanTier = "pro"
)

// Subscription is the backend's view of the payment provider's state.
// Billing itself is external; only the active tier matters here.
type Subscription struct {
	OwnerID   string    `json:"owner_id"`
	Tier      PlanTier  `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Subscription) ActiveTier(now time.Time) PlanTier {
	if s == nil || s.Tier == "" {
		return PlanFree
	}
	if !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now) {
		return PlanFree
	}
	return s.Tier
}
