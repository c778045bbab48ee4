package models

import (
	"time"
)

// User is a participant. Created on (mock) login keyed by a stable external
// identity; the ledger only needs the id.
type User struct {
	ID             string    `json:"id" db:"id"`
	Provider       string    `json:"provider" db:"provider"`
	ProviderUserID string    `json:"provider_user_id" db:"provider_user_id"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type MockLoginRequest struct {
	Nickname string `json:"nickname" binding:"required"`
}
