package models

import (
	"time"
)

// UserDailySummary is the ledger row: exactly one per (user, festival, UTC
// date), created lazily on first touch. All point movement in the system is an
// increment/decrement against one of its three buckets.
type UserDailySummary struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	FestivalID    string    `json:"festival_id" db:"festival_id"`
	Date          string    `json:"date" db:"date"`
	TotalPending  int       `json:"total_pending" db:"total_pending"`
	TotalActive   int       `json:"total_active" db:"total_active"`
	TotalConsumed int       `json:"total_consumed" db:"total_consumed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FestivalReport is the read-only admin rollup.
type FestivalReport struct {
	Festival          *Festival  `json:"festival"`
	TotalParticipants int        `json:"total_participants"`
	TotalPending      int        `json:"total_pending"`
	TotalActive       int        `json:"total_active"`
	BinUsage          []BinUsage `json:"bin_usage"`
}

type BinUsage struct {
	BinID string `json:"bin_id"`
	Code  string `json:"code"`
	Count int    `json:"count"`
}
