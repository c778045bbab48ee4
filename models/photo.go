package models

import (
	"encoding/json"
	"time"
)

// Photo status constants
const (
	PhotoPending  = "PENDING"
	PhotoActive   = "ACTIVE"
	PhotoRejected = "REJECTED" // reserved for moderation, never set here
)

// TrashPhoto is one submitted cleanup photo. Points are fixed at creation from
// the festival's per-photo value; conversion only ever moves the status.
type TrashPhoto struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	FestivalID string    `json:"festival_id" db:"festival_id"`
	ImageURL   string    `json:"image_url" db:"image_url"`
	Hash       string    `json:"hash" db:"hash"`
	Status     string    `json:"status" db:"status"`
	Points     int       `json:"points" db:"points"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Opaque detection metadata attached by an external analyzer. Never read
	// by ledger logic.
	HasTrash           *bool           `json:"has_trash,omitempty" db:"has_trash"`
	TrashCount         *int            `json:"trash_count,omitempty" db:"trash_count"`
	MaxTrashConfidence *float64        `json:"max_trash_confidence,omitempty" db:"max_trash_confidence"`
	Analysis           json.RawMessage `json:"analysis,omitempty" db:"analysis"`
}

// PhotoAnalysis is the result of the pluggable detection collaborator.
type PhotoAnalysis struct {
	HasTrash           *bool           `json:"has_trash"`
	TrashCount         *int            `json:"trash_count"`
	MaxTrashConfidence *float64        `json:"max_trash_confidence"`
	Raw                json.RawMessage `json:"raw,omitempty"`
}

// BinScan is an append-only audit event: one row per successful conversion
// call, regardless of how many photos it converted.
type BinScan struct {
	ID         string    `json:"id" db:"id"`
	FestivalID string    `json:"festival_id" db:"festival_id"`
	BinID      string    `json:"bin_id" db:"bin_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ScanBinRequest struct {
	UserID  string   `json:"user_id" binding:"required"`
	BinCode string   `json:"bin_code" binding:"required"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}
