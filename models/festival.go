package models

import (
	"time"
)

// Festival represents one cleanup campaign. Festivals are immutable after
// creation; geofencing is disabled when no center coordinate is set.
type Festival struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Budget          int       `json:"budget" db:"budget"`
	PerUserDailyCap int       `json:"per_user_daily_cap" db:"per_user_daily_cap"`
	PerPhotoPoint   int       `json:"per_photo_point" db:"per_photo_point"`
	CenterLat       *float64  `json:"center_lat,omitempty" db:"center_lat"`
	CenterLng       *float64  `json:"center_lng,omitempty" db:"center_lng"`
	RadiusMeters    *int      `json:"radius_meters,omitempty" db:"radius_meters"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type CreateFestivalRequest struct {
	Name            string   `json:"name" binding:"required"`
	Budget          int      `json:"budget" binding:"required"`
	PerUserDailyCap int      `json:"per_user_daily_cap" binding:"required"`
	PerPhotoPoint   int      `json:"per_photo_point" binding:"required"`
	CenterLat       *float64 `json:"center_lat"`
	CenterLng       *float64 `json:"center_lng"`
	RadiusMeters    *int     `json:"radius_meters"`
}

// TrashBin is a physical collection point scoped to one festival. The code is
// what participants type or scan; it is unique within the festival.
type TrashBin struct {
	ID          string    `json:"id" db:"id"`
	FestivalID  string    `json:"festival_id" db:"festival_id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Latitude    *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type GenerateBinsRequest struct {
	Count int `json:"count" binding:"required"`
}

// Shop is a static catalog entry for coupon redemption.
type Shop struct {
	ShopName    string `json:"shop_name"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}
