package models

import (
	"time"
)

// Coupon status constants
const (
	CouponIssued = "ISSUED"
	CouponUsed   = "USED" // reserved for the redemption scanner, never set here
)

// Coupon is a redemption record minted by debiting active points.
type Coupon struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	FestivalID string    `json:"festival_id" db:"festival_id"`
	ShopName   string    `json:"shop_name" db:"shop_name"`
	Amount     int       `json:"amount" db:"amount"`
	Code       string    `json:"code" db:"code"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type IssueCouponRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	ShopName string `json:"shop_name" binding:"required"`
	Amount   int    `json:"amount" binding:"required"`
}
