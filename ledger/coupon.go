package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cashup-backend/models"
)

type IssueCouponInput struct {
	FestivalID string
	UserID     string
	ShopName   string
	Amount     int
}

// IssueCoupon debits active points from today's summary and mints an ISSUED
// coupon, all-or-nothing. The balance check runs inside the transaction so a
// retry sees the freshest balance.
func (l *Ledger) IssueCoupon(ctx context.Context, in IssueCouponInput) (*models.Coupon, error) {
	if in.Amount <= 0 {
		return nil, InvalidInputError{Field: "amount", Msg: "must be positive"}
	}
	if strings.TrimSpace(in.ShopName) == "" {
		return nil, InvalidInputError{Field: "shop_name", Msg: "must not be empty"}
	}
	if _, err := l.store.GetFestival(ctx, in.FestivalID); err != nil {
		return nil, err
	}
	if _, err := l.store.GetUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	now := l.now()
	coupon := &models.Coupon{
		ID:         uuid.New().String(),
		UserID:     in.UserID,
		FestivalID: in.FestivalID,
		ShopName:   in.ShopName,
		Amount:     in.Amount,
		Code:       newCouponCode(in.Amount),
		Status:     models.CouponIssued,
		CreatedAt:  now,
	}

	key := SummaryKey{UserID: in.UserID, FestivalID: in.FestivalID, Date: DateOf(now)}
	err := l.runTx(ctx, func(tx Tx) error {
		summary, err := tx.Summary(key)
		if err != nil {
			return err
		}
		if summary.TotalActive < in.Amount {
			return rejected(ReasonInsufficientBalance, "not enough spendable points")
		}
		if _, err := tx.AddSummary(key, 0, -in.Amount, in.Amount); err != nil {
			return err
		}
		return tx.InsertCoupon(coupon)
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

// newCouponCode builds a human-presentable redemption token. The 4 random
// bytes make collisions astronomically unlikely without a uniqueness scan.
func newCouponCode(amount int) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("CASHUP-%d-%s", amount, strings.ToUpper(hex.EncodeToString(suffix)))
}
