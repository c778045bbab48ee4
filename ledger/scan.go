package ledger

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"cashup-backend/models"
)

type ScanBinInput struct {
	FestivalID string
	UserID     string
	BinCode    string
	Lat        *float64
	Lng        *float64
}

type ScanBinResult struct {
	Activated      int
	ConvertedCount int
	BinName        string
	Summary        *models.UserDailySummary
}

// ScanBin converts the user's recent pending photos to active, oldest first,
// under the festival's per-user daily cap. Selection is greedy without
// substitution: the walk stops at the first photo that would overflow the
// remaining cap. Photo flips, summary movement, and the scan audit row commit
// as one transaction; the cap check is re-run inside every retry attempt.
func (l *Ledger) ScanBin(ctx context.Context, in ScanBinInput) (*ScanBinResult, error) {
	festival, err := l.store.GetFestival(ctx, in.FestivalID)
	if err != nil {
		return nil, err
	}
	bin, err := l.store.GetBinByCode(ctx, in.FestivalID, NormalizeBinCode(in.BinCode))
	if err != nil {
		return nil, err
	}
	if _, err := l.store.GetUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	if !InsideFestival(festival, in.Lat, in.Lng) {
		return nil, rejected(ReasonOutsideGeofence, "you can only participate inside the festival grounds")
	}

	now := l.now()
	today := SummaryKey{UserID: in.UserID, FestivalID: in.FestivalID, Date: DateOf(now)}

	var result *ScanBinResult
	err = l.runTx(ctx, func(tx Tx) error {
		summary, err := tx.Summary(today)
		if err != nil {
			return err
		}
		remaining := festival.PerUserDailyCap - (summary.TotalActive + summary.TotalConsumed)
		if remaining <= 0 {
			return rejected(ReasonCapExhausted, "today's limit has been fully used")
		}

		pending, err := tx.PendingPhotosSince(in.UserID, in.FestivalID, now.Add(-conversionWindow))
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return rejected(ReasonNoPendingRecent, "no pending points from the last 30 minutes")
		}

		activated := 0
		var ids []string
		for _, photo := range pending {
			if activated+photo.Points > remaining {
				break
			}
			activated += photo.Points
			ids = append(ids, photo.ID)
		}
		if len(ids) == 0 {
			return rejected(ReasonCapExhausted, "today's limit has been fully used")
		}

		if err := tx.ActivatePhotos(ids); err != nil {
			return err
		}

		// The pending debit resolves to each photo's origin-day summary so a
		// photo taken before midnight and scanned after never drives a later
		// day's pending negative. The activation credit and the cap both
		// belong to today.
		byDay := make(map[string]int)
		for _, photo := range pending[:len(ids)] {
			byDay[DateOf(photo.CreatedAt)] += photo.Points
		}
		days := make([]string, 0, len(byDay))
		for day := range byDay {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			key := SummaryKey{UserID: in.UserID, FestivalID: in.FestivalID, Date: day}
			if key != today {
				if _, err := tx.Summary(key); err != nil {
					return err
				}
			}
			if _, err := tx.AddSummary(key, -byDay[day], 0, 0); err != nil {
				return err
			}
		}
		updated, err := tx.AddSummary(today, 0, activated, 0)
		if err != nil {
			return err
		}

		if err := tx.InsertScan(&models.BinScan{
			ID:         uuid.New().String(),
			FestivalID: in.FestivalID,
			BinID:      bin.ID,
			UserID:     in.UserID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		result = &ScanBinResult{
			Activated:      activated,
			ConvertedCount: len(ids),
			BinName:        bin.Name,
			Summary:        updated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
