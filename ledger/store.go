package ledger

import (
	"context"
	"time"

	"cashup-backend/models"
)

// SummaryKey identifies one daily ledger row. Date is a UTC YYYY-MM-DD string.
type SummaryKey struct {
	UserID     string
	FestivalID string
	Date       string
}

// DateOf buckets a timestamp into a summary date.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Store is the injected storage handle the ledger runs against. Lookup errors
// for missing entities are the NotFound sentinels from this package.
type Store interface {
	GetFestival(ctx context.Context, id string) (*models.Festival, error)
	ListFestivals(ctx context.Context) ([]models.Festival, error)
	CreateFestival(ctx context.Context, f *models.Festival) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error

	GetBinByCode(ctx context.Context, festivalID, code string) (*models.TrashBin, error)
	ListBins(ctx context.Context, festivalID string) ([]models.TrashBin, error)
	CountBins(ctx context.Context, festivalID string) (int, error)
	CreateBins(ctx context.Context, bins []models.TrashBin) error

	ListUserPhotos(ctx context.Context, userID, festivalID string) ([]models.TrashPhoto, error)
	ListUserCoupons(ctx context.Context, userID, festivalID string) ([]models.Coupon, error)

	// CountPhotosAfter counts the user's photos created strictly after the
	// cutoff, across all festivals and statuses.
	CountPhotosAfter(ctx context.Context, userID string, cutoff time.Time) (int, error)
	// RecentPhotoHashes returns up to limit stored hashes for the user's most
	// recent photos, newest first, across all festivals and statuses.
	RecentPhotoHashes(ctx context.Context, userID string, limit int) ([]string, error)

	FestivalReport(ctx context.Context, festivalID string) (*models.FestivalReport, error)

	// InLedgerTx runs fn atomically. Concurrent transactions touching the same
	// summary row must serialize (row locks or optimistic retry); a lost race
	// is reported as ErrTxConflict and the whole fn is retried by the ledger.
	InLedgerTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write surface available inside a ledger transaction.
type Tx interface {
	// Summary get-or-creates the row for key and locks it for the duration of
	// the transaction.
	Summary(key SummaryKey) (*models.UserDailySummary, error)
	// AddSummary applies deltas to the row for key (which must already be
	// locked via Summary) and returns the updated row. Driving any bucket
	// negative is a storage error, never a silent clamp.
	AddSummary(key SummaryKey, pending, active, consumed int) (*models.UserDailySummary, error)

	InsertPhoto(p *models.TrashPhoto) error
	// PendingPhotosSince returns the user's PENDING photos for the festival
	// created at or after cutoff, oldest first.
	PendingPhotosSince(userID, festivalID string, cutoff time.Time) ([]models.TrashPhoto, error)
	ActivatePhotos(ids []string) error

	InsertScan(s *models.BinScan) error
	InsertCoupon(c *models.Coupon) error
}
