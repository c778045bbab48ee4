package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"cashup-backend/ledger"
	"cashup-backend/models"
	"cashup-backend/storage"
)

// fixture wires a ledger against the in-memory store with a steerable clock.
type fixture struct {
	t        *testing.T
	store    *storage.Memory
	ledger   *ledger.Ledger
	now      time.Time
	festival *models.Festival
	user     *models.User
	bin      *models.TrashBin
	hashSeq  int
}

func newFixture(t *testing.T, perPhotoPoint, dailyCap int) *fixture {
	f := &fixture{
		t:     t,
		store: storage.NewMemory(),
		now:   time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC),
	}
	f.ledger = ledger.NewWithClock(f.store, func() time.Time { return f.now })

	ctx := context.Background()
	f.festival = &models.Festival{
		ID:              uuid.New().String(),
		Name:            "Test Festival",
		Budget:          1_000_000,
		PerUserDailyCap: dailyCap,
		PerPhotoPoint:   perPhotoPoint,
		CreatedAt:       f.now,
	}
	require.NoError(t, f.store.CreateFestival(ctx, f.festival))

	f.user = &models.User{
		ID:          uuid.New().String(),
		Provider:    "mock",
		DisplayName: "tester",
		CreatedAt:   f.now,
	}
	require.NoError(t, f.store.CreateUser(ctx, f.user))

	f.bin = &models.TrashBin{
		ID:         uuid.New().String(),
		FestivalID: f.festival.ID,
		Code:       "TRASH_BIN_01",
		Name:       "Main gate bin",
		CreatedAt:  f.now,
	}
	require.NoError(t, f.store.CreateBins(ctx, []models.TrashBin{*f.bin}))
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// nextHash returns hashes pairwise far beyond the duplicate threshold.
func (f *fixture) nextHash() string {
	f.hashSeq++
	return fmt.Sprintf("%064b", uint64(0xFF)<<(8*(f.hashSeq%8)))
}

func (f *fixture) submit(hash string) (*ledger.SubmitPhotoResult, error) {
	return f.ledger.SubmitPhoto(context.Background(), ledger.SubmitPhotoInput{
		FestivalID: f.festival.ID,
		UserID:     f.user.ID,
		ImageURL:   "/uploads/test.jpg",
		Hash:       hash,
	})
}

func (f *fixture) scan() (*ledger.ScanBinResult, error) {
	return f.ledger.ScanBin(context.Background(), ledger.ScanBinInput{
		FestivalID: f.festival.ID,
		UserID:     f.user.ID,
		BinCode:    f.bin.Code,
	})
}

func TestEnsureSummaryIdempotent(t *testing.T) {
	f := newFixture(t, 100, 3000)
	ctx := context.Background()

	first, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)
	second, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "2025-10-04", first.Date)
	require.Zero(t, first.TotalPending)
}

func TestEnsureSummaryNewDayNewRow(t *testing.T) {
	f := newFixture(t, 100, 3000)
	ctx := context.Background()

	today, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)

	f.advance(24 * time.Hour)
	tomorrow, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)

	require.NotEqual(t, today.ID, tomorrow.ID)
	require.Equal(t, "2025-10-05", tomorrow.Date)
}

// End-to-end: three photos pending, a scan activates them all, a coupon
// consumes part, and a second oversized coupon is refused.
func TestEndToEndScenario(t *testing.T) {
	f := newFixture(t, 100, 300)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := f.submit(f.nextHash())
		require.NoError(t, err)
		require.Equal(t, models.PhotoPending, res.Photo.Status)
		f.advance(time.Second)
	}

	summary, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)
	require.Equal(t, 300, summary.TotalPending)

	scan, err := f.scan()
	require.NoError(t, err)
	require.Equal(t, 300, scan.Activated)
	require.Equal(t, 3, scan.ConvertedCount)
	require.Equal(t, 0, scan.Summary.TotalPending)
	require.Equal(t, 300, scan.Summary.TotalActive)

	coupon, err := f.ledger.IssueCoupon(ctx, ledger.IssueCouponInput{
		FestivalID: f.festival.ID,
		UserID:     f.user.ID,
		ShopName:   "Seaside Cafe",
		Amount:     200,
	})
	require.NoError(t, err)
	require.Equal(t, models.CouponIssued, coupon.Status)

	summary, err = f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)
	require.Equal(t, 100, summary.TotalActive)
	require.Equal(t, 200, summary.TotalConsumed)

	_, err = f.ledger.IssueCoupon(ctx, ledger.IssueCouponInput{
		FestivalID: f.festival.ID,
		UserID:     f.user.ID,
		ShopName:   "Seaside Cafe",
		Amount:     150,
	})
	var policyErr *ledger.PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, ledger.ReasonInsufficientBalance, policyErr.Reason)
}
