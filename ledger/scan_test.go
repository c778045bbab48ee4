package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

func TestScanBinActivatesAllUnderCap(t *testing.T) {
	f := newFixture(t, 100, 3000)

	for i := 0; i < 3; i++ {
		_, err := f.submit(f.nextHash())
		require.NoError(t, err)
		f.advance(time.Second)
	}

	res, err := f.scan()
	require.NoError(t, err)
	require.Equal(t, 300, res.Activated)
	require.Equal(t, 3, res.ConvertedCount)
	require.Equal(t, "Main gate bin", res.BinName)
	require.Equal(t, 0, res.Summary.TotalPending)
	require.Equal(t, 300, res.Summary.TotalActive)

	photos, err := f.store.ListUserPhotos(context.Background(), f.user.ID, f.festival.ID)
	require.NoError(t, err)
	for _, p := range photos {
		require.Equal(t, models.PhotoActive, p.Status)
	}
}

// Greedy FIFO with no substitution: with 3 pending photos of 50 points and 80
// remaining cap, only the oldest converts; the walk stops at the first photo
// that would overflow even though a later one would also overflow.
func TestScanBinGreedyFIFOStopsAtOverflow(t *testing.T) {
	f := newFixture(t, 50, 80)

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := f.submit(f.nextHash())
		require.NoError(t, err)
		ids = append(ids, res.Photo.ID)
		f.advance(10 * time.Second)
	}

	res, err := f.scan()
	require.NoError(t, err)
	require.Equal(t, 50, res.Activated)
	require.Equal(t, 1, res.ConvertedCount)

	photos, err := f.store.ListUserPhotos(context.Background(), f.user.ID, f.festival.ID)
	require.NoError(t, err)
	status := make(map[string]string)
	for _, p := range photos {
		status[p.ID] = p.Status
	}
	require.Equal(t, models.PhotoActive, status[ids[0]])
	require.Equal(t, models.PhotoPending, status[ids[1]])
	require.Equal(t, models.PhotoPending, status[ids[2]])
}

func TestScanBinNoRecentPending(t *testing.T) {
	f := newFixture(t, 100, 3000)

	_, err := f.scan()
	var policyErr *ledger.PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, ledger.ReasonNoPendingRecent, policyErr.Reason)

	// Photos older than the 30 minute window do not convert.
	_, err = f.submit(f.nextHash())
	require.NoError(t, err)
	f.advance(31 * time.Minute)

	_, err = f.scan()
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, ledger.ReasonNoPendingRecent, policyErr.Reason)
}

func TestScanBinCapExhausted(t *testing.T) {
	f := newFixture(t, 100, 100)

	_, err := f.submit(f.nextHash())
	require.NoError(t, err)
	_, err = f.scan()
	require.NoError(t, err)

	f.advance(time.Second)
	_, err = f.submit(f.nextHash())
	require.NoError(t, err)

	_, err = f.scan()
	var policyErr *ledger.PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, ledger.ReasonCapExhausted, policyErr.Reason)
}

// Cap not exhausted but too small for the next photo: the selection comes up
// empty and the call is still a cap rejection.
func TestScanBinCapTooSmallForFirstPhoto(t *testing.T) {
	f := newFixture(t, 50, 80)

	_, err := f.submit(f.nextHash())
	require.NoError(t, err)
	_, err = f.scan()
	require.NoError(t, err)

	f.advance(time.Second)
	_, err = f.submit(f.nextHash())
	require.NoError(t, err)

	// remaining cap is 30, first pending photo is worth 50
	_, err = f.scan()
	var policyErr *ledger.PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, ledger.ReasonCapExhausted, policyErr.Reason)
}

func TestScanBinNormalizesCode(t *testing.T) {
	f := newFixture(t, 100, 3000)

	_, err := f.submit(f.nextHash())
	require.NoError(t, err)

	res, err := f.ledger.ScanBin(context.Background(), ledger.ScanBinInput{
		FestivalID: f.festival.ID,
		UserID:     f.user.ID,
		BinCode:    " trash-bin-1 ",
	})
	require.NoError(t, err)
	require.Equal(t, 100, res.Activated)
}

func TestScanBinUnknownBin(t *testing.T) {
	f := newFixture(t, 100, 3000)

	_, err := f.ledger.ScanBin(context.Background(), ledger.ScanBinInput{
		FestivalID: f.festival.ID,
		UserID:     f.user.ID,
		BinCode:    "NO_SUCH_BIN",
	})
	require.ErrorIs(t, err, ledger.ErrBinNotFound)
}

func TestScanBinRecordsAuditEvent(t *testing.T) {
	f := newFixture(t, 100, 3000)

	for i := 0; i < 2; i++ {
		_, err := f.submit(f.nextHash())
		require.NoError(t, err)
		f.advance(time.Second)
	}

	// One scan event per conversion call, not per photo.
	_, err := f.scan()
	require.NoError(t, err)

	report, err := f.store.FestivalReport(context.Background(), f.festival.ID)
	require.NoError(t, err)
	require.Len(t, report.BinUsage, 1)
	require.Equal(t, f.bin.Code, report.BinUsage[0].Code)
	require.Equal(t, 1, report.BinUsage[0].Count)
}

// A photo taken before midnight and scanned after debits the origin day's
// pending bucket; the activation and the cap belong to the scan day.
func TestScanBinAcrossMidnight(t *testing.T) {
	f := newFixture(t, 100, 3000)
	ctx := context.Background()

	f.now = time.Date(2025, 10, 4, 23, 59, 0, 0, time.UTC)
	_, err := f.submit(f.nextHash())
	require.NoError(t, err)

	f.advance(2 * time.Minute) // 00:01 on the 5th
	res, err := f.scan()
	require.NoError(t, err)
	require.Equal(t, 100, res.Activated)
	require.Equal(t, "2025-10-05", res.Summary.Date)
	require.Equal(t, 100, res.Summary.TotalActive)
	require.Zero(t, res.Summary.TotalPending)

	// The origin day's pending went back to zero instead of driving the new
	// day's row negative.
	f.now = time.Date(2025, 10, 4, 23, 59, 30, 0, time.UTC)
	origin, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)
	require.Equal(t, "2025-10-04", origin.Date)
	require.Zero(t, origin.TotalPending)
	require.Zero(t, origin.TotalActive)
}

// Many concurrent scans for the same user may each win at most once; the cap
// can never be overrun no matter the interleaving.
func TestScanBinConcurrentCapInvariant(t *testing.T) {
	f := newFixture(t, 100, 300)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.submit(f.nextHash())
		require.NoError(t, err)
		f.advance(time.Second)
	}

	var wg sync.WaitGroup
	results := make([]*ledger.ScanBinResult, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.scan()
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	activated := 0
	for _, res := range results {
		if res != nil {
			activated += res.Activated
		}
	}
	require.Equal(t, 300, activated)

	summary, err := f.ledger.EnsureSummary(ctx, f.user.ID, f.festival.ID)
	require.NoError(t, err)
	require.LessOrEqual(t, summary.TotalActive+summary.TotalConsumed, 300)
	require.Equal(t, 300, summary.TotalActive)
	require.Equal(t, 200, summary.TotalPending)
}
