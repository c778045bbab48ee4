package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashup-backend/ledger"
	"cashup-backend/models"
	"cashup-backend/storage"
)

func TestInLedgerTxRollsBackOnError(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	key := ledger.SummaryKey{UserID: "u", FestivalID: "f", Date: "2025-10-04"}
	err := store.InLedgerTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.Summary(key); err != nil {
			return err
		}
		if err := tx.InsertPhoto(&models.TrashPhoto{
			ID: "p1", UserID: "u", FestivalID: "f",
			Status: models.PhotoPending, Points: 100, CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		if _, err := tx.AddSummary(key, 100, 0, 0); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	photos, err := store.ListUserPhotos(ctx, "u", "f")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("failed transaction must leave no photos, got %d", len(photos))
	}

	// The summary row was never committed either.
	var pending int
	err = store.InLedgerTx(ctx, func(tx ledger.Tx) error {
		s, err := tx.Summary(key)
		if err != nil {
			return err
		}
		pending = s.TotalPending
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if pending != 0 {
		t.Fatalf("expected clean summary, got pending %d", pending)
	}
}

func TestAddSummaryRefusesNegativeBuckets(t *testing.T) {
	store := storage.NewMemory()
	key := ledger.SummaryKey{UserID: "u", FestivalID: "f", Date: "2025-10-04"}

	err := store.InLedgerTx(context.Background(), func(tx ledger.Tx) error {
		if _, err := tx.Summary(key); err != nil {
			return err
		}
		_, err := tx.AddSummary(key, -50, 0, 0)
		return err
	})
	if err == nil {
		t.Fatal("expected an error driving pending negative")
	}
}

func TestSummaryVisibleAfterCommit(t *testing.T) {
	store := storage.NewMemory()
	key := ledger.SummaryKey{UserID: "u", FestivalID: "f", Date: "2025-10-04"}

	err := store.InLedgerTx(context.Background(), func(tx ledger.Tx) error {
		if _, err := tx.Summary(key); err != nil {
			return err
		}
		_, err := tx.AddSummary(key, 100, 0, 0)
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	err = store.InLedgerTx(context.Background(), func(tx ledger.Tx) error {
		s, err := tx.Summary(key)
		if err != nil {
			return err
		}
		if s.TotalPending != 100 {
			t.Fatalf("expected pending 100, got %d", s.TotalPending)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}
