package ledger

import (
	"context"

	"github.com/google/uuid"

	"cashup-backend/imaging"
	"cashup-backend/models"
)

// SubmitPhotoInput carries an already-stored image and its perceptual hash;
// file handling and hash computation stay outside the ledger.
type SubmitPhotoInput struct {
	FestivalID string
	UserID     string
	ImageURL   string
	Hash       string
	Lat        *float64
	Lng        *float64
	Analysis   *models.PhotoAnalysis
}

type SubmitPhotoResult struct {
	Photo   *models.TrashPhoto
	Summary *models.UserDailySummary
}

// SubmitPhoto runs the submission gates in order (existence, geofence, rate
// limit, duplicate) and on success credits the photo's points to today's
// pending bucket atomically with the photo insert.
func (l *Ledger) SubmitPhoto(ctx context.Context, in SubmitPhotoInput) (*SubmitPhotoResult, error) {
	festival, err := l.store.GetFestival(ctx, in.FestivalID)
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

	recent, err := l.store.CountPhotosAfter(ctx, in.UserID, now.Add(-rateLimitWindow))
	if err != nil {
		return nil, err
	}
	if recent >= rateLimitMax {
		return nil, rejected(ReasonRateLimited, "take a short break and try again")
	}

	hashes, err := l.store.RecentPhotoHashes(ctx, in.UserID, duplicateLookback)
	if err != nil {
		return nil, err
	}
	for _, h := range hashes {
		if imaging.Distance(h, in.Hash) <= duplicateMaxDist {
			return nil, rejected(ReasonDuplicatePhoto, "this photo was already credited")
		}
	}

	photo := &models.TrashPhoto{
		ID:         uuid.New().String(),
		UserID:     in.UserID,
		FestivalID: in.FestivalID,
		ImageURL:   in.ImageURL,
		Hash:       in.Hash,
		Status:     models.PhotoPending,
		Points:     festival.PerPhotoPoint,
		CreatedAt:  now,
	}
	if in.Analysis != nil {
		photo.HasTrash = in.Analysis.HasTrash
		photo.TrashCount = in.Analysis.TrashCount
		photo.MaxTrashConfidence = in.Analysis.MaxTrashConfidence
		photo.Analysis = in.Analysis.Raw
	}

	key := SummaryKey{UserID: in.UserID, FestivalID: in.FestivalID, Date: DateOf(now)}
	var summary *models.UserDailySummary
	err = l.runTx(ctx, func(tx Tx) error {
		if _, err := tx.Summary(key); err != nil {
			return err
		}
		if err := tx.InsertPhoto(photo); err != nil {
			return err
		}
		updated, err := tx.AddSummary(key, festival.PerPhotoPoint, 0, 0)
		if err != nil {
			return err
		}
		summary = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SubmitPhotoResult{Photo: photo, Summary: summary}, nil
}
