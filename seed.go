package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

// seedDemo creates the demo festival and its three bins when they are not
// already present. Safe to run on every start.
func seedDemo(ctx context.Context, store ledger.Store) error {
	festivals, err := store.ListFestivals(ctx)
	if err != nil {
		return err
	}
	var festival *models.Festival
	for i := range festivals {
		if festivals[i].Name == "Haeundae Fireworks Festival" {
			festival = &festivals[i]
			break
		}
	}

	if festival == nil {
		centerLat, centerLng := 35.1587, 129.1604
		radius := 1200
		festival = &models.Festival{
			ID:              uuid.New().String(),
			Name:            "Haeundae Fireworks Festival",
			Budget:          5_000_000,
			PerUserDailyCap: 3000,
			PerPhotoPoint:   100,
			CenterLat:       &centerLat,
			CenterLng:       &centerLng,
			RadiusMeters:    &radius,
			CreatedAt:       time.Now().UTC(),
		}
		if err := store.CreateFestival(ctx, festival); err != nil {
			return err
		}
	}

	existing, err := store.CountBins(ctx, festival.ID)
	if err != nil {
		return err
	}
	if existing == 0 {
		now := time.Now().UTC()
		bins := []models.TrashBin{
			{Code: "TRASH_BIN_01", Name: "Next to the main stage", Description: "Left of the seaside main stage"},
			{Code: "TRASH_BIN_02", Name: "Near the station exit", Description: "Haeundae station exit 3"},
			{Code: "TRASH_BIN_03", Name: "Bridge view photo zone", Description: "Beside the photo zone sign"},
		}
		for i := range bins {
			bins[i].ID = uuid.New().String()
			bins[i].FestivalID = festival.ID
			bins[i].CreatedAt = now
		}
		if err := store.CreateBins(ctx, bins); err != nil {
			return err
		}
	}

	log.Printf("Seed completed. Festival id: %s\n", festival.ID)
	return nil
}
