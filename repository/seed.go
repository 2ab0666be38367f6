package repository

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"salonbook-backend/models"
)

// SeedDefaults inserts a sample salon with one service when no salon exists
// yet. It reports whether anything was written.
func SeedDefaults(ctx context.Context, store *Store, logger *slog.Logger) (bool, error) {
	n, err := store.Salons.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count salons: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	salon := &models.Salon{
		Name:        "Elegant Cuts",
		Address:     "123 Main Street",
		Phone:       "+1 555 0100",
		Email:       "hello@elegantcuts.example",
		OpeningTime: datatypes.NewTime(9, 0, 0, 0),
		ClosingTime: datatypes.NewTime(17, 0, 0, 0),
	}
	if err := store.Salons.Create(ctx, salon); err != nil {
		return false, fmt.Errorf("seed salon: %w", err)
	}

	service := &models.Service{
		SalonID:     salon.ID,
		Name:        "Haircut",
		Description: "Wash, cut and style",
		Price:       30,
		Duration:    30,
		IsActive:    true,
	}
	if err := store.Services.Create(ctx, service); err != nil {
		return false, fmt.Errorf("seed service: %w", err)
	}

	logger.Info("seeded default salon", "salon_id", salon.ID, "salon", salon.Name)
	return true, nil
}
