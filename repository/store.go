package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

// Store bundles the repositories behind one database handle and provides
// the lookups the booking engine consumes.
type Store struct {
	db *gorm.DB

	Salons       SalonRepository
	Services     ServiceRepository
	Appointments AppointmentRepository
	Users        UserRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Salons:       NewGormSalonRepository(db),
		Services:     NewGormServiceRepository(db),
		Appointments: NewGormAppointmentRepository(db),
		Users:        NewGormUserRepository(db),
	}
}

func (s *Store) FindSalon(ctx context.Context, nameOrID string) (*models.Salon, error) {
	return s.Salons.FindByNameOrID(ctx, nameOrID)
}

func (s *Store) FindService(ctx context.Context, nameOrID string, salonID uuid.UUID) (*models.Service, error) {
	return s.Services.FindByNameOrID(ctx, nameOrID, salonID)
}

func (s *Store) ListOccupying(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	return s.Appointments.ListOccupying(ctx, salonID, from, to)
}

func (s *Store) InsertAppointment(ctx context.Context, appointment *models.Appointment) error {
	return s.Appointments.Insert(ctx, appointment)
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("db.DB(): %w", err)
	}
	return sqlDB.PingContext(ctx)
}
