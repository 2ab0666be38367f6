package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidDuration = errors.New("service duration must be positive")
	ErrDurationTooLong = errors.New("service duration does not fit in the salon operating window")
)

type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID     uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int       `gorm:"not null" json:"duration"` // in minutes
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Length returns the service duration as a time.Duration
func (s *Service) Length() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

// FitsIn reports whether the service can be booked at all in the salon's window
func (s *Service) FitsIn(salon *Salon) error {
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	if s.Length() > salon.Closing()-salon.Opening() {
		return ErrDurationTooLong
	}
	return nil
}
