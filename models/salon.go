package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidOperatingHours = errors.New("opening time must be before closing time")

type Salon struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name    string    `gorm:"not null;uniqueIndex" json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`

	// Wall-clock operating window, same day only.
	OpeningTime datatypes.Time `gorm:"not null" json:"openingTime"`
	ClosingTime datatypes.Time `gorm:"not null" json:"closingTime"`

	Services []Service `gorm:"foreignKey:SalonID" json:"services,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Initialize UUID before creating
func (s *Salon) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return s.Validate()
}

// Validate checks the operating window invariant
func (s *Salon) Validate() error {
	if time.Duration(s.OpeningTime) >= time.Duration(s.ClosingTime) {
		return ErrInvalidOperatingHours
	}
	return nil
}

// Opening returns the opening time as an offset from midnight
func (s *Salon) Opening() time.Duration {
	return time.Duration(s.OpeningTime)
}

// Closing returns the closing time as an offset from midnight
func (s *Salon) Closing() time.Duration {
	return time.Duration(s.ClosingTime)
}
