package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// OccupyingStatuses are the statuses that take part in conflict detection.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
}

// Occupying reports whether an appointment in this status blocks its interval.
func (s AppointmentStatus) Occupying() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// appointments
//
// idx_appointments_salon_start_occupying stops two occupying rows from
// sharing a salon and a start instant. Overlaps with different starts are
// rejected by the repository's insert transaction.
type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_appointments_salon_start_occupying,where:status = 'scheduled' OR status = 'confirmed'" json:"salonId"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"serviceId"`

	CustomerName string `gorm:"type:varchar(255);not null" json:"customerName"`

	StartTime time.Time `gorm:"not null;index;uniqueIndex:idx_appointments_salon_start_occupying" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`

	Status      AppointmentStatus `gorm:"type:varchar(32);not null;default:'scheduled';index" json:"status"`
	CancelledAt *time.Time        `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Salon   *Salon   `gorm:"foreignKey:SalonID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Service *Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentStatusScheduled
	}
	return nil
}
