package booking

import (
	"errors"
	"time"

	"salonbook-backend/models"
)

var (
	ErrInvalidTimeFormat      = errors.New("invalid time format")
	ErrSalonNotFound          = errors.New("salon not found")
	ErrServiceNotFound        = errors.New("service not found")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrMissingCustomer        = errors.New("customer name is required")
)

// Reason is the machine-readable cause of an unavailable or rejected slot.
type Reason string

const (
	ReasonInPast             Reason = "in_past"
	ReasonOutsideHours       Reason = "outside_business_hours"
	ReasonWouldEndAfterHours Reason = "would_end_after_hours"
	ReasonSlotConflict       Reason = "slot_conflict"
	ReasonSlotTaken          Reason = "slot_taken"
	ReasonNoSlotFound        Reason = "no_slot_found"
	ReasonServiceNotBookable Reason = "service_not_bookable"
)

type Status string

const (
	StatusSuccess         Status = "success"
	StatusSlotUnavailable Status = "slot_unavailable"
	StatusRejected        Status = "rejected"
)

// Source names the call site that asked the committer to book.
type Source string

const (
	SourceRequested     Source = "requested"
	SourceConfirmedNext Source = "confirmed_next"
)

// Rejection is a business-hours failure with an optional alternative.
type Rejection struct {
	Reason    Reason
	Message   string
	Suggested *time.Time
}

// Interval is a half-open [Start, End) span of canonical instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

type Availability struct {
	Available     bool
	Start         time.Time
	End           time.Time
	Reason        Reason
	Message       string
	SuggestedNext *time.Time
}

// NoSlotFound reports an unavailable slot with no alternative in the horizon.
func (a *Availability) NoSlotFound() bool {
	return a.Reason == ReasonSlotConflict && a.SuggestedNext == nil
}

// Result is the outcome of a commit attempt. Exactly one of Appointment
// (on success) or Reason (otherwise) is set.
type Result struct {
	Status        Status
	Appointment   *models.Appointment
	Start         time.Time
	End           time.Time
	Reason        Reason
	Message       string
	SuggestedNext *time.Time
}

// NoSlotFound reports that an unavailable result carries no alternative
// within the search horizon.
func (r *Result) NoSlotFound() bool {
	return r.Status == StatusSlotUnavailable && r.SuggestedNext == nil
}
