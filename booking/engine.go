package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"salonbook-backend/models"
	"salonbook-backend/repository"
)

// Store is the persistence the engine reads snapshots from and commits to.
type Store interface {
	FindSalon(ctx context.Context, nameOrID string) (*models.Salon, error)
	FindService(ctx context.Context, nameOrID string, salonID uuid.UUID) (*models.Service, error)
	// ListOccupying returns scheduled or confirmed appointments of the salon
	// whose interval intersects [from, to), ordered by start.
	ListOccupying(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	// InsertAppointment fails with repository.ErrSlotTaken when another
	// occupying appointment already holds the salon and start instant.
	InsertAppointment(ctx context.Context, appointment *models.Appointment) error
}

// Engine answers availability questions and commits bookings. It keeps no
// mutable state of its own and is safe for concurrent use.
type Engine struct {
	store  Store
	zone   *Zone
	policy SearchPolicy
	clock  func() time.Time
	logger *slog.Logger
}

type Option func(*Engine)

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithSearchPolicy(p SearchPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

func New(store Store, zone *Zone, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("booking: store is required")
	}
	if zone == nil {
		return nil, errors.New("booking: zone is required")
	}
	e := &Engine{
		store:  store,
		zone:   zone,
		policy: DefaultSearchPolicy(),
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.policy.Validate(); err != nil {
		return nil, fmt.Errorf("booking: %w", err)
	}
	return e, nil
}

func (e *Engine) Zone() *Zone {
	return e.zone
}

func (e *Engine) Policy() SearchPolicy {
	return e.policy
}

// now is the current canonical instant.
func (e *Engine) now() time.Time {
	return e.zone.Canonical(e.clock())
}

// earliest is the first whole minute not in the past.
func (e *Engine) earliest() time.Time {
	t := e.clock().In(e.zone.Location())
	m := t.Truncate(time.Minute)
	if m.Before(t) {
		m = m.Add(time.Minute)
	}
	return m
}

// canonicalize brings stored instants back into the business zone.
func (e *Engine) canonicalize(appointments []models.Appointment) {
	for i := range appointments {
		appointments[i].StartTime = e.zone.Canonical(appointments[i].StartTime)
		appointments[i].EndTime = e.zone.Canonical(appointments[i].EndTime)
	}
}

// Resolve looks up a salon and one of its services by name or id.
func (e *Engine) Resolve(ctx context.Context, salonRef, serviceRef string) (*models.Salon, *models.Service, error) {
	salon, err := e.store.FindSalon(ctx, salonRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %q", ErrSalonNotFound, salonRef)
		}
		return nil, nil, fmt.Errorf("%w: find salon: %w", ErrPersistenceUnavailable, err)
	}
	service, err := e.store.FindService(ctx, serviceRef, salon.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %q", ErrServiceNotFound, serviceRef)
		}
		return nil, nil, fmt.Errorf("%w: find service: %w", ErrPersistenceUnavailable, err)
	}
	return salon, service, nil
}

type AvailabilityRequest struct {
	Salon         string
	Service       string
	RequestedTime string
}

// CheckAvailability reports whether the requested slot is free right now.
// It never writes. When the slot is taken it proposes the next free one.
func (e *Engine) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	start, err := e.zone.Normalize(req.RequestedTime)
	if err != nil {
		return nil, err
	}
	salon, service, err := e.Resolve(ctx, req.Salon, req.Service)
	if err != nil {
		return nil, err
	}

	duration := service.Length()
	av := &Availability{Start: start, End: start.Add(duration)}

	if err := service.FitsIn(salon); err != nil {
		av.Reason = ReasonServiceNotBookable
		av.Message = err.Error()
		return av, nil
	}
	if rej := ValidateHours(HoursOf(salon), start, duration, e.now()); rej != nil {
		av.Reason = rej.Reason
		av.Message = rej.Message
		av.SuggestedNext = rej.Suggested
		return av, nil
	}

	conflict, err := e.conflictAt(ctx, salon, Interval{Start: av.Start, End: av.End})
	if err != nil {
		return nil, err
	}
	if !conflict.Conflicting() {
		av.Available = true
		av.Message = "Time slot is available"
		return av, nil
	}

	next, err := e.FindNextSlot(ctx, salon, service, conflict.MaxEnd)
	if err != nil {
		return nil, err
	}
	av.Reason = ReasonSlotConflict
	if next == nil {
		av.Message = "Time slot not available and no free slot was found within the search horizon"
		return av, nil
	}
	av.Message = "Time slot not available"
	av.SuggestedNext = &next.Start
	return av, nil
}

func (e *Engine) conflictAt(ctx context.Context, salon *models.Salon, slot Interval) (Conflict, error) {
	appointments, err := e.store.ListOccupying(ctx, salon.ID, slot.Start, slot.End)
	if err != nil {
		return Conflict{}, fmt.Errorf("%w: list appointments: %w", ErrPersistenceUnavailable, err)
	}
	e.canonicalize(appointments)
	return DetectConflict(slot, appointments), nil
}

type BookingRequest struct {
	Salon         string
	Service       string
	Customer      string
	RequestedTime string
}

// BookAppointment commits the requested slot or reports why it cannot.
func (e *Engine) BookAppointment(ctx context.Context, req BookingRequest) (*Result, error) {
	return e.book(ctx, req, SourceRequested)
}

// ConfirmNextSlot commits a slot the client accepted from an earlier
// proposal. The slot is validated again from scratch.
func (e *Engine) ConfirmNextSlot(ctx context.Context, req BookingRequest) (*Result, error) {
	return e.book(ctx, req, SourceConfirmedNext)
}

func (e *Engine) book(ctx context.Context, req BookingRequest, source Source) (*Result, error) {
	if req.Customer == "" {
		return nil, ErrMissingCustomer
	}
	start, err := e.zone.Normalize(req.RequestedTime)
	if err != nil {
		return nil, err
	}
	salon, service, err := e.Resolve(ctx, req.Salon, req.Service)
	if err != nil {
		return nil, err
	}
	return e.Commit(ctx, CommitRequest{
		Salon:    salon,
		Service:  service,
		Customer: req.Customer,
		Start:    start,
		Source:   source,
	})
}
