package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/repository"
)

type CommitRequest struct {
	Salon    *models.Salon
	Service  *models.Service
	Customer string
	Start    time.Time
	Source   Source
}

// Commit validates the slot against the latest persisted state and inserts
// exactly one scheduled appointment, or none. A lost race surfaces as
// ReasonSlotTaken with a fresh proposal; the insert is never retried.
func (e *Engine) Commit(ctx context.Context, req CommitRequest) (*Result, error) {
	if req.Customer == "" {
		return nil, ErrMissingCustomer
	}
	start := e.zone.Canonical(req.Start)
	duration := req.Service.Length()
	slot := Interval{Start: start, End: start.Add(duration)}
	res := &Result{Start: slot.Start, End: slot.End}

	if err := req.Service.FitsIn(req.Salon); err != nil {
		res.Status = StatusRejected
		res.Reason = ReasonServiceNotBookable
		res.Message = err.Error()
		return res, nil
	}
	if rej := ValidateHours(HoursOf(req.Salon), start, duration, e.now()); rej != nil {
		res.Status = StatusRejected
		res.Reason = rej.Reason
		res.Message = rej.Message
		res.SuggestedNext = rej.Suggested
		return res, nil
	}

	conflict, err := e.conflictAt(ctx, req.Salon, slot)
	if err != nil {
		return nil, err
	}
	if conflict.Conflicting() {
		return e.unavailable(ctx, req, res, ReasonSlotConflict, conflict.MaxEnd)
	}

	appointment := &models.Appointment{
		SalonID:      req.Salon.ID,
		ServiceID:    req.Service.ID,
		CustomerName: req.Customer,
		StartTime:    slot.Start,
		EndTime:      slot.End,
		Status:       models.AppointmentStatusScheduled,
	}
	err = e.store.InsertAppointment(ctx, appointment)
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		e.logger.Warn("slot taken at commit",
			"source", string(req.Source),
			"salon_id", req.Salon.ID,
			"start", e.zone.Format(start),
		)
		return e.unavailable(ctx, req, res, ReasonSlotTaken, start.Add(e.policy.Granularity))
	case err != nil:
		return nil, fmt.Errorf("%w: insert appointment: %w", ErrPersistenceUnavailable, err)
	}

	appointment.StartTime = e.zone.Canonical(appointment.StartTime)
	appointment.EndTime = e.zone.Canonical(appointment.EndTime)
	e.logger.Info("appointment committed",
		"source", string(req.Source),
		"appointment_id", appointment.ID,
		"salon_id", req.Salon.ID,
		"service_id", req.Service.ID,
		"start", e.zone.Format(appointment.StartTime),
	)

	res.Status = StatusSuccess
	res.Appointment = appointment
	res.Message = "Appointment booked successfully"
	return res, nil
}

func (e *Engine) unavailable(ctx context.Context, req CommitRequest, res *Result, reason Reason, searchFrom time.Time) (*Result, error) {
	next, err := e.FindNextSlot(ctx, req.Salon, req.Service, searchFrom)
	if err != nil {
		return nil, err
	}
	res.Status = StatusSlotUnavailable
	res.Reason = reason
	if next == nil {
		res.Message = "The requested slot is not available and no free slot was found within the search horizon"
		return res, nil
	}
	res.SuggestedNext = &next.Start
	if reason == ReasonSlotTaken {
		res.Message = fmt.Sprintf("This slot was just taken. Would you like to book the next available slot at %s?", next.Start.Format("2006-01-02 15:04 MST"))
	} else {
		res.Message = fmt.Sprintf("The requested slot is not available. Would you like to book the next available slot at %s?", next.Start.Format("2006-01-02 15:04 MST"))
	}
	return res, nil
}
