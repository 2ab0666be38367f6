package booking

import (
	"context"
	"fmt"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/utils"
)

// SearchPolicy bounds the forward search for a free slot.
type SearchPolicy struct {
	Granularity time.Duration
	Horizon     time.Duration
	// MaxProbes caps the number of candidates examined; zero means no cap.
	MaxProbes int
}

// DefaultSearchPolicy is the thorough search: 15 minute steps over a week.
func DefaultSearchPolicy() SearchPolicy {
	return SearchPolicy{
		Granularity: 15 * time.Minute,
		Horizon:     7 * 24 * time.Hour,
	}
}

// QuickSearchPolicy tries at most 14 candidates half an hour apart.
func QuickSearchPolicy() SearchPolicy {
	return SearchPolicy{
		Granularity: 30 * time.Minute,
		Horizon:     7 * 24 * time.Hour,
		MaxProbes:   14,
	}
}

func (p SearchPolicy) Validate() error {
	if p.Granularity <= 0 {
		return fmt.Errorf("search granularity must be positive, got %s", p.Granularity)
	}
	if p.Horizon <= 0 {
		return fmt.Errorf("search horizon must be positive, got %s", p.Horizon)
	}
	if p.MaxProbes < 0 {
		return fmt.Errorf("search probe cap must not be negative, got %d", p.MaxProbes)
	}
	return nil
}

// ceilToGrid rounds t up to the next anchor + k*step.
func ceilToGrid(t, anchor time.Time, step time.Duration) time.Time {
	off := t.Sub(anchor)
	if off <= 0 {
		return anchor
	}
	if rem := off % step; rem != 0 {
		return t.Add(step - rem)
	}
	return t
}

// findSlot walks forward from origin over a start-ordered snapshot of
// occupying appointments and returns the earliest free interval, or nil when
// the horizon or probe cap runs out. It does no I/O.
func findSlot(ctx context.Context, h Hours, duration time.Duration, origin time.Time, sorted []models.Appointment, p SearchPolicy) (*Interval, error) {
	limit := origin.Add(p.Horizon)
	candidate := h.clamp(origin)
	anchor := candidate

	// Only candidates that reach the overlap check count as probes; snaps to
	// an opening are free.
	probes := 0
	for !candidate.After(limit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tod := utils.TimeOfDay(candidate)
		if tod < h.Open {
			candidate = h.openOn(candidate)
			anchor = candidate
		} else if tod > h.Close {
			candidate = h.nextOpening(candidate)
			anchor = candidate
			continue
		}

		end := candidate.Add(duration)
		if end.After(h.closeOn(candidate)) {
			candidate = h.nextOpening(candidate)
			anchor = candidate
			continue
		}

		if p.MaxProbes > 0 && probes >= p.MaxProbes {
			break
		}
		probes++

		slot := Interval{Start: candidate, End: end}
		blocking := firstOverlap(slot, sorted)
		if blocking == nil {
			return &slot, nil
		}

		// Every start before blocking.EndTime still overlaps it.
		next := ceilToGrid(blocking.EndTime, anchor, p.Granularity)
		if !next.After(candidate) {
			next = candidate.Add(p.Granularity)
		}
		candidate = next
	}
	return nil, nil
}

// FindNextSlot returns the earliest free interval for service at salon
// starting no earlier than after (or now, whichever is later). A nil
// interval with a nil error means nothing is free within the horizon.
func (e *Engine) FindNextSlot(ctx context.Context, salon *models.Salon, service *models.Service, after time.Time) (*Interval, error) {
	origin := e.zone.Canonical(after)
	if earliest := e.earliest(); origin.Before(earliest) {
		origin = earliest
	}
	duration := service.Length()

	appointments, err := e.store.ListOccupying(ctx, salon.ID, origin, origin.Add(e.policy.Horizon+duration))
	if err != nil {
		return nil, fmt.Errorf("%w: list appointments: %w", ErrPersistenceUnavailable, err)
	}
	e.canonicalize(appointments)

	slot, err := findSlot(ctx, HoursOf(salon), duration, origin, appointments, e.policy)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		e.logger.Info("no free slot within horizon",
			"salon_id", salon.ID,
			"service_id", service.ID,
			"origin", e.zone.Format(origin),
			"horizon", e.policy.Horizon.String(),
		)
	}
	return slot, nil
}

// FindNextSlotFor resolves the salon and service by name or id and searches
// from the given timestamp. An empty timestamp searches from now.
func (e *Engine) FindNextSlotFor(ctx context.Context, salonRef, serviceRef, after string) (*Interval, error) {
	origin := e.now()
	if after != "" {
		t, err := e.zone.Normalize(after)
		if err != nil {
			return nil, err
		}
		origin = t
	}
	salon, service, err := e.Resolve(ctx, salonRef, serviceRef)
	if err != nil {
		return nil, err
	}
	return e.FindNextSlot(ctx, salon, service, origin)
}
