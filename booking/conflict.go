package booking

import (
	"time"

	"salonbook-backend/models"
)

// Overlaps is the half-open rule: touching endpoints do not overlap, equal
// starts always do.
func (i Interval) Overlaps(o Interval) bool {
	if i.Start.Equal(o.Start) {
		return true
	}
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func intervalOf(a *models.Appointment) Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// Conflict describes the occupying appointments a candidate collides with.
type Conflict struct {
	Overlapping []models.Appointment
	// MaxEnd is the latest end among Overlapping, zero when there are none.
	MaxEnd time.Time
}

func (c Conflict) Conflicting() bool {
	return len(c.Overlapping) > 0
}

// DetectConflict checks candidate against every occupying appointment.
// Non-occupying statuses are ignored even if the caller passes them in.
func DetectConflict(candidate Interval, appointments []models.Appointment) Conflict {
	var c Conflict
	for i := range appointments {
		a := &appointments[i]
		if !a.Status.Occupying() {
			continue
		}
		if !candidate.Overlaps(intervalOf(a)) {
			continue
		}
		c.Overlapping = append(c.Overlapping, *a)
		if a.EndTime.After(c.MaxEnd) {
			c.MaxEnd = a.EndTime
		}
	}
	return c
}

// firstOverlap scans a start-ordered slice and returns the first occupying
// appointment overlapping candidate.
func firstOverlap(candidate Interval, sorted []models.Appointment) *models.Appointment {
	for i := range sorted {
		a := &sorted[i]
		if !a.StartTime.Before(candidate.End) {
			// Everything after this starts at or beyond the candidate's end.
			return nil
		}
		if a.Status.Occupying() && candidate.Overlaps(intervalOf(a)) {
			return a
		}
	}
	return nil
}
