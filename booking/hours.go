package booking

import (
	"fmt"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/utils"
)

// Hours is a salon's daily operating window as offsets from midnight.
type Hours struct {
	Open  time.Duration
	Close time.Duration
}

func HoursOf(salon *models.Salon) Hours {
	return Hours{Open: salon.Opening(), Close: salon.Closing()}
}

func (h Hours) openOn(t time.Time) time.Time {
	return utils.BeginningOfDay(t).Add(h.Open)
}

func (h Hours) closeOn(t time.Time) time.Time {
	return utils.BeginningOfDay(t).Add(h.Close)
}

func (h Hours) nextOpening(t time.Time) time.Time {
	return utils.BeginningOfDay(t).AddDate(0, 0, 1).Add(h.Open)
}

// clamp moves t into the operating window: before opening goes to the same
// day's opening, after closing to the next day's opening.
func (h Hours) clamp(t time.Time) time.Time {
	tod := utils.TimeOfDay(t)
	switch {
	case tod < h.Open:
		return h.openOn(t)
	case tod > h.Close:
		return h.nextOpening(t)
	}
	return t
}

// fit is clamp that also leaves room for duration before closing.
func (h Hours) fit(t time.Time, duration time.Duration) time.Time {
	t = h.clamp(t)
	if t.Add(duration).After(h.closeOn(t)) {
		return h.nextOpening(t)
	}
	return t
}

func (h Hours) String() string {
	return utils.FormatClock(h.Open) + " - " + utils.FormatClock(h.Close)
}

// ValidateHours applies the business-hours rules to [start, start+duration)
// in order and returns the first one that fails, or nil. All instants must
// already be canonical.
func ValidateHours(h Hours, start time.Time, duration time.Duration, now time.Time) *Rejection {
	startDay := utils.BeginningOfDay(start)
	today := utils.BeginningOfDay(now)

	if startDay.Before(today) {
		next := h.nextOpening(now)
		return &Rejection{
			Reason:    ReasonInPast,
			Message:   "Cannot book appointments in the past",
			Suggested: &next,
		}
	}
	if startDay.Equal(today) && utils.TimeOfDay(start) < utils.TimeOfDay(now) {
		next := h.fit(now.Add(time.Hour).Truncate(time.Minute), duration)
		return &Rejection{
			Reason:    ReasonInPast,
			Message:   "Cannot book appointments in the past",
			Suggested: &next,
		}
	}

	tod := utils.TimeOfDay(start)
	if tod < h.Open || tod > h.Close {
		next := h.nextOpening(start)
		return &Rejection{
			Reason:    ReasonOutsideHours,
			Message:   fmt.Sprintf("Requested time %s is outside salon hours (%s)", utils.FormatClock(tod), h),
			Suggested: &next,
		}
	}

	if start.Add(duration).After(h.closeOn(start)) {
		next := h.nextOpening(start)
		return &Rejection{
			Reason:    ReasonWouldEndAfterHours,
			Message:   "Appointment would end after business hours",
			Suggested: &next,
		}
	}
	return nil
}
