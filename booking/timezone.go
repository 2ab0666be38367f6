package booking

import (
	"fmt"
	"strings"
	"time"

	"salonbook-backend/utils"
)

// Layouts accepted without zone information; such input is read as UTC.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Zone is the single fixed-offset business time zone every instant is
// compared and stored in. Daylight saving is not modelled.
type Zone struct {
	loc *time.Location
}

// NewZone builds a zone from a display name and an offset such as "+05:30".
func NewZone(name, offset string) (*Zone, error) {
	secs, err := utils.ParseUTCOffset(offset)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = offset
	}
	return &Zone{loc: time.FixedZone(name, secs)}, nil
}

// MustZone is NewZone for static configuration; it panics on a bad offset.
func MustZone(name, offset string) *Zone {
	z, err := NewZone(name, offset)
	if err != nil {
		panic(err)
	}
	return z
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

// Normalize parses a client timestamp into its canonical business-zone
// instant. Sub-minute components are dropped.
func (z *Zone) Normalize(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidTimeFormat)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return z.Canonical(t), nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return z.Canonical(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
}

// Canonical converts an instant into the business zone at minute resolution.
// It is idempotent.
func (z *Zone) Canonical(t time.Time) time.Time {
	return t.In(z.loc).Truncate(time.Minute)
}

// Format renders a canonical instant for the wire. Normalize(Format(t)) == t.
func (z *Zone) Format(t time.Time) string {
	return t.In(z.loc).Format(time.RFC3339)
}

// FormatPtr is Format for optional instants.
func (z *Zone) FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := z.Format(*t)
	return &s
}
