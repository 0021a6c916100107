package scheduling

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseDate parses a calendar date in "YYYY-MM-DD" form, anchored to the
// given location at midnight.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// clinicClock answers calendar questions for a single clinic: what day it
// is, which days are closed, and how to turn a date plus a wall-clock time
// into an instant. The current-time source is injectable for tests.
type clinicClock struct {
	loc      *time.Location
	weekend  map[time.Weekday]bool
	holidays map[string]bool
	now      func() time.Time
}

func newClinicClock(cfg Config, now func() time.Time) *clinicClock {
	weekend := make(map[time.Weekday]bool, len(cfg.WeekendDays))
	for _, d := range cfg.WeekendDays {
		weekend[d] = true
	}
	holidays := make(map[string]bool, len(cfg.Holidays))
	for _, h := range cfg.Holidays {
		holidays[h] = true
	}
	if now == nil {
		now = time.Now
	}
	return &clinicClock{
		loc:      cfg.Location,
		weekend:  weekend,
		holidays: holidays,
		now:      now,
	}
}

func (c *clinicClock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns midnight of the current day in the clinic timezone.
func (c *clinicClock) Today() time.Time {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.loc)
}

func (c *clinicClock) IsWeekend(d time.Time) bool {
	return c.weekend[d.Weekday()]
}

func (c *clinicClock) IsHoliday(d time.Time) bool {
	return c.holidays[d.Format("01-02")]
}

// IsWorkingDay reports whether the clinic is open on the given date.
func (c *clinicClock) IsWorkingDay(d time.Time) bool {
	return !c.IsWeekend(d) && !c.IsHoliday(d)
}

// Combine anchors a wall-clock time onto a calendar date.
func (c *clinicClock) Combine(date time.Time, t TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, c.loc)
}

// DateOf truncates an instant to midnight of its clinic-local day.
func (c *clinicClock) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}
