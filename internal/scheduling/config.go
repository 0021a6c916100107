package scheduling

import (
	"time"

	"medsched/pkg/model"
)

// Config carries every engine tunable. It is passed in explicitly at
// construction so multiple engines with different settings can coexist in
// one process (and in one test binary).
type Config struct {
	// Location is the clinic timezone; "today" and all instants are
	// evaluated in it.
	Location *time.Location

	// WeekendDays are clinic-wide non-working days.
	WeekendDays []time.Weekday

	// Holidays are fixed-date closures as "MM-DD" strings.
	Holidays []string

	// DefaultWindow applies to specialists without per-weekday hours.
	DefaultWindow model.WorkingWindow

	// DefaultDurationMin is used when the request names no service.
	DefaultDurationMin int

	// MaxAdvanceDays bounds the booking look-ahead; dates beyond it get a
	// DATE_OUT_OF_RANGE warning.
	MaxAdvanceDays int

	AltTimeCount       int
	AltDateCount       int
	AltDateHorizonDays int

	// SameDayLeadTime excludes today's slots that start too soon.
	SameDayLeadTime time.Duration

	// PhoneRegion is the default region for normalizing local-format
	// phone numbers.
	PhoneRegion string
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if len(c.WeekendDays) == 0 {
		c.WeekendDays = []time.Weekday{time.Friday, time.Saturday}
	}
	if c.DefaultWindow.Start == "" {
		c.DefaultWindow.Start = "10:00"
	}
	if c.DefaultWindow.End == "" {
		c.DefaultWindow.End = "19:00"
	}
	if c.DefaultDurationMin <= 0 {
		c.DefaultDurationMin = 60
	}
	if c.MaxAdvanceDays <= 0 {
		c.MaxAdvanceDays = 90
	}
	if c.AltTimeCount <= 0 {
		c.AltTimeCount = 3
	}
	if c.AltDateCount <= 0 {
		c.AltDateCount = 3
	}
	if c.AltDateHorizonDays <= 0 {
		c.AltDateHorizonDays = 14
	}
	if c.PhoneRegion == "" {
		c.PhoneRegion = "IL"
	}
	return c
}
