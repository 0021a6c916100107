package scheduling

import (
	"testing"
	"time"
)

func testClock(now time.Time) *clinicClock {
	cfg := Config{
		Location: time.UTC,
		Holidays: []string{"01-01", "05-14", "09-30", "10-09"},
	}.withDefaults()
	return newClinicClock(cfg, func() time.Time { return now })
}

func TestClockToday(t *testing.T) {
	c := testClock(time.Date(2026, 3, 2, 17, 45, 12, 0, time.UTC))
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := c.Today(); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}

func TestClockWorkingDays(t *testing.T) {
	c := testClock(testNow)

	tests := []struct {
		name    string
		date    time.Time
		working bool
	}{
		{"monday", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"friday", time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), false},
		{"sunday", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), true},
		{"new year holiday", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"fixed holiday any year", time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsWorkingDay(tt.date); got != tt.working {
				t.Errorf("IsWorkingDay(%s) = %v, want %v", tt.date.Format(dateLayout), got, tt.working)
			}
		})
	}
}

func TestClockCombine(t *testing.T) {
	c := testClock(testNow)
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	got := c.Combine(date, TimeOfDay{Hour: 14, Minute: 30})
	want := time.Date(2026, 3, 3, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Combine() = %v, want %v", got, want)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"10:00", TimeOfDay{10, 0}, false},
		{"23:59", TimeOfDay{23, 59}, false},
		{"24:00", TimeOfDay{}, true},
		{"9am", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := (TimeOfDay{Hour: 9, Minute: 5}).String(); got != "09:05" {
		t.Errorf("String() = %q, want %q", got, "09:05")
	}
}
