package markethours

import (
	"testing"
	"time"
)

func et(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, Eastern)
}

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"midweek midday", et(2026, time.March, 11, 12, 0), true},
		{"at the open", et(2026, time.March, 11, 9, 30), true},
		{"just before open", et(2026, time.March, 11, 9, 29), false},
		{"at the close", et(2026, time.March, 11, 16, 0), false},
		{"saturday", et(2026, time.March, 14, 12, 0), false},
		{"sunday", et(2026, time.March, 15, 12, 0), false},
		{"mlk day", et(2026, time.January, 19, 12, 0), false},
		{"july 4th observed", et(2026, time.July, 3, 12, 0), false},
	}
	for _, tc := range cases {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsMarketOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNextOpen(t *testing.T) {
	// before the open on a trading day: today's open
	got := NextOpen(et(2026, time.March, 11, 8, 0))
	if !got.Equal(et(2026, time.March, 11, 9, 30)) {
		t.Errorf("before open: got %v", got)
	}

	// friday evening: monday's open
	got = NextOpen(et(2026, time.March, 13, 17, 0))
	if !got.Equal(et(2026, time.March, 16, 9, 30)) {
		t.Errorf("friday evening: got %v", got)
	}

	// day before a holiday weekend: skips the observed holiday
	got = NextOpen(et(2026, time.July, 2, 17, 0))
	if !got.Equal(et(2026, time.July, 6, 9, 30)) {
		t.Errorf("pre-holiday: got %v", got)
	}
}

func TestTimeUntilClose(t *testing.T) {
	d := TimeUntilClose(et(2026, time.March, 11, 15, 0))
	if d != time.Hour {
		t.Errorf("one hour before close: got %v", d)
	}
	if d := TimeUntilClose(et(2026, time.March, 11, 18, 0)); d != 0 {
		t.Errorf("after close: got %v, want 0", d)
	}
}
