// Package markethours answers whether the US equity market is open, so the
// scanner can idle outside trading hours instead of burning provider quota
// on stale data.
package markethours

import (
	"fmt"
	"time"
)

// Eastern is the NYSE trading timezone. Falls back to a fixed UTC-5 zone
// when the tz database is unavailable; that is wrong for half the year but
// only shifts the idle window, never corrupts data.
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// Regular session hours in Eastern time.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

// IsMarketOpen returns true if t falls within the regular NYSE session
// (9:30 AM - 4:00 PM ET, Mon-Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	et := t.In(Eastern)
	wd := et.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(et) {
		return false
	}
	hm := et.Hour()*60 + et.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	et := t.In(Eastern)
	wd := et.Weekday()
	return wd >= time.Monday && wd <= time.Friday && !IsHoliday(et)
}

// NextOpen returns the next session open. If t is before today's open on a
// trading day, returns today's open.
func NextOpen(t time.Time) time.Time {
	et := t.In(Eastern)

	todayOpen := time.Date(et.Year(), et.Month(), et.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
	if et.Before(todayOpen) && IsTradingDay(et) {
		return todayOpen
	}

	d := et.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ {
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(et.Year(), et.Month(), et.Day()+1, OpenHour, OpenMinute, 0, 0, Eastern)
}

// TodayClose returns today's session close (4:00 PM ET).
func TodayClose(t time.Time) time.Time {
	et := t.In(Eastern)
	return time.Date(et.Year(), et.Month(), et.Day(), CloseHour, CloseMinute, 0, 0, Eastern)
}

// TimeUntilClose returns the duration until today's close, or 0 if the
// session is already over.
func TimeUntilClose(t time.Time) time.Duration {
	d := TodayClose(t).Sub(t.In(Eastern))
	if d < 0 {
		return 0
	}
	return d
}

// TimeUntilOpen returns the duration until the next session open.
func TimeUntilOpen(t time.Time) time.Duration {
	return NextOpen(t).Sub(t.In(Eastern))
}

// StatusString returns a human-readable market status for logs.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("market open, closes in %s", fmtDur(TimeUntilClose(t)))
	}
	next := NextOpen(t)
	et := next.In(Eastern)
	return fmt.Sprintf("market closed, opens %s %s ET (%s)",
		et.Weekday().String()[:3], et.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
