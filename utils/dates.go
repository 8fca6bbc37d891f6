package utils

import (
	"os"
	"sync"
	"time"
)

// All meal-to-date bucketing goes through one timezone. Mixing UTC and
// naive DATE() truncation is how reports end up on the wrong day.
const defaultTimezone = "Asia/Kolkata"

var (
	locOnce sync.Once
	appLoc  *time.Location
)

// AppLocation returns the canonical timezone, from APP_TIMEZONE if set.
func AppLocation() *time.Location {
	locOnce.Do(func() {
		name := os.Getenv("APP_TIMEZONE")
		if name == "" {
			name = defaultTimezone
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			loc = time.UTC
		}
		appLoc = loc
	})
	return appLoc
}

// DayStart truncates t to midnight of its calendar date in the app timezone.
func DayStart(t time.Time) time.Time {
	lt := t.In(AppLocation())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, AppLocation())
}

// DayBounds returns the half-open [start, end) window covering t's date.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := DayStart(t)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses a yyyy-mm-dd string as midnight in the app timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, AppLocation())
}

func FormatDate(t time.Time) string {
	return t.In(AppLocation()).Format("2006-01-02")
}
