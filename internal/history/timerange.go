package history

import (
	"time"

	"github.com/temirov/allgit/internal/shared"
)

const (
	dayInputLayoutConstant        = "2006-01-02"
	previousWorkdayOffsetConstant = -1
	mondayWorkdayOffsetConstant   = -3
	lastWeekOffsetConstant        = -7
)

// TimeRange bounds a history query between two instants.
type TimeRange struct {
	After  time.Time
	Before time.Time
}

// YesterdayRange computes the previous workday's range: the day before today,
// except on Mondays where it reaches back to Friday.
func YesterdayRange(clock shared.Clock) TimeRange {
	today := midnightOf(clock.Now())
	dayOffset := previousWorkdayOffsetConstant
	if today.Weekday() == time.Monday {
		dayOffset = mondayWorkdayOffsetConstant
	}
	return TimeRange{After: today.AddDate(0, 0, dayOffset), Before: today}
}

// LastWeekRange computes the trailing seven-day range ending at today's midnight.
func LastWeekRange(clock shared.Clock) TimeRange {
	today := midnightOf(clock.Now())
	return TimeRange{After: today.AddDate(0, 0, lastWeekOffsetConstant), Before: today}
}

// ParseDay converts a YYYY-MM-DD argument into a midnight instant.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(dayInputLayoutConstant, value)
}

func midnightOf(instant time.Time) time.Time {
	return time.Date(instant.Year(), instant.Month(), instant.Day(), 0, 0, 0, 0, instant.Location())
}
