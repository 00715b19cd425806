package sim

import (
	"fmt"
	"time"
)

// DateLayout is the calendar format used in traces and echo lines.
const DateLayout = "2006-01-02"

// TimeMapper converts between simulation ticks and calendar dates.
// One tick is one day; tick 0 is the start date. TimeMapper is immutable.
type TimeMapper struct {
	start time.Time
}

// NewTimeMapper anchors tick 0 at the calendar day of start (UTC).
func NewTimeMapper(start time.Time) TimeMapper {
	return TimeMapper{start: truncateDay(start)}
}

// StartDate returns the date of tick 0.
func (m TimeMapper) StartDate() time.Time {
	return m.start
}

// ToSimTime returns the tick of date. Dates before the start date have no
// tick and yield an *InvalidTimeError.
func (m TimeMapper) ToSimTime(date time.Time) (int64, error) {
	d := truncateDay(date)
	if d.Before(m.start) {
		return 0, &InvalidTimeError{
			Requested: -daysBetween(d, m.start),
			Reason:    fmt.Sprintf("date %s precedes start date %s", d.Format(DateLayout), m.start.Format(DateLayout)),
		}
	}
	return daysBetween(m.start, d), nil
}

// ToDate returns the calendar date of tick.
func (m TimeMapper) ToDate(tick int64) time.Time {
	return m.start.AddDate(0, 0, int(tick))
}

// Format renders the date of tick with DateLayout.
func (m TimeMapper) Format(tick int64) string {
	return m.ToDate(tick).Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b; both must be UTC midnights.
// time.Duration saturates after about 292 years, so this works on Unix
// seconds instead of Sub.
func daysBetween(a, b time.Time) int64 {
	return (b.Unix() - a.Unix()) / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60
