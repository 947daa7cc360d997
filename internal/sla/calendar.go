package sla

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// advanceDayLimit bounds the Advance walk so a schedule with no working
// days cannot loop forever.
const advanceDayLimit = 3660

type dayWindow struct {
	enabled  bool
	startMin int
	endMin   int
}

// Calendar is a compiled business-hours schedule: timezone resolved, day
// windows parsed to minutes-of-day, holidays indexed. Compile once per
// computation so the schedule version in effect at that moment is used.
type Calendar struct {
	loc      *time.Location
	days     [7]dayWindow
	holidays map[string]struct{}
}

// NewCalendar compiles a schedule. Day windows with end not after start
// are rejected; a disabled day's times are ignored.
func NewCalendar(schedule *domain.BusinessHoursSchedule) (*Calendar, error) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", schedule.Timezone, err)
	}

	cal := &Calendar{loc: loc, holidays: make(map[string]struct{}, len(schedule.Holidays))}
	for i, day := range schedule.Days {
		if !day.Enabled {
			continue
		}
		start, err := parseClock(day.Start)
		if err != nil {
			return nil, fmt.Errorf("day %d start: %w", i, err)
		}
		end, err := parseClock(day.End)
		if err != nil {
			return nil, fmt.Errorf("day %d end: %w", i, err)
		}
		if end <= start {
			return nil, fmt.Errorf("day %d: end %q not after start %q", i, day.End, day.Start)
		}
		cal.days[i] = dayWindow{enabled: true, startMin: start, endMin: end}
	}
	for _, holiday := range schedule.Holidays {
		cal.holidays[holiday] = struct{}{}
	}
	return cal, nil
}

// IsWorkingTime reports whether t falls inside a working window: the
// weekday is enabled, the date is not a holiday, and the local clock time
// is within [start, end).
func (c *Calendar) IsWorkingTime(t time.Time) bool {
	local := t.In(c.loc)
	day := c.days[mondayIndex(local.Weekday())]
	if !day.enabled {
		return false
	}
	if c.isHoliday(local) {
		return false
	}
	minute := local.Hour()*60 + local.Minute()
	return minute >= day.startMin && minute < day.endMin
}

// Advance returns the instant at which `hours` working hours have
// accumulated starting from `from`. The walk clamps to each day's window
// boundaries, skipping disabled days and holidays; a start inside a
// working window consumes the remainder of that window first.
func (c *Calendar) Advance(from time.Time, hours float64) time.Time {
	remaining := time.Duration(hours * float64(time.Hour))
	if remaining <= 0 {
		return from
	}

	cursor := from.In(c.loc)
	for i := 0; i < advanceDayLimit; i++ {
		day := c.days[mondayIndex(cursor.Weekday())]
		if day.enabled && !c.isHoliday(cursor) {
			dayStart := atMinute(cursor, day.startMin)
			dayEnd := atMinute(cursor, day.endMin)
			if cursor.Before(dayStart) {
				cursor = dayStart
			}
			if cursor.Before(dayEnd) {
				available := dayEnd.Sub(cursor)
				if available >= remaining {
					return cursor.Add(remaining)
				}
				remaining -= available
			}
		}
		cursor = nextMidnight(cursor)
	}
	return cursor
}

func (c *Calendar) isHoliday(local time.Time) bool {
	_, ok := c.holidays[local.Format("2006-01-02")]
	return ok
}

// mondayIndex maps time.Weekday (Sunday=0) to the schedule's Monday=0 order.
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func atMinute(day time.Time, minuteOfDay int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, day.Location())
}

func nextMidnight(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).AddDate(0, 0, 1)
}

func parseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}
