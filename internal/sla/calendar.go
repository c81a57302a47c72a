package sla

import (
	"errors"
	"fmt"
	"time"
)

// maxDayWalk bounds day-by-day searches for a business day.
const maxDayWalk = 366

// HolidayFunc reports whether the given date is a non-working day.
type HolidayFunc func(date time.Time) bool

// BusinessCalendar describes the business-hours window used for SLA arithmetic.
type BusinessCalendar struct {
	StartHour    int
	EndHour      int
	BusinessDays map[time.Weekday]bool
	Location     *time.Location
	Holidays     HolidayFunc
}

// DefaultCalendar returns 08:00-18:00, Monday to Friday, in the given location.
func DefaultCalendar(loc *time.Location) BusinessCalendar {
	if loc == nil {
		loc = time.Local
	}
	return BusinessCalendar{
		StartHour: 8,
		EndHour:   18,
		BusinessDays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
		Location: loc,
	}
}

// Validate checks the calendar invariants.
func (c BusinessCalendar) Validate() error {
	if c.StartHour < 0 || c.StartHour > 23 || c.EndHour < 0 || c.EndHour > 23 {
		return fmt.Errorf("business hours out of range: %d-%d", c.StartHour, c.EndHour)
	}
	if c.StartHour >= c.EndHour {
		return fmt.Errorf("start hour %d must be before end hour %d", c.StartHour, c.EndHour)
	}
	for _, on := range c.BusinessDays {
		if on {
			return nil
		}
	}
	return errors.New("at least one business day is required")
}

// IsBusinessDay reports whether the date falls on a configured weekday that is not a holiday.
func (c BusinessCalendar) IsBusinessDay(date time.Time) bool {
	date = c.in(date)
	if !c.BusinessDays[date.Weekday()] {
		return false
	}
	if c.Holidays != nil && c.Holidays(date) {
		return false
	}
	return true
}

// IsBusinessInstant reports whether t is inside business hours on a business day.
func (c BusinessCalendar) IsBusinessInstant(t time.Time) bool {
	t = c.in(t)
	if !c.IsBusinessDay(t) {
		return false
	}
	return t.Hour() >= c.StartHour && t.Hour() < c.EndHour
}

// NormalizeEndBoundary pulls an end instant that lies outside business hours back to the
// closest preceding business-day close. The close itself (EndHour:00:00) is kept as-is.
func (c BusinessCalendar) NormalizeEndBoundary(t time.Time) time.Time {
	t = c.in(t)
	if !c.IsBusinessDay(t) {
		return c.previousClose(t)
	}
	if t.Hour() < c.StartHour {
		return c.previousClose(t)
	}
	if t.Hour() < c.EndHour {
		return t
	}
	closing := c.at(t, c.EndHour)
	if t.Equal(closing) {
		return t
	}
	return closing
}

// previousClose walks back from the day before t until a business day is found and
// returns that day's close. If none is reachable t is returned unchanged.
func (c BusinessCalendar) previousClose(t time.Time) time.Time {
	day := t
	for i := 0; i < maxDayWalk; i++ {
		day = time.Date(day.Year(), day.Month(), day.Day()-1, 0, 0, 0, 0, day.Location())
		if c.IsBusinessDay(day) {
			return c.at(day, c.EndHour)
		}
	}
	return t
}

// at returns the given hour on t's calendar day.
func (c BusinessCalendar) at(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func (c BusinessCalendar) in(t time.Time) time.Time {
	if c.Location == nil {
		return t
	}
	return t.In(c.Location)
}
