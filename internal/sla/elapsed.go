package sla

import (
	"math"
	"time"
)

// maxElapsedDays bounds the day walk when a holiday predicate is set. Longer spans are
// counted from that many days before the end.
const maxElapsedDays = 3660

// ElapsedHours returns the business hours between start and end, rounded to 4 decimals.
// The end is first normalized to the last valid business boundary; the start is clamped
// forward into the business window before walking one calendar day at a time. Without
// holidays, whole weeks are added in bulk.
func (c BusinessCalendar) ElapsedHours(start, end time.Time) float64 {
	if !start.Before(end) {
		return 0
	}

	end = c.NormalizeEndBoundary(end)
	start = c.in(start)
	if !start.Before(end) {
		return 0
	}

	cursor := c.clampStart(start)
	if c.Holidays != nil {
		earliest := time.Date(end.Year(), end.Month(), end.Day()-maxElapsedDays, c.StartHour, 0, 0, 0, end.Location())
		cursor = maxTime(cursor, earliest)
	}

	// bulkHours is kept in float hours: spans of centuries overflow time.Duration.
	var total time.Duration
	var bulkHours float64
	for cursor.Before(end) {
		if c.Holidays == nil && cursor.Equal(c.at(cursor, c.StartHour)) {
			// keep a spare day so every skipped window closes before end
			days := int(end.Sub(cursor) / (24 * time.Hour))
			if weeks := (days - 1) / 7; weeks > 0 {
				bulkHours += float64(weeks) * c.weeklyHours().Hours()
				cursor = time.Date(cursor.Year(), cursor.Month(), cursor.Day()+7*weeks, c.StartHour, 0, 0, 0, cursor.Location())
				continue
			}
		}
		if c.IsBusinessDay(cursor) {
			windowStart := maxTime(cursor, c.at(cursor, c.StartHour))
			windowEnd := minTime(end, c.at(cursor, c.EndHour))
			if windowEnd.After(windowStart) {
				total += windowEnd.Sub(windowStart)
			}
		}
		cursor = time.Date(cursor.Year(), cursor.Month(), cursor.Day()+1, c.StartHour, 0, 0, 0, cursor.Location())
	}

	return round(bulkHours+total.Hours(), 4)
}

// weeklyHours is the business time in one holiday-free week.
func (c BusinessCalendar) weeklyHours() time.Duration {
	days := 0
	for _, on := range c.BusinessDays {
		if on {
			days++
		}
	}
	return time.Duration(days*(c.EndHour-c.StartHour)) * time.Hour
}

// clampStart moves a start instant before opening to that day's opening, and one at or
// after closing to the next day's opening.
func (c BusinessCalendar) clampStart(t time.Time) time.Time {
	if t.Hour() < c.StartHour {
		return c.at(t, c.StartHour)
	}
	if t.Hour() >= c.EndHour {
		return time.Date(t.Year(), t.Month(), t.Day()+1, c.StartHour, 0, 0, 0, t.Location())
	}
	return t
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
