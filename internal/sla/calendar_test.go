package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Mon 2026-10-12 .. Sun 2026-10-18
func at(day, hour, min int) time.Time {
	return time.Date(2026, time.October, day, hour, min, 0, 0, time.UTC)
}

func testCalendar() BusinessCalendar {
	return DefaultCalendar(time.UTC)
}

func TestIsBusinessInstant(t *testing.T) {
	cal := testCalendar()

	tests := []struct {
		name string
		in   time.Time
		want bool
	}{
		{"monday opening", at(12, 8, 0), true},
		{"monday midday", at(12, 13, 30), true},
		{"monday last minute", at(12, 17, 59), true},
		{"monday closing", at(12, 18, 0), false},
		{"monday early", at(12, 7, 59), false},
		{"saturday midday", at(17, 12, 0), false},
		{"sunday midday", at(18, 12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsBusinessInstant(tt.in))
		})
	}
}

func TestIsBusinessDayHonoursHolidays(t *testing.T) {
	cal := testCalendar()
	cal.Holidays = func(date time.Time) bool {
		return date.Month() == time.October && date.Day() == 12
	}

	assert.False(t, cal.IsBusinessDay(at(12, 10, 0)))
	assert.False(t, cal.IsBusinessInstant(at(12, 10, 0)))
	assert.True(t, cal.IsBusinessDay(at(13, 10, 0)))
}

func TestNormalizeEndBoundary(t *testing.T) {
	cal := testCalendar()

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"inside window untouched", at(14, 11, 15), at(14, 11, 15)},
		{"closing tick is inclusive", at(14, 18, 0), at(14, 18, 0)},
		{"after closing clamps same day", at(14, 21, 40), at(14, 18, 0)},
		{"closing with minutes clamps same day", at(14, 18, 1), at(14, 18, 0)},
		{"before opening rolls to previous day", at(14, 6, 0), at(13, 18, 0)},
		{"monday before opening rolls to friday", at(19, 7, 0), at(16, 18, 0)},
		{"saturday rolls to friday", at(17, 10, 0), at(16, 18, 0)},
		{"sunday rolls to friday", at(18, 23, 0), at(16, 18, 0)},
		{"saturday closing tick still rolls back", at(17, 18, 0), at(16, 18, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(cal.NormalizeEndBoundary(tt.in)), "got %s", cal.NormalizeEndBoundary(tt.in))
		})
	}
}

func TestNormalizeEndBoundaryClosingWithSeconds(t *testing.T) {
	cal := testCalendar()
	in := time.Date(2026, time.October, 14, 18, 0, 30, 0, time.UTC)

	assert.True(t, at(14, 18, 0).Equal(cal.NormalizeEndBoundary(in)))
}

func TestNormalizeEndBoundarySkipsHolidays(t *testing.T) {
	cal := testCalendar()
	cal.Holidays = func(date time.Time) bool { return date.Day() == 16 }

	got := cal.NormalizeEndBoundary(at(17, 10, 0))

	assert.True(t, at(15, 18, 0).Equal(got), "got %s", got)
}

func TestNormalizeEndBoundaryWithoutBusinessDays(t *testing.T) {
	cal := testCalendar()
	cal.BusinessDays = map[time.Weekday]bool{}

	in := at(14, 20, 0)
	assert.True(t, in.Equal(cal.NormalizeEndBoundary(in)))
}

func TestCalendarValidate(t *testing.T) {
	assert.NoError(t, testCalendar().Validate())

	inverted := testCalendar()
	inverted.StartHour, inverted.EndHour = 18, 8
	assert.Error(t, inverted.Validate())

	outOfRange := testCalendar()
	outOfRange.EndHour = 24
	assert.Error(t, outOfRange.Validate())

	noDays := testCalendar()
	noDays.BusinessDays = map[time.Weekday]bool{time.Monday: false}
	assert.Error(t, noDays.Validate())
}
