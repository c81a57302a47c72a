package sla

import (
	"strconv"
	"strings"
)

// TimeOfDay is an hour/minute pair as stored by the ticket system.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// ParseTimeOfDay decodes the legacy opening-time encodings: "HH:MM[:SS]", "HHMM", "HMM", "HH"
// and other digit strings (n/100, n%100). Anything else yields 00:00. Ranges are not checked.
func ParseTimeOfDay(raw string) TimeOfDay {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TimeOfDay{}
	}

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		tod := TimeOfDay{Hours: atoiOrZero(parts[0])}
		if len(parts) > 1 {
			tod.Minutes = atoiOrZero(parts[1])
		}
		return tod
	}

	if !allDigits(raw) {
		return TimeOfDay{}
	}

	switch len(raw) {
	case 4:
		return TimeOfDay{Hours: atoiOrZero(raw[:2]), Minutes: atoiOrZero(raw[2:])}
	case 3:
		return TimeOfDay{Hours: atoiOrZero(raw[:1]), Minutes: atoiOrZero(raw[1:])}
	case 2:
		return TimeOfDay{Hours: atoiOrZero(raw)}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return TimeOfDay{}
	}
	return TimeOfDay{Hours: n / 100, Minutes: n % 100}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
