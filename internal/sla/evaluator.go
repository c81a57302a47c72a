package sla

import (
	"math"
	"time"
)

// Status classifies how much of the SLA budget has been consumed.
type Status string

const (
	StatusOK      Status = "OK"
	StatusAlerta  Status = "ALERTA"
	StatusCritico Status = "CRITICO"
	StatusVencido Status = "VENCIDO"
)

// Statuses lists every status from best to worst.
var Statuses = []Status{StatusOK, StatusAlerta, StatusCritico, StatusVencido}

// Percent thresholds for the status bands.
const (
	AlertaThreshold  = 75.0
	CriticoThreshold = 90.0
	VencidoThreshold = 100.0
)

// ClassifyPercent maps a percent-used value to its status band.
func ClassifyPercent(percent float64) Status {
	switch {
	case percent >= VencidoThreshold:
		return StatusVencido
	case percent >= CriticoThreshold:
		return StatusCritico
	case percent >= AlertaThreshold:
		return StatusAlerta
	default:
		return StatusOK
	}
}

// TicketInput carries the ticket fields the evaluator needs.
type TicketInput struct {
	OpenedOn     time.Time
	OpenedAtTime string
	Priority     int
	Status       string
	// ReferenceAt is the attendance-start or conclusion instant; nil means "now".
	ReferenceAt *time.Time
	Kind        Kind
}

// Snapshot is the SLA state of one ticket at one instant.
type Snapshot struct {
	ElapsedHours   float64
	RemainingHours float64
	BudgetHours    float64
	PercentUsed    float64
	WithinBudget   bool
	Status         Status
	Priority       int
	Kind           Kind
	OpenedAt       time.Time
	ReferenceAt    time.Time
	Frozen         bool
}

// Engine evaluates tickets against a calendar and a policy table.
type Engine struct {
	Calendar BusinessCalendar
	Policies PolicyTable
	Now      func() time.Time
}

// NewEngine builds an engine that uses the wall clock.
func NewEngine(calendar BusinessCalendar, policies PolicyTable) *Engine {
	return &Engine{Calendar: calendar, Policies: policies, Now: time.Now}
}

// Evaluate computes the snapshot for one ticket. It never fails: malformed times
// degrade to midnight and unknown priorities use the default policy.
func (e *Engine) Evaluate(in TicketInput) Snapshot {
	kind := in.Kind
	if kind == "" {
		kind = KindResolution
	}
	budget := e.Policies.Budget(in.Priority, kind)

	opened := e.OpeningInstant(in)

	frozen := in.ReferenceAt != nil
	var reference time.Time
	if frozen {
		reference = *in.ReferenceAt
	} else {
		reference = e.CurrentTime()
	}

	elapsed := e.Calendar.ElapsedHours(opened, reference)
	remaining := round(math.Max(0, budget-elapsed), 4)

	percent := 100.0
	if budget > 0 {
		percent = math.Min(100, 100*elapsed/budget)
	}
	percent = round(percent, 1)

	return Snapshot{
		ElapsedHours:   elapsed,
		RemainingHours: remaining,
		BudgetHours:    budget,
		PercentUsed:    percent,
		WithinBudget:   percent < VencidoThreshold,
		Status:         ClassifyPercent(percent),
		Priority:       in.Priority,
		Kind:           kind,
		OpenedAt:       opened,
		ReferenceAt:    reference,
		Frozen:         frozen,
	}
}

// OpeningInstant combines the opening date with the parsed opening time, seconds zeroed.
func (e *Engine) OpeningInstant(in TicketInput) time.Time {
	tod := ParseTimeOfDay(in.OpenedAtTime)
	loc := e.Calendar.Location
	if loc == nil {
		loc = in.OpenedOn.Location()
	}
	y, m, d := in.OpenedOn.Date()
	return time.Date(y, m, d, tod.Hours, tod.Minutes, 0, 0, loc)
}

// CurrentTime returns the engine clock, falling back to the wall clock.
func (e *Engine) CurrentTime() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
