package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEngine(now time.Time) *Engine {
	e := NewEngine(testCalendar(), TieredPolicies())
	e.Now = func() time.Time { return now }
	return e
}

func mondayTicket(priority int) TicketInput {
	return TicketInput{
		OpenedOn:     time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC),
		OpenedAtTime: "09:00",
		Priority:     priority,
		Status:       "Aberto",
		Kind:         KindResolution,
	}
}

func TestEvaluateWithinBudget(t *testing.T) {
	snap := fixedEngine(at(12, 13, 0)).Evaluate(mondayTicket(1))

	assert.Equal(t, 4.0, snap.ElapsedHours)
	assert.Equal(t, 4.0, snap.RemainingHours)
	assert.Equal(t, 8.0, snap.BudgetHours)
	assert.Equal(t, 50.0, snap.PercentUsed)
	assert.True(t, snap.WithinBudget)
	assert.Equal(t, StatusOK, snap.Status)
	assert.False(t, snap.Frozen)
	assert.True(t, at(12, 9, 0).Equal(snap.OpenedAt))
	assert.True(t, at(12, 13, 0).Equal(snap.ReferenceAt))
}

func TestEvaluateOverBudget(t *testing.T) {
	snap := fixedEngine(at(12, 17, 30)).Evaluate(mondayTicket(1))

	assert.Equal(t, 8.5, snap.ElapsedHours)
	assert.Equal(t, 0.0, snap.RemainingHours)
	assert.Equal(t, 100.0, snap.PercentUsed)
	assert.False(t, snap.WithinBudget)
	assert.Equal(t, StatusVencido, snap.Status)
}

func TestEvaluateFrozenIsIdempotent(t *testing.T) {
	ref := at(13, 11, 45)
	in := mondayTicket(2)
	in.ReferenceAt = &ref

	first := fixedEngine(at(16, 10, 0)).Evaluate(in)
	second := fixedEngine(at(19, 15, 0)).Evaluate(in)

	assert.Equal(t, first, second)
	assert.True(t, first.Frozen)
	assert.True(t, ref.Equal(first.ReferenceAt))
}

func TestEvaluateIsMonotonicWhileOpen(t *testing.T) {
	in := mondayTicket(3)

	earlier := fixedEngine(at(13, 10, 0)).Evaluate(in)
	later := fixedEngine(at(13, 11, 30)).Evaluate(in)

	assert.GreaterOrEqual(t, later.PercentUsed, earlier.PercentUsed)
	assert.GreaterOrEqual(t, later.ElapsedHours, earlier.ElapsedHours)
}

func TestEvaluateUnknownPriorityUsesDefault(t *testing.T) {
	snap := fixedEngine(at(12, 13, 0)).Evaluate(mondayTicket(999))

	assert.Equal(t, TieredPolicies()[DefaultPriority].ResolutionHours, snap.BudgetHours)
	assert.Equal(t, 999, snap.Priority)
	assert.Equal(t, StatusOK, snap.Status)
}

func TestEvaluateResponseKind(t *testing.T) {
	e := fixedEngine(at(12, 13, 0))
	e.Policies = PolicyTable{
		1: {Priority: 1, ResponseHours: 2, ResolutionHours: 8},
	}
	in := mondayTicket(1)
	in.Kind = KindResponse

	snap := e.Evaluate(in)

	assert.Equal(t, KindResponse, snap.Kind)
	assert.Equal(t, 2.0, snap.BudgetHours)
	assert.Equal(t, StatusVencido, snap.Status)
}

func TestEvaluateDefaultsKindToResolution(t *testing.T) {
	in := mondayTicket(1)
	in.Kind = ""

	snap := fixedEngine(at(12, 13, 0)).Evaluate(in)

	assert.Equal(t, KindResolution, snap.Kind)
}

func TestEvaluateMalformedTimeDegradesToMidnight(t *testing.T) {
	in := mondayTicket(1)
	in.OpenedAtTime = "garbage"

	snap := fixedEngine(at(12, 13, 0)).Evaluate(in)

	assert.True(t, at(12, 0, 0).Equal(snap.OpenedAt))
	// Clamped to the 08:00 opening.
	assert.Equal(t, 5.0, snap.ElapsedHours)
}

func TestEvaluateOutOfRangeTimeDoesNotPanic(t *testing.T) {
	in := mondayTicket(1)
	in.OpenedAtTime = "2599"

	require.NotPanics(t, func() {
		snap := fixedEngine(at(14, 13, 0)).Evaluate(in)
		assert.GreaterOrEqual(t, snap.ElapsedHours, 0.0)
	})
}

func TestEvaluateStatusBands(t *testing.T) {
	e := fixedEngine(time.Time{})
	e.Policies = PolicyTable{DefaultPriority: {Priority: DefaultPriority, ResponseHours: 8, ResolutionHours: 8}}

	tests := []struct {
		name   string
		now    time.Time
		status Status
		pct    float64
	}{
		{"74%", at(12, 14, 55), StatusOK, 74.0},
		{"75%", at(12, 15, 0), StatusAlerta, 75.0},
		{"90%", at(12, 16, 12), StatusCritico, 90.0},
		{"100%", at(12, 17, 0), StatusVencido, 100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			e.Now = func() time.Time { return now }

			snap := e.Evaluate(mondayTicket(1))

			assert.Equal(t, tt.pct, snap.PercentUsed)
			assert.Equal(t, tt.status, snap.Status)
		})
	}
}

func TestClassifyPercent(t *testing.T) {
	tests := []struct {
		percent float64
		want    Status
	}{
		{0, StatusOK},
		{74.9, StatusOK},
		{75.0, StatusAlerta},
		{89.9, StatusAlerta},
		{90.0, StatusCritico},
		{99.9, StatusCritico},
		{100.0, StatusVencido},
		{150, StatusVencido},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPercent(tt.percent), "percent %v", tt.percent)
	}
}

func TestPolicyTableLookup(t *testing.T) {
	table := FlatPolicies()
	assert.Equal(t, 8.0, table.Budget(3, KindResolution))
	assert.Equal(t, DefaultPriority, table.Lookup(42).Priority)

	empty := PolicyTable{}
	assert.Equal(t, fallbackPolicy, empty.Lookup(1))

	_, err := PoliciesByName("weekly")
	assert.Error(t, err)

	tiered, err := PoliciesByName(TableTiered)
	require.NoError(t, err)
	assert.Equal(t, 48.0, tiered.Budget(4, KindResponse))
	assert.NoError(t, tiered.Validate())

	bad := PolicyTable{1: {Priority: 1, ResponseHours: 0, ResolutionHours: 8}}
	assert.Error(t, bad.Validate())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindResponse, ParseKind("resposta"))
	assert.Equal(t, KindResponse, ParseKind("response"))
	assert.Equal(t, KindResolution, ParseKind("resolucao"))
	assert.Equal(t, KindResolution, ParseKind(""))
}
