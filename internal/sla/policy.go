package sla

import "fmt"

// DefaultPriority is the policy key used when a ticket's priority has no entry.
const DefaultPriority = 100

// Kind selects which budget of a policy applies.
type Kind string

const (
	KindResponse   Kind = "resposta"
	KindResolution Kind = "resolucao"
)

// ParseKind maps query values to a Kind, defaulting to resolution.
func ParseKind(raw string) Kind {
	switch raw {
	case string(KindResponse), "response":
		return KindResponse
	default:
		return KindResolution
	}
}

// Policy holds the response and resolution budgets, in hours, for one priority.
type Policy struct {
	Priority        int     `json:"prioridade"`
	ResponseHours   float64 `json:"prazoResposta"`
	ResolutionHours float64 `json:"prazoResolucao"`
}

// Budget returns the hours for the given kind.
func (p Policy) Budget(kind Kind) float64 {
	if kind == KindResponse {
		return p.ResponseHours
	}
	return p.ResolutionHours
}

// PolicyTable maps a priority to its policy.
type PolicyTable map[int]Policy

var fallbackPolicy = Policy{Priority: DefaultPriority, ResponseHours: 8, ResolutionHours: 8}

// Lookup resolves the policy for priority, falling back to DefaultPriority.
func (t PolicyTable) Lookup(priority int) Policy {
	if p, ok := t[priority]; ok {
		return p
	}
	if p, ok := t[DefaultPriority]; ok {
		return p
	}
	return fallbackPolicy
}

// Budget is shorthand for Lookup(priority).Budget(kind).
func (t PolicyTable) Budget(priority int, kind Kind) float64 {
	return t.Lookup(priority).Budget(kind)
}

// Validate rejects non-positive budgets.
func (t PolicyTable) Validate() error {
	for key, p := range t {
		if p.ResponseHours <= 0 || p.ResolutionHours <= 0 {
			return fmt.Errorf("priority %d: budgets must be positive", key)
		}
	}
	return nil
}

// Policy table names accepted by SLA_POLICY_TABLE.
const (
	TableTiered = "tiered"
	TableFlat   = "flat"
)

// TieredPolicies grows the budget with the priority number: 8/16/24/48 hours.
func TieredPolicies() PolicyTable {
	return PolicyTable{
		1:               {Priority: 1, ResponseHours: 8, ResolutionHours: 8},
		2:               {Priority: 2, ResponseHours: 16, ResolutionHours: 16},
		3:               {Priority: 3, ResponseHours: 24, ResolutionHours: 24},
		4:               {Priority: 4, ResponseHours: 48, ResolutionHours: 48},
		DefaultPriority: {Priority: DefaultPriority, ResponseHours: 48, ResolutionHours: 48},
	}
}

// FlatPolicies applies the same 8 hour budget to every priority.
func FlatPolicies() PolicyTable {
	table := PolicyTable{}
	for _, p := range []int{1, 2, 3, 4, DefaultPriority} {
		table[p] = Policy{Priority: p, ResponseHours: 8, ResolutionHours: 8}
	}
	return table
}

// PoliciesByName returns the named table.
func PoliciesByName(name string) (PolicyTable, error) {
	switch name {
	case TableTiered, "":
		return TieredPolicies(), nil
	case TableFlat:
		return FlatPolicies(), nil
	default:
		return nil, fmt.Errorf("unknown SLA policy table %q", name)
	}
}
