package domain

import (
	"strings"
	"time"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// Common ticket statuses as stored in chamados.status. The column is free text,
// so other values are accepted as-is.
const (
	TicketStatusOpen       = "Aberto"
	TicketStatusInProgress = "Em Atendimento"
	TicketStatusFinalized  = "Finalizado"
)

// Ticket is a support request ("chamado").
type Ticket struct {
	ID           int64
	Title        string
	Client       string
	OpenedOn     time.Time
	OpenedAtTime string
	Priority     int
	Status       string
	AttendedAt   *time.Time
	ConcludedAt  *time.Time
	CreatedAt    time.Time
}

// IsFinalized reports whether the status marks the ticket as closed.
func IsFinalized(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), TicketStatusFinalized)
}

// Finalized is shorthand for IsFinalized(t.Status).
func (t Ticket) Finalized() bool {
	return IsFinalized(t.Status)
}

// ReferenceFor returns the instant that freezes the clock for kind: attendance start
// for response, conclusion for resolution.
func (t Ticket) ReferenceFor(kind sla.Kind) *time.Time {
	if kind == sla.KindResponse {
		return t.AttendedAt
	}
	return t.ConcludedAt
}

// SLAInput converts the ticket into evaluator input for kind.
func (t Ticket) SLAInput(kind sla.Kind) sla.TicketInput {
	return sla.TicketInput{
		OpenedOn:     t.OpenedOn,
		OpenedAtTime: t.OpenedAtTime,
		Priority:     t.Priority,
		Status:       t.Status,
		ReferenceAt:  t.ReferenceFor(kind),
		Kind:         kind,
	}
}
