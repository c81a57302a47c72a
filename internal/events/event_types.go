package events

import (
	"time"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSLAStatusChanged EventType = "sla_status_changed"
	EventSLABreached      EventType = "sla_breached"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// SLAStatusChangedPayload payload.
type SLAStatusChangedPayload struct {
	OldStatus   sla.Status `json:"old_status"`
	NewStatus   sla.Status `json:"new_status"`
	PercentUsed float64    `json:"percent_used"`
	Priority    int        `json:"priority"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	Priority     int     `json:"priority"`
	BudgetHours  float64 `json:"budget_hours"`
	ElapsedHours float64 `json:"elapsed_hours"`
}
