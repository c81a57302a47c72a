package domain

import "time"

// ServiceOrder ("OS") is a logged unit of work against a ticket.
type ServiceOrder struct {
	ID          int64
	TicketID    int64
	Technician  string
	Date        time.Time
	StartTime   string
	EndTime     string
	Description string
}
