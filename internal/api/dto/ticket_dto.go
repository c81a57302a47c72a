package dto

import "time"

// SLASnapshot is the SLA state of one ticket as rendered by the UI.
type SLASnapshot struct {
	PercentUsed    float64   `json:"percentualUsado"`
	ElapsedHours   float64   `json:"tempoDecorrido"`
	RemainingHours float64   `json:"tempoRestante"`
	BudgetHours    float64   `json:"prazoTotal"`
	Status         string    `json:"status"`
	WithinBudget   bool      `json:"dentroPrazo"`
	Kind           string    `json:"tipo"`
	Frozen         bool      `json:"congelado"`
	Priority       int       `json:"prioridade"`
	OpenedAt       time.Time `json:"abertura"`
	ReferenceAt    time.Time `json:"referencia"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           int64       `json:"id"`
	Title        string      `json:"titulo"`
	Client       string      `json:"cliente"`
	OpenedOn     string      `json:"dataAbertura"`
	OpenedAtTime string      `json:"horaAbertura"`
	Priority     int         `json:"prioridade"`
	Status       string      `json:"status"`
	Finalized    bool        `json:"finalizado"`
	AttendedAt   *time.Time  `json:"dataAtendimento"`
	ConcludedAt  *time.Time  `json:"dataConclusao"`
	SLA          SLASnapshot `json:"sla"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID            int64                  `json:"id"`
	Title         string                 `json:"titulo"`
	Client        string                 `json:"cliente"`
	OpenedOn      string                 `json:"dataAbertura"`
	OpenedAtTime  string                 `json:"horaAbertura"`
	Priority      int                    `json:"prioridade"`
	Status        string                 `json:"status"`
	Finalized     bool                   `json:"finalizado"`
	AttendedAt    *time.Time             `json:"dataAtendimento"`
	ConcludedAt   *time.Time             `json:"dataConclusao"`
	ResponseSLA   SLASnapshot            `json:"slaResposta"`
	ResolutionSLA SLASnapshot            `json:"slaResolucao"`
	ServiceOrders []ServiceOrderResponse `json:"ordensServico"`
}

// ServiceOrderResponse describes one service order.
type ServiceOrderResponse struct {
	ID          int64  `json:"id"`
	Technician  string `json:"tecnico"`
	Date        string `json:"data"`
	StartTime   string `json:"horaInicio"`
	EndTime     string `json:"horaFim"`
	Description string `json:"descricao"`
}

// TicketSLAResponse is the payload of the single-ticket SLA endpoint and stream.
type TicketSLAResponse struct {
	TicketID  int64       `json:"chamadoId"`
	Finalized bool        `json:"finalizado"`
	SLA       SLASnapshot `json:"sla"`
}
