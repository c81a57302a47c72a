package dto

// PriorityMetrics tallies compliance for one priority.
type PriorityMetrics struct {
	Priority  int     `json:"prioridade"`
	Total     int     `json:"total"`
	WithinSLA int     `json:"dentroSLA"`
	Percent   float64 `json:"percentual"`
}

// MetricsResponse is the dashboard SLA summary.
type MetricsResponse struct {
	TotalTickets           int               `json:"totalChamados"`
	WithinSLA              int               `json:"dentroSLA"`
	OutsideSLA             int               `json:"foraSLA"`
	ComplianceRate         float64           `json:"taxaCumprimento"`
	AverageResolutionHours float64           `json:"tempoMedioResolucao"`
	ByPriority             []PriorityMetrics `json:"porPrioridade"`
	ByStatus               map[string]int    `json:"porStatus"`
}

// PolicyResponse is one row of a policy table.
type PolicyResponse struct {
	Priority        int     `json:"prioridade"`
	ResponseHours   float64 `json:"prazoResposta"`
	ResolutionHours float64 `json:"prazoResolucao"`
}

// ThresholdsResponse lists the percent bands.
type ThresholdsResponse struct {
	Alerta  float64 `json:"alerta"`
	Critico float64 `json:"critico"`
	Vencido float64 `json:"vencido"`
}

// SettingsResponse describes the SLA configuration in effect.
type SettingsResponse struct {
	StartHour    int                         `json:"horaInicio"`
	EndHour      int                         `json:"horaFim"`
	BusinessDays []int                       `json:"diasUteis"`
	Timezone     string                      `json:"fusoHorario"`
	ActiveTable  string                      `json:"tabelaAtiva"`
	Policies     []PolicyResponse            `json:"politicas"`
	Tables       map[string][]PolicyResponse `json:"tabelas"`
	Thresholds   ThresholdsResponse          `json:"limites"`
}
