package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/api/dto"
	"github.com/spec-kit/sla-dashboard/internal/live"
	"github.com/spec-kit/sla-dashboard/internal/service"
	"github.com/spec-kit/sla-dashboard/internal/sla"
)

const defaultHeartbeat = 25 * time.Second

// StreamOptions configures the live SLA stream.
type StreamOptions struct {
	TickInterval  time.Duration
	WatchInterval time.Duration
	Heartbeat     time.Duration
}

// SLAHandler serves SLA metrics, settings and per-ticket SLA state.
type SLAHandler struct {
	service *service.DashboardService
	stream  StreamOptions
	logger  *zap.Logger
}

// NewSLAHandler constructs handler.
func NewSLAHandler(dashboard *service.DashboardService, stream StreamOptions, logger *zap.Logger) *SLAHandler {
	if stream.Heartbeat <= 0 {
		stream.Heartbeat = defaultHeartbeat
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAHandler{service: dashboard, stream: stream, logger: logger}
}

// TicketSLA GET /api/chamados/:id/sla?tipo=resposta|resolucao.
func (h *SLAHandler) TicketSLA(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, snap, err := h.service.TicketSLA(c.UserContext(), id, sla.ParseKind(c.Query("tipo")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketSLAResponse{
		TicketID:  ticket.ID,
		Finalized: ticket.Finalized(),
		SLA:       snapshotResponse(snap),
	}})
}

// Stream GET /api/chamados/:id/sla/stream pushes a snapshot every time the live
// refresher produces one. Concluded tickets get a single event and the stream ends.
func (h *SLAHandler) Stream(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, _, err := h.service.TicketSLA(c.UserContext(), id, sla.KindResolution)
	if err != nil {
		return err
	}
	kind := sla.ParseKind(c.Query("tipo"))
	finalized := ticket.Finalized()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	updates := make(chan sla.Snapshot, 1)
	refresher := live.NewRefresher(h.service.Engine(), ticket.SLAInput(kind), live.Options{
		TickInterval:  h.stream.TickInterval,
		WatchInterval: h.stream.WatchInterval,
		Logger:        h.logger.With(zap.Int64("ticket_id", id)),
		OnUpdate:      func(s sla.Snapshot) { offerLatest(updates, s) },
	})
	heartbeat := h.stream.Heartbeat
	logger := h.logger

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		refresher.Start(ctx)
		defer refresher.Stop()

		beat := time.NewTicker(heartbeat)
		defer beat.Stop()

		for {
			select {
			case snap := <-updates:
				payload := dto.TicketSLAResponse{TicketID: id, Finalized: finalized, SLA: snapshotResponse(snap)}
				if err := writeEvent(w, "sla", payload); err != nil {
					logger.Debug("sla stream closed", zap.Int64("ticket_id", id), zap.Error(err))
					return
				}
				if refresher.State() == live.StateFrozen {
					return
				}
			case <-beat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					logger.Debug("sla stream closed", zap.Int64("ticket_id", id), zap.Error(err))
					return
				}
			}
		}
	}))
	return nil
}

// Metrics GET /api/sla/metricas.
func (h *SLAHandler) Metrics(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	metrics, err := h.service.Metrics(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metricsResponse(metrics)})
}

// Settings GET /api/sla/config.
func (h *SLAHandler) Settings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": settingsResponse(h.service.SLASettings())})
}

// offerLatest keeps only the newest snapshot when the consumer lags behind.
// It assumes a single producer.
func offerLatest(ch chan sla.Snapshot, s sla.Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}

func writeEvent(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

func metricsResponse(m sla.AggregateMetrics) dto.MetricsResponse {
	byPriority := make([]dto.PriorityMetrics, 0, len(m.ByPriority))
	for p, group := range m.ByPriority {
		byPriority = append(byPriority, dto.PriorityMetrics{
			Priority:  p,
			Total:     group.Total,
			WithinSLA: group.WithinSLA,
			Percent:   group.Percent,
		})
	}
	sort.Slice(byPriority, func(i, j int) bool { return byPriority[i].Priority < byPriority[j].Priority })

	byStatus := make(map[string]int, len(sla.Statuses))
	for _, s := range sla.Statuses {
		byStatus[string(s)] = m.ByStatus[s]
	}

	return dto.MetricsResponse{
		TotalTickets:           m.TotalTickets,
		WithinSLA:              m.WithinSLA,
		OutsideSLA:             m.OutsideSLA,
		ComplianceRate:         m.ComplianceRate,
		AverageResolutionHours: m.AverageResolutionHours,
		ByPriority:             byPriority,
		ByStatus:               byStatus,
	}
}

func policyResponses(policies []sla.Policy) []dto.PolicyResponse {
	out := make([]dto.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, dto.PolicyResponse{
			Priority:        p.Priority,
			ResponseHours:   p.ResponseHours,
			ResolutionHours: p.ResolutionHours,
		})
	}
	return out
}

func settingsResponse(s service.Settings) dto.SettingsResponse {
	days := make([]int, 0, len(s.BusinessDays))
	for _, d := range s.BusinessDays {
		days = append(days, int(d))
	}
	tables := make(map[string][]dto.PolicyResponse, len(s.Tables))
	for name, policies := range s.Tables {
		tables[name] = policyResponses(policies)
	}
	return dto.SettingsResponse{
		StartHour:    s.StartHour,
		EndHour:      s.EndHour,
		BusinessDays: days,
		Timezone:     s.Timezone,
		ActiveTable:  s.ActiveTable,
		Policies:     policyResponses(s.Policies),
		Tables:       tables,
		Thresholds: dto.ThresholdsResponse{
			Alerta:  sla.AlertaThreshold,
			Critico: sla.CriticoThreshold,
			Vencido: sla.VencidoThreshold,
		},
	}
}
