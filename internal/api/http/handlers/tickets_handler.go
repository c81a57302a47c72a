package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-dashboard/internal/api/dto"
	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/service"
	"github.com/spec-kit/sla-dashboard/internal/sla"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/errorutil"
)

// TicketsHandler serves the ticket list and detail pages.
type TicketsHandler struct {
	service *service.DashboardService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(dashboard *service.DashboardService) *TicketsHandler {
	return &TicketsHandler{service: dashboard}
}

// List GET /api/chamados.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListTickets(c.UserContext(), filter, sla.ParseKind(c.Query("tipo")))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(views))
	for i := range views {
		items = append(items, ticketSummary(&views[i].Ticket, views[i].SLA))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/chamados/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketFilter, error) {
	filter := service.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, part)
			}
		}
	}
	if priorityStr := c.Query("prioridade"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			p, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return filter, apperrors.NewValidationError("invalid prioridade", map[string]any{"prioridade": part})
			}
			filter.Priorities = append(filter.Priorities, p)
		}
	}
	filter.OpenedFrom = parseDate(c.Query("de"))
	filter.OpenedTo = parseDate(c.Query("ate"))
	filter.OnlyOpen = c.QueryBool("abertos", false)

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func snapshotResponse(s sla.Snapshot) dto.SLASnapshot {
	return dto.SLASnapshot{
		PercentUsed:    s.PercentUsed,
		ElapsedHours:   s.ElapsedHours,
		RemainingHours: s.RemainingHours,
		BudgetHours:    s.BudgetHours,
		Status:         string(s.Status),
		WithinBudget:   s.WithinBudget,
		Kind:           string(s.Kind),
		Frozen:         s.Frozen,
		Priority:       s.Priority,
		OpenedAt:       s.OpenedAt,
		ReferenceAt:    s.ReferenceAt,
	}
}

func ticketSummary(t *domain.Ticket, snap sla.Snapshot) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           t.ID,
		Title:        t.Title,
		Client:       t.Client,
		OpenedOn:     t.OpenedOn.Format(time.DateOnly),
		OpenedAtTime: t.OpenedAtTime,
		Priority:     t.Priority,
		Status:       t.Status,
		Finalized:    t.Finalized(),
		AttendedAt:   t.AttendedAt,
		ConcludedAt:  t.ConcludedAt,
		SLA:          snapshotResponse(snap),
	}
}

func ticketDetail(d *service.TicketDetail) dto.TicketDetailResponse {
	orders := make([]dto.ServiceOrderResponse, 0, len(d.ServiceOrders))
	for _, o := range d.ServiceOrders {
		orders = append(orders, dto.ServiceOrderResponse{
			ID:          o.ID,
			Technician:  o.Technician,
			Date:        o.Date.Format(time.DateOnly),
			StartTime:   o.StartTime,
			EndTime:     o.EndTime,
			Description: o.Description,
		})
	}
	t := d.Ticket
	return dto.TicketDetailResponse{
		ID:            t.ID,
		Title:         t.Title,
		Client:        t.Client,
		OpenedOn:      t.OpenedOn.Format(time.DateOnly),
		OpenedAtTime:  t.OpenedAtTime,
		Priority:      t.Priority,
		Status:        t.Status,
		Finalized:     t.Finalized(),
		AttendedAt:    t.AttendedAt,
		ConcludedAt:   t.ConcludedAt,
		ResponseSLA:   snapshotResponse(d.Response),
		ResolutionSLA: snapshotResponse(d.Resolution),
		ServiceOrders: orders,
	}
}
