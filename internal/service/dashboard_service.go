package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/cache"
	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/repository"
	"github.com/spec-kit/sla-dashboard/internal/sla"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/errorutil"
)

// DashboardService serves tickets together with their SLA state.
type DashboardService struct {
	tickets     repository.TicketRepository
	orders      repository.ServiceOrderRepository
	engine      *sla.Engine
	cache       *cache.MetricsCache
	policyTable string
	logger      *zap.Logger
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	TicketRepo       repository.TicketRepository
	ServiceOrderRepo repository.ServiceOrderRepository
	Engine           *sla.Engine
	MetricsCache     *cache.MetricsCache
	PolicyTable      string
	Logger           *zap.Logger
}

// TicketFilter describes dashboard listing filters.
type TicketFilter struct {
	Statuses   []string
	Priorities []int
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	OnlyOpen   bool
	Limit      int
	Offset     int
}

// TicketView pairs a ticket with one SLA snapshot.
type TicketView struct {
	Ticket domain.Ticket
	SLA    sla.Snapshot
}

// TicketDetail is a ticket with both SLA snapshots and its service orders.
type TicketDetail struct {
	Ticket        domain.Ticket
	Response      sla.Snapshot
	Resolution    sla.Snapshot
	ServiceOrders []domain.ServiceOrder
}

// Settings describes the SLA configuration in effect.
type Settings struct {
	StartHour    int
	EndHour      int
	BusinessDays []time.Weekday
	Timezone     string
	ActiveTable  string
	Policies     []sla.Policy
	Tables       map[string][]sla.Policy
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	table := deps.PolicyTable
	if table == "" {
		table = sla.TableTiered
	}
	return &DashboardService{
		tickets:     deps.TicketRepo,
		orders:      deps.ServiceOrderRepo,
		engine:      deps.Engine,
		cache:       deps.MetricsCache,
		policyTable: table,
		logger:      logger,
	}
}

// Engine exposes the SLA engine for live refreshers.
func (s *DashboardService) Engine() *sla.Engine {
	return s.engine
}

// ListTickets returns tickets matching filter, each evaluated for kind.
func (s *DashboardService) ListTickets(ctx context.Context, filter TicketFilter, kind sla.Kind) ([]TicketView, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, toRepoFilter(filter, false))
	if err != nil {
		return nil, mapRepoError(err, "chamado")
	}
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, TicketView{Ticket: t, SLA: s.engine.Evaluate(t.SLAInput(kind))})
	}
	return views, nil
}

// GetTicket loads a ticket with its service orders and both SLA snapshots.
func (s *DashboardService) GetTicket(ctx context.Context, id int64) (*TicketDetail, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByTicket(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "ordem de servico")
	}
	return &TicketDetail{
		Ticket:        *ticket,
		Response:      s.engine.Evaluate(ticket.SLAInput(sla.KindResponse)),
		Resolution:    s.engine.Evaluate(ticket.SLAInput(sla.KindResolution)),
		ServiceOrders: orders,
	}, nil
}

// TicketSLA evaluates a single ticket for kind.
func (s *DashboardService) TicketSLA(ctx context.Context, id int64, kind sla.Kind) (*domain.Ticket, sla.Snapshot, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, sla.Snapshot{}, err
	}
	return ticket, s.engine.Evaluate(ticket.SLAInput(kind)), nil
}

// Metrics reduces every ticket matching filter against its resolution budget.
// Results are cached per filter; cache failures only degrade to a recomputation.
func (s *DashboardService) Metrics(ctx context.Context, filter TicketFilter) (sla.AggregateMetrics, error) {
	key := cache.MetricsKey(s.policyTable, filter.Statuses, filter.Priorities, filter.OpenedFrom, filter.OpenedTo)
	if filter.OnlyOpen {
		key += ":abertos"
	}

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("metrics cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	tickets, err := s.tickets.ListWithFilter(ctx, toRepoFilter(filter, true))
	if err != nil {
		return sla.AggregateMetrics{}, mapRepoError(err, "chamado")
	}
	inputs := make([]sla.TicketInput, 0, len(tickets))
	for _, t := range tickets {
		inputs = append(inputs, t.SLAInput(sla.KindResolution))
	}
	metrics := s.engine.Reduce(inputs)

	if err := s.cache.Set(ctx, key, metrics); err != nil {
		s.logger.Warn("metrics cache write failed", zap.Error(err))
	}
	return metrics, nil
}

// OpenTickets returns every ticket without a conclusion instant.
func (s *DashboardService) OpenTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{OnlyOpen: true, Unbounded: true})
	if err != nil {
		return nil, mapRepoError(err, "chamado")
	}
	return tickets, nil
}

// SLASettings reports the calendar and policy tables in effect.
func (s *DashboardService) SLASettings() Settings {
	cal := s.engine.Calendar
	days := make([]time.Weekday, 0, len(cal.BusinessDays))
	for d, ok := range cal.BusinessDays {
		if ok {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	tz := "UTC"
	if cal.Location != nil {
		tz = cal.Location.String()
	}

	return Settings{
		StartHour:    cal.StartHour,
		EndHour:      cal.EndHour,
		BusinessDays: days,
		Timezone:     tz,
		ActiveTable:  s.policyTable,
		Policies:     sortedPolicies(s.engine.Policies),
		Tables: map[string][]sla.Policy{
			sla.TableTiered: sortedPolicies(sla.TieredPolicies()),
			sla.TableFlat:   sortedPolicies(sla.FlatPolicies()),
		},
	}
}

func (s *DashboardService) getTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": id})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "chamado")
	}
	return ticket, nil
}

func toRepoFilter(f TicketFilter, unbounded bool) repository.TicketFilter {
	return repository.TicketFilter{
		Statuses:   f.Statuses,
		Priorities: f.Priorities,
		OpenedFrom: f.OpenedFrom,
		OpenedTo:   f.OpenedTo,
		OnlyOpen:   f.OnlyOpen,
		Limit:      f.Limit,
		Offset:     f.Offset,
		Unbounded:  unbounded,
	}
}

func sortedPolicies(table sla.PolicyTable) []sla.Policy {
	out := make([]sla.Policy, 0, len(table))
	for _, p := range table {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func mapRepoError(err error, resource string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrNotConfigured):
		return apperrors.NewServiceUnavailable("database unavailable", err)
	default:
		return err
	}
}
