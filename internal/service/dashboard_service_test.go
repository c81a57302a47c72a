package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/repository"
	"github.com/spec-kit/sla-dashboard/internal/sla"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/errorutil"
)

type fakeTicketRepo struct {
	tickets    []domain.Ticket
	err        error
	lastFilter repository.TicketFilter
	listCalls  int
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			t := f.tickets[i]
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.listCalls++
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Ticket
	for _, t := range f.tickets {
		if filter.OnlyOpen && t.ConcludedAt != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders map[int64][]domain.ServiceOrder
}

func (f *fakeOrderRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.ServiceOrder, error) {
	return f.orders[ticketID], nil
}

var testNow = time.Date(2026, time.October, 12, 12, 0, 0, 0, time.UTC)

func testEngine() *sla.Engine {
	engine := sla.NewEngine(sla.DefaultCalendar(time.UTC), sla.TieredPolicies())
	engine.Now = func() time.Time { return testNow }
	return engine
}

func testTickets() []domain.Ticket {
	monday := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)
	attended := time.Date(2026, time.October, 12, 9, 30, 0, 0, time.UTC)
	concluded := time.Date(2026, time.October, 12, 10, 0, 0, 0, time.UTC)
	return []domain.Ticket{
		{ID: 1, Title: "Impressora", OpenedOn: monday, OpenedAtTime: "09:00", Priority: 1, Status: domain.TicketStatusOpen},
		{ID: 2, Title: "VPN", OpenedOn: monday, OpenedAtTime: "0900", Priority: 2, Status: domain.TicketStatusFinalized,
			AttendedAt: &attended, ConcludedAt: &concluded},
	}
}

func newTestDashboard(repo *fakeTicketRepo) *DashboardService {
	return NewDashboardService(DashboardDependencies{
		TicketRepo: repo,
		ServiceOrderRepo: &fakeOrderRepo{orders: map[int64][]domain.ServiceOrder{
			2: {{ID: 10, TicketID: 2, Technician: "Ana", StartTime: "09:30", EndTime: "10:00"}},
		}},
		Engine: testEngine(),
	})
}

func TestListTicketsEvaluatesRequestedKind(t *testing.T) {
	svc := newTestDashboard(&fakeTicketRepo{tickets: testTickets()})

	views, err := svc.ListTickets(context.Background(), TicketFilter{}, sla.KindResolution)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, 3.0, views[0].SLA.ElapsedHours)
	assert.Equal(t, 37.5, views[0].SLA.PercentUsed)
	assert.False(t, views[0].SLA.Frozen)

	assert.Equal(t, 1.0, views[1].SLA.ElapsedHours)
	assert.True(t, views[1].SLA.Frozen)
	assert.Equal(t, sla.KindResolution, views[1].SLA.Kind)
}

func TestGetTicketIncludesBothKinds(t *testing.T) {
	svc := newTestDashboard(&fakeTicketRepo{tickets: testTickets()})

	detail, err := svc.GetTicket(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 0.5, detail.Response.ElapsedHours)
	assert.Equal(t, sla.KindResponse, detail.Response.Kind)
	assert.Equal(t, 1.0, detail.Resolution.ElapsedHours)
	assert.Len(t, detail.ServiceOrders, 1)
}

func TestGetTicketErrors(t *testing.T) {
	ctx := context.Background()

	svc := newTestDashboard(&fakeTicketRepo{tickets: testTickets()})
	_, err := svc.GetTicket(ctx, 99)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	_, err = svc.GetTicket(ctx, 0)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	down := newTestDashboard(&fakeTicketRepo{err: repository.ErrNotConfigured})
	_, _, err = down.TicketSLA(ctx, 1, sla.KindResolution)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", apperrors.ToDomainError(err).Code)

	broken := newTestDashboard(&fakeTicketRepo{err: errors.New("boom")})
	_, err = broken.ListTickets(ctx, TicketFilter{}, sla.KindResolution)
	assert.Equal(t, "INTERNAL_ERROR", apperrors.ToDomainError(err).Code)
}

func TestMetricsReducesEveryMatchingTicket(t *testing.T) {
	repo := &fakeTicketRepo{tickets: testTickets()}
	svc := newTestDashboard(repo)

	metrics, err := svc.Metrics(context.Background(), TicketFilter{Limit: 1})
	require.NoError(t, err)

	assert.True(t, repo.lastFilter.Unbounded)
	assert.Equal(t, 2, metrics.TotalTickets)
	assert.Equal(t, 2, metrics.WithinSLA)
	assert.Equal(t, 100.0, metrics.ComplianceRate)
	assert.Equal(t, 2.0, metrics.AverageResolutionHours)
	assert.Equal(t, 2, metrics.ByStatus[sla.StatusOK])
}

func TestOpenTickets(t *testing.T) {
	repo := &fakeTicketRepo{tickets: testTickets()}
	svc := newTestDashboard(repo)

	open, err := svc.OpenTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, int64(1), open[0].ID)
	assert.True(t, repo.lastFilter.OnlyOpen)
}

func TestSLASettings(t *testing.T) {
	svc := newTestDashboard(&fakeTicketRepo{})

	settings := svc.SLASettings()
	assert.Equal(t, 8, settings.StartHour)
	assert.Equal(t, 18, settings.EndHour)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, settings.BusinessDays)
	assert.Equal(t, "UTC", settings.Timezone)
	assert.Equal(t, sla.TableTiered, settings.ActiveTable)
	require.Len(t, settings.Policies, 5)
	assert.Equal(t, 1, settings.Policies[0].Priority)
	assert.Equal(t, sla.DefaultPriority, settings.Policies[4].Priority)
	assert.Contains(t, settings.Tables, sla.TableFlat)
}
