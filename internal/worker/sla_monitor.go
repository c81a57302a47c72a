package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/events"
	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// TicketSource lists the tickets the monitor watches.
type TicketSource interface {
	OpenTickets(ctx context.Context) ([]domain.Ticket, error)
}

// SLARecorder receives the aggregate of every evaluation round.
type SLARecorder interface {
	RecordSLA(agg sla.AggregateMetrics, at time.Time)
}

// SLAMonitor periodically re-evaluates open tickets against their resolution budget
// and publishes an event whenever a ticket changes status band.
type SLAMonitor struct {
	source     TicketSource
	engine     *sla.Engine
	recorder   SLARecorder
	dispatcher events.Dispatcher
	interval   time.Duration
	logger     *zap.Logger

	mu   sync.Mutex
	last map[int64]sla.Status
}

// NewSLAMonitor creates a monitor. recorder and dispatcher may be nil.
func NewSLAMonitor(source TicketSource, engine *sla.Engine, recorder SLARecorder, dispatcher events.Dispatcher, interval time.Duration, logger *zap.Logger) *SLAMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAMonitor{
		source:     source,
		engine:     engine,
		recorder:   recorder,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger,
		last:       make(map[int64]sla.Status),
	}
}

// Start runs an evaluation immediately and then on every tick until ctx is done.
func (m *SLAMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("sla monitor started", zap.Duration("interval", m.interval))
	m.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sla monitor stopped")
			return
		case <-ticker.C:
			m.runLogged(ctx)
		}
	}
}

func (m *SLAMonitor) runLogged(ctx context.Context) {
	if _, err := m.RunOnce(ctx); err != nil {
		m.logger.Error("sla evaluation failed", zap.Error(err))
	}
}

// RunOnce evaluates every open ticket once and returns the aggregate.
func (m *SLAMonitor) RunOnce(ctx context.Context) (sla.AggregateMetrics, error) {
	tickets, err := m.source.OpenTickets(ctx)
	if err != nil {
		return sla.AggregateMetrics{}, err
	}

	snapshots := make([]sla.Snapshot, 0, len(tickets))
	seen := make(map[int64]struct{}, len(tickets))
	var pending []events.Event

	m.mu.Lock()
	for _, t := range tickets {
		snap := m.engine.Evaluate(t.SLAInput(sla.KindResolution))
		snapshots = append(snapshots, snap)
		seen[t.ID] = struct{}{}

		prev, known := m.last[t.ID]
		m.last[t.ID] = snap.Status
		pending = append(pending, transitionEvents(t.ID, prev, known, snap)...)
	}
	for id := range m.last {
		if _, ok := seen[id]; !ok {
			delete(m.last, id)
		}
	}
	m.mu.Unlock()

	agg := sla.ReduceSnapshots(snapshots)
	if m.recorder != nil {
		m.recorder.RecordSLA(agg, m.engine.CurrentTime())
	}

	if m.dispatcher != nil {
		for _, ev := range pending {
			if err := m.dispatcher.Publish(ctx, ev); err != nil {
				m.logger.Warn("sla event handler failed", zap.Int64("ticket_id", ev.TicketID), zap.Error(err))
			}
		}
	}

	m.logger.Debug("sla evaluation finished",
		zap.Int("tickets", agg.TotalTickets),
		zap.Float64("compliance", agg.ComplianceRate),
		zap.Int("events", len(pending)))
	return agg, nil
}

// transitionEvents emits a status change for every band transition after the first
// sighting, and a breach whenever a ticket enters VENCIDO, including on first sight.
func transitionEvents(ticketID int64, prev sla.Status, known bool, snap sla.Snapshot) []events.Event {
	var out []events.Event
	if known && prev != snap.Status {
		out = append(out, events.Event{
			Type:     events.EventSLAStatusChanged,
			TicketID: ticketID,
			Payload: events.SLAStatusChangedPayload{
				OldStatus:   prev,
				NewStatus:   snap.Status,
				PercentUsed: snap.PercentUsed,
				Priority:    snap.Priority,
			},
		})
	}
	if snap.Status == sla.StatusVencido && (!known || prev != sla.StatusVencido) {
		out = append(out, events.Event{
			Type:     events.EventSLABreached,
			TicketID: ticketID,
			Payload: events.SLABreachedPayload{
				Priority:     snap.Priority,
				BudgetHours:  snap.BudgetHours,
				ElapsedHours: snap.ElapsedHours,
			},
		})
	}
	return out
}
