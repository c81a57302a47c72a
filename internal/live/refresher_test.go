package live

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

type fakeClock struct {
	v atomic.Value
}

func newFakeClock(t time.Time) *fakeClock {
	c := &fakeClock{}
	c.v.Store(t)
	return c
}

func (c *fakeClock) Now() time.Time  { return c.v.Load().(time.Time) }
func (c *fakeClock) Set(t time.Time) { c.v.Store(t) }

type updateRecorder struct {
	mu    sync.Mutex
	snaps []sla.Snapshot
}

func (r *updateRecorder) record(s sla.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *updateRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func newEngine(clock *fakeClock) *sla.Engine {
	engine := sla.NewEngine(sla.DefaultCalendar(time.UTC), sla.TieredPolicies())
	engine.Now = clock.Now
	return engine
}

func openTicket() sla.TicketInput {
	return sla.TicketInput{
		OpenedOn:     time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC),
		OpenedAtTime: "0900",
		Priority:     1,
		Kind:         sla.KindResolution,
	}
}

// Monday 2026-10-12
func monday(hour, min int) time.Time {
	return time.Date(2026, time.October, 12, hour, min, 0, 0, time.UTC)
}

func TestRefresherFreezesWithReference(t *testing.T) {
	clock := newFakeClock(monday(13, 0))
	rec := &updateRecorder{}
	ref := monday(11, 0)
	in := openTicket()
	in.ReferenceAt = &ref

	r := NewRefresher(newEngine(clock), in, Options{TickInterval: time.Millisecond, OnUpdate: rec.record})
	r.Start(context.Background())
	defer r.Stop()

	assert.Equal(t, StateFrozen, r.State())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.count())

	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.Frozen)
	assert.Equal(t, 2.0, snap.ElapsedHours)
}

func TestRefresherTicksDuringBusinessHours(t *testing.T) {
	clock := newFakeClock(monday(10, 0))
	rec := &updateRecorder{}

	r := NewRefresher(newEngine(clock), openTicket(), Options{
		TickInterval:  2 * time.Millisecond,
		WatchInterval: time.Hour,
		OnUpdate:      rec.record,
	})
	r.Start(context.Background())

	assert.Equal(t, StateScheduled, r.State())
	assert.Equal(t, CadenceFast, r.Cadence())

	clock.Set(monday(12, 0))
	assert.Eventually(t, func() bool {
		snap, ok := r.Snapshot()
		return ok && rec.count() >= 3 && snap.ElapsedHours == 3.0
	}, time.Second, time.Millisecond)

	r.Stop()
	assert.Equal(t, StateIdle, r.State())

	stopped := rec.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, rec.count())
}

func TestRefresherWatchesOutsideBusinessHours(t *testing.T) {
	clock := newFakeClock(monday(20, 0))
	rec := &updateRecorder{}

	r := NewRefresher(newEngine(clock), openTicket(), Options{
		TickInterval:  time.Hour,
		WatchInterval: 2 * time.Millisecond,
		OnUpdate:      rec.record,
	})
	r.Start(context.Background())
	defer r.Stop()

	assert.Equal(t, StateScheduled, r.State())
	assert.Equal(t, CadenceWatch, r.Cadence())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.count(), "watch ticks must not re-evaluate")

	clock.Set(time.Date(2026, time.October, 13, 9, 0, 0, 0, time.UTC))
	assert.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, CadenceFast, r.Cadence())
}

func TestRefresherDropsToWatchWhenHoursEnd(t *testing.T) {
	clock := newFakeClock(monday(17, 58))
	rec := &updateRecorder{}

	r := NewRefresher(newEngine(clock), openTicket(), Options{
		TickInterval:  2 * time.Millisecond,
		WatchInterval: time.Hour,
		OnUpdate:      rec.record,
	})
	r.Start(context.Background())
	defer r.Stop()

	clock.Set(monday(18, 30))
	assert.Eventually(t, func() bool { return r.Cadence() == CadenceWatch }, time.Second, time.Millisecond)
}

func TestRefresherEvaluatesTheTickThatCrossesClosing(t *testing.T) {
	clock := newFakeClock(time.Date(2026, time.October, 12, 16, 59, 30, 0, time.UTC))
	rec := &updateRecorder{}

	r := NewRefresher(newEngine(clock), openTicket(), Options{
		TickInterval:  2 * time.Millisecond,
		WatchInterval: time.Hour,
		OnUpdate:      rec.record,
	})
	r.Start(context.Background())
	defer r.Stop()

	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, sla.StatusCritico, snap.Status)
	assert.Equal(t, 99.9, snap.PercentUsed)

	clock.Set(time.Date(2026, time.October, 12, 18, 0, 30, 0, time.UTC))
	assert.Eventually(t, func() bool {
		snap, _ := r.Snapshot()
		return r.Cadence() == CadenceWatch && snap.Status == sla.StatusVencido
	}, time.Second, time.Millisecond)

	snap, _ = r.Snapshot()
	assert.Equal(t, 8.0, snap.ElapsedHours)
	assert.Equal(t, 100.0, snap.PercentUsed)
	assert.False(t, snap.WithinBudget)
}

func TestRefresherStopsWithParentContext(t *testing.T) {
	clock := newFakeClock(monday(10, 0))
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRefresher(newEngine(clock), openTicket(), Options{TickInterval: time.Millisecond})
	r.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after context cancel")
	}
}

func TestRefresherStopIsIdempotent(t *testing.T) {
	clock := newFakeClock(monday(10, 0))
	r := NewRefresher(newEngine(clock), openTicket(), Options{})

	r.Stop()
	r.Start(context.Background())
	r.Start(context.Background())
	r.Stop()
	r.Stop()

	assert.Equal(t, StateIdle, r.State())
}

func TestNewRefresherDefaults(t *testing.T) {
	r := NewRefresher(newEngine(newFakeClock(monday(10, 0))), openTicket(), Options{})

	assert.Equal(t, DefaultTickInterval, r.opts.TickInterval)
	assert.Equal(t, DefaultWatchInterval, r.opts.WatchInterval)
	assert.Equal(t, "idle", r.State().String())
}
