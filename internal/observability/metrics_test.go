package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

func TestRecordRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/chamados", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/api/chamados", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/chamados/:id", "GET", "NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/chamados", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/chamados/:id", "GET", "NOT_FOUND")))
}

func TestRecordSLA(t *testing.T) {
	m := NewMetrics()
	agg := sla.AggregateMetrics{
		ComplianceRate: 75,
		ByStatus: map[sla.Status]int{
			sla.StatusOK:      2,
			sla.StatusVencido: 1,
		},
	}
	at := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

	m.RecordSLA(agg, at)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticketsByStatus.WithLabelValues("OK")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ticketsByStatus.WithLabelValues("ALERTA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketsByStatus.WithLabelValues("VENCIDO")))
	assert.Equal(t, 75.0, testutil.ToFloat64(m.compliance))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.lastEvaluation))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordSLA(sla.AggregateMetrics{}, time.Now())
	})
}
