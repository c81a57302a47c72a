package sla

// PriorityBreakdown tallies compliance for one priority.
type PriorityBreakdown struct {
	Total     int
	WithinSLA int
	Percent   float64
}

// AggregateMetrics summarizes resolution SLA compliance over a set of tickets.
type AggregateMetrics struct {
	TotalTickets           int
	WithinSLA              int
	OutsideSLA             int
	ComplianceRate         float64
	AverageResolutionHours float64
	ByPriority             map[int]PriorityBreakdown
	ByStatus               map[Status]int
}

// Reduce evaluates every ticket against its resolution budget and folds the results.
func (e *Engine) Reduce(inputs []TicketInput) AggregateMetrics {
	snapshots := make([]Snapshot, 0, len(inputs))
	for _, in := range inputs {
		in.Kind = KindResolution
		snapshots = append(snapshots, e.Evaluate(in))
	}
	return ReduceSnapshots(snapshots)
}

// ReduceSnapshots folds already evaluated snapshots. Every division is guarded.
func ReduceSnapshots(snapshots []Snapshot) AggregateMetrics {
	m := AggregateMetrics{
		ByPriority: make(map[int]PriorityBreakdown),
		ByStatus:   make(map[Status]int, len(Statuses)),
	}
	for _, s := range Statuses {
		m.ByStatus[s] = 0
	}

	var elapsedSum float64
	for _, snap := range snapshots {
		m.TotalTickets++
		elapsedSum += snap.ElapsedHours
		m.ByStatus[snap.Status]++

		group := m.ByPriority[snap.Priority]
		group.Total++
		if snap.WithinBudget {
			m.WithinSLA++
			group.WithinSLA++
		} else {
			m.OutsideSLA++
		}
		m.ByPriority[snap.Priority] = group
	}

	for priority, group := range m.ByPriority {
		group.Percent = percentOf(group.WithinSLA, group.Total)
		m.ByPriority[priority] = group
	}

	m.ComplianceRate = percentOf(m.WithinSLA, m.TotalTickets)
	if m.TotalTickets > 0 {
		m.AverageResolutionHours = round(elapsedSum/float64(m.TotalTickets), 4)
	}
	return m
}

func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(100*float64(part)/float64(total), 1)
}
