package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/observability"
	"github.com/spec-kit/sla-dashboard/internal/persistence"
	"github.com/spec-kit/sla-dashboard/internal/repository"
	"github.com/spec-kit/sla-dashboard/internal/service"
)

type reportOptions struct {
	from       string
	to         string
	onlyOpen   bool
	priorities []int
	statuses   []string
	timeout    time.Duration
}

func newReportCmd() *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print aggregate SLA compliance for tickets stored in Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.from, "de", "", "first opening date, YYYY-MM-DD")
	flags.StringVar(&opts.to, "ate", "", "last opening date, YYYY-MM-DD")
	flags.BoolVar(&opts.onlyOpen, "abertos", false, "only tickets without a conclusion")
	flags.IntSliceVar(&opts.priorities, "prioridade", nil, "priorities to include")
	flags.StringSliceVar(&opts.statuses, "status", nil, "statuses to include")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "database timeout")
	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for report")
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	engine, err := engineFromConfig(cfg.SLA)
	if err != nil {
		return err
	}
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo:       repository.NewTicketRepository(pg.PoolHandle()),
		ServiceOrderRepo: repository.NewServiceOrderRepository(pg.PoolHandle()),
		Engine:           engine,
		PolicyTable:      cfg.SLA.PolicyTable,
		Logger:           logger,
	})

	metrics, err := dashboard.Metrics(ctx, filter)
	if err != nil {
		return err
	}
	logger.Debug("report computed", zap.Int("tickets", metrics.TotalTickets))
	return printJSON(cmd, metrics)
}

func (o reportOptions) filter() (service.TicketFilter, error) {
	filter := service.TicketFilter{
		Statuses:   o.statuses,
		Priorities: o.priorities,
		OnlyOpen:   o.onlyOpen,
	}
	for _, d := range []struct {
		raw  string
		dest **time.Time
	}{{o.from, &filter.OpenedFrom}, {o.to, &filter.OpenedTo}} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, d.raw)
		if err != nil {
			return filter, err
		}
		*d.dest = &t
	}
	return filter, nil
}
