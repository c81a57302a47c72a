package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/sla"
)

type evalOptions struct {
	openedOn  string
	openedAt  string
	priority  int
	kind      string
	reference string
	now       string
}

func newEvalCmd() *cobra.Command {
	opts := evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a single ticket against the configured calendar and policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := engineFromConfig(cfg.SLA)
			if err != nil {
				return err
			}
			snap, err := runEval(engine, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, snap)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.openedOn, "data", "", "opening date, YYYY-MM-DD (required)")
	flags.StringVar(&opts.openedAt, "hora", "", "opening time as stored, e.g. 09:30 or 0930")
	flags.IntVar(&opts.priority, "prioridade", sla.DefaultPriority, "ticket priority")
	flags.StringVar(&opts.kind, "tipo", string(sla.KindResolution), "budget kind: resposta or resolucao")
	flags.StringVar(&opts.reference, "referencia", "", "attendance or conclusion instant, RFC3339; empty means open")
	flags.StringVar(&opts.now, "agora", "", "evaluate as of this RFC3339 instant instead of the wall clock")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func engineFromConfig(cfg config.SLAConfig) (*sla.Engine, error) {
	calendar, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	policies, err := cfg.Policies()
	if err != nil {
		return nil, err
	}
	return sla.NewEngine(calendar, policies), nil
}

func runEval(engine *sla.Engine, opts evalOptions) (sla.Snapshot, error) {
	loc := engine.Calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	openedOn, err := time.ParseInLocation(time.DateOnly, opts.openedOn, loc)
	if err != nil {
		return sla.Snapshot{}, fmt.Errorf("invalid --data: %w", err)
	}

	input := sla.TicketInput{
		OpenedOn:     openedOn,
		OpenedAtTime: opts.openedAt,
		Priority:     opts.priority,
		Kind:         sla.ParseKind(opts.kind),
	}
	if opts.reference != "" {
		ref, err := time.Parse(time.RFC3339, opts.reference)
		if err != nil {
			return sla.Snapshot{}, fmt.Errorf("invalid --referencia: %w", err)
		}
		input.ReferenceAt = &ref
	}
	if opts.now != "" {
		now, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return sla.Snapshot{}, fmt.Errorf("invalid --agora: %w", err)
		}
		fixed := *engine
		fixed.Now = func() time.Time { return now }
		engine = &fixed
	}
	return engine.Evaluate(input), nil
}
