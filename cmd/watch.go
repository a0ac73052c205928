// Package cmd provides CLI commands for the tracka tool.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tracka-cli/config"
	"github.com/otherjamesbrown/tracka-cli/pkg/agenda"
	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
	"github.com/otherjamesbrown/tracka-cli/pkg/metrics"
)

// Watch command flags.
var (
	watchInterval    time.Duration
	watchMetricsAddr string
)

// newAgendaWatchCommand creates the 'agenda watch' subcommand.
func newAgendaWatchCommand(deps *AgendaCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [meeting]",
		Short: "Follow the agenda as it happens",
		Long: `Recompute and redisplay the current session on a fixed interval.

Each tick refreshes the agenda data (with retry), reapplies the filter
state and reports the session happening now. Ticks are idempotent: with
unchanged data and state the output is identical.

Examples:
  # Follow the configured meeting
  tracka agenda watch

  # Tighter interval, only two groups
  tracka agenda watch 120 --interval 30s --show httpbis,dnsop

  # Expose Prometheus metrics while watching
  tracka agenda watch 120 --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgendaWatch(cmd.Context(), deps, args)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringVar(&agendaTimezone, "tz", "", "Display timezone: IANA name, 'meeting', or 'local'")
	cmd.Flags().DurationVar(&watchInterval, "interval", 0, "Recompute interval (default from config, 1m)")
	cmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

// runAgendaWatch executes the agenda watch command.
func runAgendaWatch(ctx context.Context, deps *AgendaCommandDeps, args []string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	meeting, err := resolveMeeting(cfg, args)
	if err != nil {
		return err
	}

	interval := cfg.WatchInterval
	if watchInterval != 0 {
		interval = watchInterval
	}
	if interval <= 0 {
		interval = config.DefaultWatchInterval
	}

	log := commandLogger(deps.Log)
	store := deps.NewStore(cfg, log)
	p := store.Load(meeting)

	timezone := agendaTimezone
	if timezone == "" {
		timezone = cfg.Timezone
	}
	if timezone == "" {
		timezone = p.Timezone
	}

	reg := prometheus.NewRegistry()
	watchMetrics := metrics.NewWatchMetrics(reg)
	if watchMetricsAddr != "" {
		go func() {
			if err := metrics.Serve(watchMetricsAddr, reg); err != nil {
				log.Error("metrics endpoint stopped", logging.Err(err))
			}
		}()
		log.Info("metrics endpoint started", logging.F("addr", watchMetricsAddr))
	}

	fetcher := deps.NewFetcher(cfg, log)

	// The initial load is one-shot; a failure here ends the command with
	// the fallback link, same as show.
	data, err := timedFetch(ctx, fetcher, watchMetrics, meeting)
	if err != nil {
		return fmt.Errorf("%w\nThe text agenda may still be reachable: %s", err, fetcher.FallbackURL(meeting))
	}

	filter := filterFromFlags()
	opts := agenda.AssembleOptions{
		Filter:   filter,
		Timezone: timezone,
		Picked:   p.PickedSet(),
		Width:    terminalWidth(),
	}

	fmt.Printf("Watching IETF %s (every %s). Ctrl-C to stop.\n\n", meeting, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastLine string
	tick := func(now time.Time) {
		opts.Now = now
		start := time.Now()
		vm, err := agenda.Assemble(ctx, data, opts)
		if err != nil {
			log.Warn("timezone fallback", logging.Err(err))
		}
		watchMetrics.AssembleSeconds.WithLabelValues(meeting).Observe(time.Since(start).Seconds())
		watchMetrics.RecordTick(meeting, len(vm.Sessions), vm.Live)

		line := watchStatusLine(vm, now)
		if line != lastLine {
			fmt.Println(line)
			lastLine = line
		}
	}

	tick(time.Now())

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil
		case now := <-ticker.C:
			// Refresh agenda data; keep the last good copy on failure.
			refreshErr := fetcher.WithRetry(ctx, func() error {
				fresh, err := timedFetch(ctx, fetcher, watchMetrics, meeting)
				if err != nil {
					return err
				}
				data = fresh
				return nil
			})
			if refreshErr != nil {
				log.Warn("agenda refresh failed, using cached data", logging.Err(refreshErr))
			}

			tick(now)
		}
	}
}

// timedFetch runs one fetch attempt, recording its latency and outcome.
func timedFetch(ctx context.Context, fetcher Fetcher, m *metrics.WatchMetrics, meeting string) (*agenda.Data, error) {
	start := time.Now()
	data, err := fetcher.Fetch(ctx, meeting)
	m.FetchSeconds.WithLabelValues(meeting).Observe(time.Since(start).Seconds())
	m.FetchesTotal.WithLabelValues(meeting).Inc()
	if err != nil {
		m.FetchErrorsTotal.WithLabelValues(meeting).Inc()
		return nil, err
	}
	return data, nil
}

// watchStatusLine renders one status update.
func watchStatusLine(vm *agenda.ViewModel, now time.Time) string {
	stamp := now.Format("15:04:05")

	if !vm.Live {
		return fmt.Sprintf("[%s] meeting not in progress (%d sessions visible)", stamp, len(vm.Sessions))
	}

	if vm.CurrentID == 0 {
		return fmt.Sprintf("[%s] live, between sessions (%d visible)", stamp, len(vm.Sessions))
	}

	for _, s := range vm.Sessions {
		if s.ID == vm.CurrentID {
			return fmt.Sprintf("[%s] now: %s (%s) %s–%s in %s",
				stamp, s.Name, s.GroupAcronym,
				s.Start.Format("15:04"), s.End.Format("15:04"), s.Room)
		}
	}

	return fmt.Sprintf("[%s] live (%d sessions visible)", stamp, len(vm.Sessions))
}
