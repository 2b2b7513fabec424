package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jihwankim/mqtt-sim/pkg/config"
	"github.com/jihwankim/mqtt-sim/pkg/expand"
	"github.com/jihwankim/mqtt-sim/pkg/metrics"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/publisher"
	"github.com/jihwankim/mqtt-sim/pkg/reporter"
	"github.com/jihwankim/mqtt-sim/pkg/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the traffic generator against a config",
	RunE:  runEngine,
}

func init() {
	runCmd.Flags().String("output", "auto", "output mode (auto|table|log)")
	runCmd.Flags().Int64("seed", 0, "seed for the shared RNG (0 = time-derived)")
	runCmd.Flags().Float64("duration", 0, "stop after this many seconds (0 = run until interrupted)")
	runCmd.Flags().Bool("fail-fast", false, "stop the whole run on the first publish error")
	runCmd.Flags().Bool("keep-going", false, "keep ticking other streams after a publish error (default)")
}

func runEngine(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return withExitCode(2, fmt.Errorf("-c/--config is required"))
	}

	outputMode, _ := cmd.Flags().GetString("output")
	seed, _ := cmd.Flags().GetInt64("seed")
	durationSecs, _ := cmd.Flags().GetFloat64("duration")
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	keepGoing, _ := cmd.Flags().GetBool("keep-going")

	if failFast && keepGoing {
		return withExitCode(2, fmt.Errorf("--fail-fast and --keep-going are mutually exclusive"))
	}
	policy := scheduler.KeepGoing
	if failFast {
		policy = scheduler.FailFast
	}

	cfg, err := config.Load(engineConfigFile)
	if err != nil {
		return withExitCode(2, err)
	}
	if err := cfg.Validate(); err != nil {
		return withExitCode(2, err)
	}
	if err := initLogging(cfg.Logging, verbose); err != nil {
		return withExitCode(2, err)
	}

	p, err := plan.Load(cfgFile)
	if err != nil {
		return withExitCode(2, err)
	}
	if err := expand.Validate(p); err != nil {
		return withExitCode(2, err)
	}
	resolved, err := expand.ExpandAll(p)
	if err != nil {
		return withExitCode(2, err)
	}

	rep, err := reporter.New(reporter.Mode(outputMode), verbose)
	if err != nil {
		return withExitCode(2, err)
	}
	defer rep.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pubs, err := publisher.NewRegistry(ctx, p.Brokers)
	if err != nil {
		return withExitCode(1, err)
	}
	defer pubs.CloseAll()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.ActiveStreams.Set(float64(len(resolved)))
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.ListenAddr); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	opts := scheduler.Options{
		Policy:   policy,
		Duration: time.Duration(durationSecs * float64(time.Second)),
		Seed:     seed,
	}
	sched := scheduler.New(resolved, p.ConfigDir, pubs, rep, m, opts)

	log.Info().Int("streams", len(resolved)).Msg("mqtt-sim starting")
	total, runErr := sched.Run(ctx)
	log.Info().Int64("publishes", total).Msg("mqtt-sim stopped")

	if policy == scheduler.FailFast && runErr != nil {
		return withExitCode(1, runErr)
	}
	if policy == scheduler.KeepGoing && total == 0 {
		return withExitCode(1, fmt.Errorf("no successful publishes occurred"))
	}
	return nil
}
