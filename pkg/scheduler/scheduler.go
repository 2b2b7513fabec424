// Package scheduler drives one timed worker goroutine per resolved
// stream, coordinates a single shared cancellation primitive (user
// interrupt, --duration expiry, or fail_fast escalation), and enforces
// the keep_going/fail_fast failure policy.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jihwankim/mqtt-sim/pkg/expand"
	"github.com/jihwankim/mqtt-sim/pkg/metrics"
	"github.com/jihwankim/mqtt-sim/pkg/publisher"
	"github.com/jihwankim/mqtt-sim/pkg/reporter"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

// FailurePolicy selects how a stream's worker reacts to a publish/payload
// error.
type FailurePolicy int

const (
	KeepGoing FailurePolicy = iota
	FailFast
)

// shutdownBudget bounds how long Run waits for workers to drain after
// cancellation before forcing Publishers closed.
const shutdownBudget = 5 * time.Second

// Options configures a Scheduler run.
type Options struct {
	Policy   FailurePolicy
	Duration time.Duration // zero means run until cancelled
	Seed     int64
}

// Scheduler owns the set of workers for one run, the shared registry of
// Publishers, and the cancellation primitive they all observe.
type Scheduler struct {
	streams   []expand.ResolvedStream
	configDir string
	pubs      *publisher.Registry
	reporter  reporter.Reporter
	metrics   *metrics.Metrics
	opts      Options
	cancel    *Canceller
	rngSrc    *rng.Source

	mu      sync.Mutex
	workers []*worker
}

// New builds a Scheduler for the given resolved streams. configDir
// resolves relative file/pickle_file payload paths. m may be nil, in which
// case no Prometheus metrics are recorded.
func New(streams []expand.ResolvedStream, configDir string, pubs *publisher.Registry, rep reporter.Reporter, m *metrics.Metrics, opts Options) *Scheduler {
	return &Scheduler{
		streams:   streams,
		configDir: configDir,
		pubs:      pubs,
		reporter:  rep,
		metrics:   m,
		opts:      opts,
		cancel:    NewCanceller(),
		rngSrc:    rng.New(opts.Seed),
	}
}

// Run spawns one worker per resolved stream and blocks until every worker
// has drained: either ctx is cancelled, --duration expires, a fail_fast
// error fires global cancellation, or the caller cancels directly.
//
// It returns the number of successful publishes across all streams and
// the first fail_fast error encountered, if any.
func (s *Scheduler) Run(ctx context.Context) (int64, error) {
	if s.opts.Duration > 0 {
		timer := time.AfterFunc(s.opts.Duration, func() {
			s.cancel.Trigger("duration expired")
		})
		defer timer.Stop()
	}

	go func() {
		select {
		case <-ctx.Done():
			s.cancel.Trigger("context cancelled")
		case <-s.cancel.Done():
		}
	}()

	var wg sync.WaitGroup
	s.mu.Lock()
	s.workers = make([]*worker, len(s.streams))
	for i, stream := range s.streams {
		w, err := newWorker(stream, s)
		if err != nil {
			log.Error().Str("stream", stream.ID).Err(err).Msg("failed to build stream worker")
			s.cancel.Trigger("fatal stream setup error")
			s.mu.Unlock()
			return 0, err
		}
		s.workers[i] = w
	}
	s.mu.Unlock()

	var firstFailFastErr error
	var failMu sync.Mutex

	for _, w := range s.workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			if err := w.run(); err != nil {
				failMu.Lock()
				if firstFailFastErr == nil {
					firstFailFastErr = err
				}
				failMu.Unlock()
			}
		}(w)
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-s.cancel.Done():
		select {
		case <-drained:
		case <-time.After(shutdownBudget):
			// Workers did not drain in time; the caller closes Publishers
			// out from under them regardless.
		}
	}

	var total int64
	for _, w := range s.workers {
		total += w.publishCount()
	}
	return total, firstFailFastErr
}

// TriggerStop requests global cancellation, e.g. on SIGINT.
func (s *Scheduler) TriggerStop(reason string) {
	s.cancel.Trigger(reason)
}

// Snapshots returns the current runtime state of every worker, keyed by
// stream ID, for the reporter sinks.
func (s *Scheduler) Snapshots() map[string]StreamRuntimeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]StreamRuntimeState, len(s.workers))
	for _, w := range s.workers {
		out[w.stream.ID] = w.state()
	}
	return out
}
