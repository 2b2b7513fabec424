package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jihwankim/mqtt-sim/pkg/expand"
	"github.com/jihwankim/mqtt-sim/pkg/payload"
	"github.com/jihwankim/mqtt-sim/pkg/publisher"
	"github.com/jihwankim/mqtt-sim/pkg/reporter"
)

// publishTimeout bounds how long a single publish waits for broker
// acknowledgment before it is treated as a TransportError.
const publishTimeout = 10 * time.Second

// worker drives one resolved stream's publish cadence on its own
// goroutine. Its builder and state are exclusively owned by this
// goroutine; only state() and publishCount() are safe to call from the
// reporter's goroutine, and they go through mu.
type worker struct {
	stream  expand.ResolvedStream
	sched   *Scheduler
	builder payload.Builder

	mu sync.Mutex
	st StreamRuntimeState
}

func newWorker(stream expand.ResolvedStream, s *Scheduler) (*worker, error) {
	builder, err := payload.New(stream.Payload, s.configDir, s.rngSrc)
	if err != nil {
		return nil, err
	}
	return &worker{
		stream:  stream,
		sched:   s,
		builder: builder,
		st:      StreamRuntimeState{State: StatePending},
	}, nil
}

func (w *worker) state() StreamRuntimeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st.Snapshot()
}

func (w *worker) publishCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st.PublishCount
}

// run drives the stream until cancellation: the first publish happens at
// t0, then one publish every interval, with a deadline that advances by a
// fixed amount each tick rather than re-measuring from "now" so ticks do
// not drift under repeated scheduling jitter. It returns a non-nil error
// only when this stream's failure triggered fail_fast escalation.
func (w *worker) run() error {
	pub, err := w.sched.pubs.Get(w.stream.Broker)
	if err != nil {
		w.setErrored(err)
		return nil
	}

	workerCtx, cancelWorkerCtx := context.WithCancel(context.Background())
	defer cancelWorkerCtx()
	go func() {
		select {
		case <-w.sched.cancel.Done():
			cancelWorkerCtx()
		case <-workerCtx.Done():
		}
	}()

	interval := time.Duration(w.stream.Interval * float64(time.Second))
	deadline := time.Now()
	w.setState(StateRunning)

	for {
		select {
		case <-w.sched.cancel.Done():
			w.setState(StateStopped)
			return nil
		default:
		}

		if wait := time.Until(deadline); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-w.sched.cancel.Done():
				timer.Stop()
				w.setState(StateStopped)
				return nil
			}
		}

		failFast, pubErr := w.publishOnce(workerCtx, pub)
		if failFast {
			w.setState(StateStopped)
			return pubErr
		}

		deadline = deadline.Add(interval)
	}
}

func (w *worker) publishOnce(ctx context.Context, pub *publisher.Publisher) (bool, error) {
	data, prev, err := w.builder.Build()
	if err == nil {
		pctx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = pub.Publish(pctx, w.stream.Topic, byte(w.stream.QoS), w.stream.Retain, data)
		cancel()
	}

	if err != nil {
		w.recordError(err)
		w.bumpMetrics(false, 0)
		w.emit(prev, len(data), err)
		if w.sched.opts.Policy == FailFast {
			w.sched.cancel.Trigger("fail_fast: " + err.Error())
			return true, err
		}
		return false, nil
	}

	w.recordSuccess(prev)
	w.bumpMetrics(true, len(data))
	w.emit(prev, len(data), nil)
	return false, nil
}

// bumpMetrics records the publish/error counters for this stream, if a
// metrics registry was configured for the run.
func (w *worker) bumpMetrics(ok bool, n int) {
	m := w.sched.metrics
	if m == nil {
		return
	}
	if ok {
		m.PublishTotal.WithLabelValues(w.stream.ID).Inc()
		m.BytesPublished.WithLabelValues(w.stream.ID).Add(float64(n))
		return
	}
	m.ErrorTotal.WithLabelValues(w.stream.ID).Inc()
}

// emit pushes the stream's current snapshot to the reporter, which owns
// all writes to stdout.
func (w *worker) emit(preview string, n int, err error) {
	if w.sched.reporter == nil {
		return
	}
	st := w.state()
	w.sched.reporter.Event(reporter.Snapshot{
		ID:             w.stream.ID,
		Broker:         w.stream.Broker,
		Topic:          w.stream.Topic,
		State:          st.State.String(),
		Interval:       w.stream.Interval,
		PublishCount:   st.PublishCount,
		LastPublished:  st.LastPublished,
		Preview:        preview,
		Bytes:          n,
		Err:            err,
		CumulativeErrs: st.CumulativeErrs,
	})
}

func (w *worker) setState(s StreamState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.State = s
}

func (w *worker) setErrored(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.State = StateErrored
	w.st.LastError = err
	w.st.CumulativeErrs++
}

func (w *worker) recordError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.st.State = StateErrored
	w.st.LastError = err
	w.st.CumulativeErrs++
}

func (w *worker) recordSuccess(preview string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.State == StateErrored && w.sched.opts.Policy == KeepGoing {
		// keep_going streams move back to Running once a publish succeeds;
		// last_error and the cumulative count are left untouched as history.
		w.st.State = StateRunning
	}
	w.st.PublishCount++
	w.st.LastPublished = time.Now()
	w.st.LastPreview = preview
}
