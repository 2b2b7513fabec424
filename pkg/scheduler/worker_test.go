package scheduler

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jihwankim/mqtt-sim/pkg/expand"
	"github.com/jihwankim/mqtt-sim/pkg/metrics"
)

func newTestWorker(policy FailurePolicy) *worker {
	return &worker{
		stream: expand.ResolvedStream{ID: "0", Topic: "t/1"},
		sched:  &Scheduler{opts: Options{Policy: policy}},
		st:     StreamRuntimeState{State: StatePending},
	}
}

func TestWorkerRecordSuccessAdvancesCount(t *testing.T) {
	w := newTestWorker(KeepGoing)
	w.setState(StateRunning)
	w.recordSuccess("hello")
	if w.publishCount() != 1 {
		t.Fatalf("got count %d, want 1", w.publishCount())
	}
	st := w.state()
	if st.LastPreview != "hello" {
		t.Fatalf("got preview %q, want hello", st.LastPreview)
	}
	if st.State != StateRunning {
		t.Fatalf("got state %v, want Running", st.State)
	}
}

func TestWorkerRecordErrorThenKeepGoingRecovers(t *testing.T) {
	w := newTestWorker(KeepGoing)
	w.setState(StateRunning)
	w.recordError(errors.New("boom"))
	if st := w.state(); st.State != StateErrored || st.CumulativeErrs != 1 {
		t.Fatalf("got state=%v errs=%d, want Errored/1", st.State, st.CumulativeErrs)
	}
	w.recordSuccess("ok")
	st := w.state()
	if st.State != StateRunning {
		t.Fatalf("expected keep_going to recover to Running, got %v", st.State)
	}
	if st.CumulativeErrs != 1 {
		t.Fatalf("cumulative error count should persist as history, got %d", st.CumulativeErrs)
	}
}

func TestWorkerBumpMetricsIsNoopWithoutMetrics(t *testing.T) {
	w := newTestWorker(KeepGoing)
	// sched.metrics is nil by default; this must not panic.
	w.bumpMetrics(true, 10)
	w.bumpMetrics(false, 0)
}

func TestWorkerBumpMetricsRecordsPublishAndErrorCounters(t *testing.T) {
	m := metrics.New()
	w := newTestWorker(KeepGoing)
	w.sched.metrics = m

	w.bumpMetrics(true, 12)
	w.bumpMetrics(true, 8)
	w.bumpMetrics(false, 0)

	if got := testutil.ToFloat64(m.PublishTotal.WithLabelValues(w.stream.ID)); got != 2 {
		t.Fatalf("got PublishTotal %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ErrorTotal.WithLabelValues(w.stream.ID)); got != 1 {
		t.Fatalf("got ErrorTotal %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BytesPublished.WithLabelValues(w.stream.ID)); got != 20 {
		t.Fatalf("got BytesPublished %v, want 20", got)
	}
}

func TestWorkerRecordErrorAccumulates(t *testing.T) {
	w := newTestWorker(KeepGoing)
	w.recordError(errors.New("a"))
	w.recordError(errors.New("b"))
	st := w.state()
	if st.CumulativeErrs != 2 {
		t.Fatalf("got %d, want 2", st.CumulativeErrs)
	}
	if st.LastError.Error() != "b" {
		t.Fatalf("got last error %v, want b", st.LastError)
	}
}
