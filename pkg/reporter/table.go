package reporter

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// refreshInterval is the table sink's repaint cadence. Multiple Event
// calls arriving inside one interval coalesce into a single repaint.
const refreshInterval = 200 * time.Millisecond

// tableReporter repaints an ANSI table of every stream's latest snapshot
// on a fixed cadence, coalescing updates that land between repaints.
type tableReporter struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
	dirty     bool
	lastRows  int

	stop chan struct{}
	done chan struct{}
}

// NewTableReporter starts the repaint loop and returns the sink.
func NewTableReporter() Reporter {
	r := &tableReporter{
		snapshots: make(map[string]Snapshot),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *tableReporter) Event(s Snapshot) {
	r.mu.Lock()
	r.snapshots[s.ID] = s
	r.dirty = true
	r.mu.Unlock()
}

func (r *tableReporter) loop() {
	defer close(r.done)
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			r.repaint()
			return
		case <-ticker.C:
			r.repaint()
		}
	}
}

func (r *tableReporter) Close() {
	close(r.stop)
	<-r.done
}

func (r *tableReporter) repaint() {
	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return
	}
	rows := make([]Snapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		rows = append(rows, s)
	}
	r.dirty = false
	r.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	if r.lastRows > 0 {
		fmt.Fprintf(os.Stdout, "\x1b[%dA\x1b[J", r.lastRows)
	}
	fmt.Fprintf(os.Stdout, "%-24s %-9s %8s %8s %-12s %-24s %-20s\n",
		"TOPIC", "STATE", "INTERVAL", "COUNT", "LAST PUB", "PAYLOAD", "ERR")
	for _, s := range rows {
		lastPub := "-"
		if !s.LastPublished.IsZero() {
			lastPub = s.LastPublished.Format("15:04:05.000")
		}
		errCol := ""
		if s.Err != nil {
			errCol = truncate(s.Err.Error(), 20)
		}
		fmt.Fprintf(os.Stdout, "%-24s %-9s %8.3f %8d %-12s %-24s %-20s\n",
			truncate(s.Topic, 24), s.State, s.Interval, s.PublishCount, lastPub, truncate(s.Preview, 24), errCol)
	}
	r.lastRows = len(rows) + 1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
