package expand

import (
	"testing"

	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

func rangeTemplate(start, stop, step int64, inclusive bool) plan.StreamTemplate {
	return plan.StreamTemplate{
		Broker:   "main",
		Topic:    "devices/{id}/status",
		Interval: 0.1,
		Payload:  plan.PayloadSpec{Kind: plan.PayloadText, Value: "hello-{id}"},
		Expand: &plan.Expansion{
			Kind:      plan.ExpansionRange,
			Var:       "id",
			Start:     start,
			Stop:      stop,
			Step:      step,
			Inclusive: inclusive,
		},
	}
}

func TestExpandRangeInclusive(t *testing.T) {
	p := &plan.Plan{Streams: []plan.StreamTemplate{rangeTemplate(1, 3, 1, true)}}
	out, err := ExpandAll(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 resolved streams, got %d", len(out))
	}
	wantTopics := []string{"devices/1/status", "devices/2/status", "devices/3/status"}
	for i, rs := range out {
		if rs.Topic != wantTopics[i] {
			t.Errorf("stream %d: topic = %q, want %q", i, rs.Topic, wantTopics[i])
		}
		wantPayload := "hello-" + wantTopics[i][len("devices/"):len(wantTopics[i])-len("/status")]
		if rs.Payload.Value != wantPayload {
			t.Errorf("stream %d: payload = %q, want %q", i, rs.Payload.Value, wantPayload)
		}
	}
}

func TestExpandRangeExclusive(t *testing.T) {
	p := &plan.Plan{Streams: []plan.StreamTemplate{rangeTemplate(1, 3, 1, false)}}
	out, err := ExpandAll(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 resolved streams, got %d", len(out))
	}
}

func TestExpandRangeNegativeStep(t *testing.T) {
	p := &plan.Plan{Streams: []plan.StreamTemplate{rangeTemplate(3, 1, -1, true)}}
	out, err := ExpandAll(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"devices/3/status", "devices/2/status", "devices/1/status"}
	if len(out) != len(want) {
		t.Fatalf("expected %d resolved streams, got %d", len(want), len(out))
	}
	for i, rs := range out {
		if rs.Topic != want[i] {
			t.Errorf("stream %d: topic = %q, want %q", i, rs.Topic, want[i])
		}
	}
}

func TestExpandList(t *testing.T) {
	tmpl := plan.StreamTemplate{
		Broker:   "main",
		Topic:    "rooms/{room}/temp",
		Interval: 1,
		Payload:  plan.PayloadSpec{Kind: plan.PayloadText, Value: "ok"},
		Expand: &plan.Expansion{
			Kind:   plan.ExpansionList,
			Var:    "room",
			Values: []string{"kitchen", "hall"},
		},
	}
	p := &plan.Plan{Streams: []plan.StreamTemplate{tmpl}}
	out, err := ExpandAll(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"rooms/kitchen/temp", "rooms/hall/temp"}
	for i, rs := range out {
		if rs.Topic != want[i] {
			t.Errorf("stream %d: topic = %q, want %q", i, rs.Topic, want[i])
		}
	}
}

func TestExpandNoExpansion(t *testing.T) {
	tmpl := plan.StreamTemplate{
		Broker:   "main",
		Topic:    "static/topic",
		Interval: 1,
		Payload:  plan.PayloadSpec{Kind: plan.PayloadText, Value: "static"},
	}
	p := &plan.Plan{Streams: []plan.StreamTemplate{tmpl}}
	out, err := ExpandAll(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 resolved stream, got %d", len(out))
	}
	if out[0].Topic != "static/topic" {
		t.Errorf("topic = %q", out[0].Topic)
	}
}

func TestExpandUnknownVariableFails(t *testing.T) {
	tmpl := plan.StreamTemplate{
		Broker:   "main",
		Topic:    "devices/{bogus}/status",
		Interval: 1,
		Payload:  plan.PayloadSpec{Kind: plan.PayloadText, Value: "x"},
		Expand: &plan.Expansion{
			Kind: plan.ExpansionList, Var: "id", Values: []string{"1"},
		},
	}
	p := &plan.Plan{Streams: []plan.StreamTemplate{tmpl}}
	if _, err := ExpandAll(p); err == nil {
		t.Fatal("expected error for unknown template variable")
	}
}

func TestBraceEscaping(t *testing.T) {
	tmpl := plan.StreamTemplate{
		Broker:   "main",
		Topic:    "literal/{{braces}}/{id}",
		Interval: 1,
		Payload:  plan.PayloadSpec{Kind: plan.PayloadText, Value: "x"},
		Expand: &plan.Expansion{
			Kind: plan.ExpansionList, Var: "id", Values: []string{"7"},
		},
	}
	p := &plan.Plan{Streams: []plan.StreamTemplate{tmpl}}
	out, err := ExpandAll(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "literal/{braces}/7"
	if out[0].Topic != want {
		t.Errorf("topic = %q, want %q", out[0].Topic, want)
	}
}
