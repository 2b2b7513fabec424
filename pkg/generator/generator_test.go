package generator

import (
	"testing"

	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

func TestConstGenerator(t *testing.T) {
	g, err := New(plan.GeneratorSpec{Kind: plan.GenConst, ConstValue: "fixed"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		v, err := g.Next(Context{})
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if v != "fixed" {
			t.Fatalf("call %d: got %v, want fixed", i, v)
		}
	}
}

func TestBoolToggleGenerator(t *testing.T) {
	g, err := New(plan.GeneratorSpec{Kind: plan.GenBoolToggle, Start: true}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []bool{true, false, true, false}
	for i, w := range want {
		v, err := g.Next(Context{})
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if v != w {
			t.Fatalf("call %d: got %v, want %v", i, v, w)
		}
	}
}

func TestNumberWalkMatchesWorkedExample(t *testing.T) {
	spec := plan.GeneratorSpec{
		Kind: plan.GenNumberWalk, Min: 0, Max: 3, Step: 1,
		NumericType: plan.NumericInt, HasStart: true, NumberStart: 0,
	}
	g, err := New(spec, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []int64{0, 1, 2, 3, 2, 1, 0, 1, 2, 3}
	for i, w := range want {
		v, err := g.Next(Context{})
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if v != w {
			t.Fatalf("call %d: got %v, want %v", i, v, w)
		}
	}
}

func TestNumberWalkRejectsInvertedBounds(t *testing.T) {
	_, err := New(plan.GeneratorSpec{Kind: plan.GenNumberWalk, Min: 5, Max: 1, Step: 1}, nil)
	if err == nil {
		t.Fatal("expected error for min > max")
	}
}

func TestSequenceMatchesWorkedExample(t *testing.T) {
	spec := plan.GeneratorSpec{
		Kind: plan.GenSequence, Values: []any{"a", "b", "c"}, Loop: false,
	}
	g, err := New(spec, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []any{"a", "b", "c", "c", "c"}
	for i, w := range want {
		v, err := g.Next(Context{})
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if v != w {
			t.Fatalf("call %d: got %v, want %v", i, v, w)
		}
	}
}

func TestSequenceLoops(t *testing.T) {
	spec := plan.GeneratorSpec{Kind: plan.GenSequence, Values: []any{"a", "b"}, Loop: true}
	g, err := New(spec, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []any{"a", "b", "a", "b"}
	for i, w := range want {
		v, _ := g.Next(Context{})
		if v != w {
			t.Fatalf("call %d: got %v, want %v", i, v, w)
		}
	}
}

func TestChoiceStaysWithinValues(t *testing.T) {
	values := []any{"red", "green", "blue"}
	g, err := New(plan.GeneratorSpec{Kind: plan.GenChoice, Values: values}, rng.New(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seen := map[any]bool{}
	for i := 0; i < 50; i++ {
		v, err := g.Next(Context{})
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		seen[v] = true
	}
	for v := range seen {
		found := false
		for _, want := range values {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("choice produced value outside set: %v", v)
		}
	}
}

func TestNumberRandomIntWithinBounds(t *testing.T) {
	g, err := New(plan.GeneratorSpec{
		Kind: plan.GenNumberRandom, Min: 10, Max: 20, NumericType: plan.NumericInt,
	}, rng.New(42))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 100; i++ {
		v, err := g.Next(Context{})
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		iv, ok := v.(int64)
		if !ok {
			t.Fatalf("expected int64, got %T", v)
		}
		if iv < 10 || iv > 20 {
			t.Fatalf("value %d out of bounds [10,20]", iv)
		}
	}
}

func TestNumberRandomFloatPrecision(t *testing.T) {
	prec := 2
	g, err := New(plan.GeneratorSpec{
		Kind: plan.GenNumberRandom, Min: 0, Max: 1, Precision: &prec,
	}, rng.New(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := g.Next(Context{})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	f := v.(float64)
	scaled := f * 100
	if scaled != float64(int64(scaled)) {
		t.Fatalf("value %v not rounded to 2 decimal places", f)
	}
}

func TestUUIDGeneratorProducesDistinctValues(t *testing.T) {
	g, err := New(plan.GeneratorSpec{Kind: plan.GenUUID}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := g.Next(Context{})
	b, _ := g.Next(Context{})
	if a == b {
		t.Fatalf("expected distinct uuids, got %v twice", a)
	}
	if len(a.(string)) != 36 {
		t.Fatalf("expected canonical 36-char uuid, got %q", a)
	}
}

func TestTimestampISOFormat(t *testing.T) {
	g, err := New(plan.GeneratorSpec{Kind: plan.GenTimestamp, TimestampMode: plan.TimestampISO}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := g.Next(Context{})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, ok := v.(string); !ok {
		t.Fatalf("expected string, got %T", v)
	}
}

func TestTimestampUnixFormat(t *testing.T) {
	g, err := New(plan.GeneratorSpec{Kind: plan.GenTimestamp, TimestampMode: plan.TimestampUnix}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := g.Next(Context{})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, ok := v.(float64); !ok {
		t.Fatalf("expected float64, got %T", v)
	}
}

func TestUnknownGeneratorKindFails(t *testing.T) {
	_, err := New(plan.GeneratorSpec{Kind: plan.GeneratorKind("bogus")}, nil)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
