package generator

import "github.com/jihwankim/mqtt-sim/pkg/plan"

type sequenceGen struct {
	values []any
	loop   bool
	idx    int
}

func newSequence(spec plan.GeneratorSpec) *sequenceGen {
	return &sequenceGen{values: spec.Values, loop: spec.Loop}
}

// Next returns values[idx] and advances idx; when idx reaches the end, it
// wraps to 0 if loop, otherwise clamps at the last index.
func (g *sequenceGen) Next(ctx Context) (any, error) {
	v := g.values[g.idx]
	if g.idx < len(g.values)-1 {
		g.idx++
	} else if g.loop {
		g.idx = 0
	}
	return v, nil
}
