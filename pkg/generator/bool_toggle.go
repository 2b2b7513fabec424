package generator

import "github.com/jihwankim/mqtt-sim/pkg/plan"

type boolToggle struct {
	value   bool
	started bool
}

func newBoolToggle(spec plan.GeneratorSpec) *boolToggle {
	return &boolToggle{value: spec.Start}
}

// Next returns Start on the first call; every subsequent call flips.
func (g *boolToggle) Next(ctx Context) (any, error) {
	if !g.started {
		g.started = true
		return g.value, nil
	}
	g.value = !g.value
	return g.value, nil
}
