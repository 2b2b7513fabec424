package generator

import (
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

type choiceGen struct {
	values []any
	src    *rng.Source
}

func newChoice(spec plan.GeneratorSpec, src *rng.Source) *choiceGen {
	return &choiceGen{values: spec.Values, src: src}
}

func (g *choiceGen) Next(ctx Context) (any, error) {
	idx := g.src.Intn(len(g.values))
	return g.values[idx], nil
}
