package generator

import (
	"fmt"
	"math"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

type numberWalk struct {
	min, max, step float64
	current        float64
	direction      float64 // +1 or -1
	numericType    plan.NumericType
}

func newNumberWalk(spec plan.GeneratorSpec) (*numberWalk, error) {
	if spec.Min > spec.Max {
		return nil, engerrors.NewGeneratorError("number_walk", fmt.Errorf("min %v > max %v", spec.Min, spec.Max))
	}
	if spec.Step <= 0 {
		return nil, engerrors.NewGeneratorError("number_walk", fmt.Errorf("step must be > 0"))
	}
	start := spec.Min
	if spec.HasStart {
		start = spec.NumberStart
	}
	return &numberWalk{
		min: spec.Min, max: spec.Max, step: spec.Step,
		current: start, direction: 1,
		numericType: spec.NumericType,
	}, nil
}

// Next returns the current position, then advances one step, reversing
// direction at either boundary.
func (g *numberWalk) Next(ctx Context) (any, error) {
	result := g.current

	candidate := g.current + g.direction*g.step
	switch {
	case candidate > g.max:
		g.direction = -1
		candidate = g.current - g.step
	case candidate < g.min:
		g.direction = 1
		candidate = g.current + g.step
	}
	g.current = candidate

	if g.numericType == plan.NumericInt {
		return int64(math.Round(result)), nil
	}
	return result, nil
}
