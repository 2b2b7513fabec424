package generator

import (
	"fmt"
	"math"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

type numberRandom struct {
	min, max    float64
	numericType plan.NumericType
	precision   *int
	src         *rng.Source
}

func newNumberRandom(spec plan.GeneratorSpec, src *rng.Source) (*numberRandom, error) {
	if spec.Min > spec.Max {
		return nil, engerrors.NewGeneratorError("number_random", fmt.Errorf("min %v > max %v", spec.Min, spec.Max))
	}
	return &numberRandom{
		min: spec.Min, max: spec.Max,
		numericType: spec.NumericType,
		precision:   spec.Precision,
		src:         src,
	}, nil
}

func (g *numberRandom) Next(ctx Context) (any, error) {
	if g.numericType == plan.NumericInt {
		return g.src.IntRange(int64(math.Round(g.min)), int64(math.Round(g.max))), nil
	}

	v := g.src.Uniform(g.min, g.max)
	if g.precision != nil {
		mult := math.Pow(10, float64(*g.precision))
		v = math.Round(v*mult) / mult
	}
	return v, nil
}
