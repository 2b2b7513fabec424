// Package generator implements the generator algebra: stateful,
// single-value producers used by json_fields payloads. Each kind is a
// small struct implementing Generator; dispatch is a closed switch over
// plan.GeneratorKind, never open inheritance.
package generator

import (
	"fmt"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

// Context is the per-tick substitution context available to generators
// that need it (currently unused by any generator directly, reserved for
// forward compatibility with context-aware generators).
type Context struct {
	Vars map[string]string
}

// Generator produces one value per call to Next. Implementations own their
// state exclusively; two Generators built from the same spec never share
// state.
type Generator interface {
	Next(ctx Context) (any, error)
}

// New builds the Generator for spec, wiring in src for kinds that need
// randomness.
func New(spec plan.GeneratorSpec, src *rng.Source) (Generator, error) {
	switch spec.Kind {
	case plan.GenConst:
		return &constGen{value: spec.ConstValue}, nil
	case plan.GenBoolToggle:
		return newBoolToggle(spec), nil
	case plan.GenNumberWalk:
		return newNumberWalk(spec)
	case plan.GenNumberRandom:
		return newNumberRandom(spec, src)
	case plan.GenChoice:
		return newChoice(spec, src), nil
	case plan.GenSequence:
		return newSequence(spec), nil
	case plan.GenExpression:
		return newExpression(spec, src)
	case plan.GenTimestamp:
		return newTimestamp(spec)
	case plan.GenUUID:
		return &uuidGen{}, nil
	default:
		return nil, engerrors.NewGeneratorError(string(spec.Kind), fmt.Errorf("unknown generator kind"))
	}
}
