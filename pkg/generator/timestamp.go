package generator

import (
	"fmt"
	"time"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

type timestampGen struct {
	mode plan.TimestampMode
}

func newTimestamp(spec plan.GeneratorSpec) (*timestampGen, error) {
	switch spec.TimestampMode {
	case plan.TimestampISO, plan.TimestampUnix:
		return &timestampGen{mode: spec.TimestampMode}, nil
	default:
		return nil, engerrors.NewGeneratorError("timestamp", fmt.Errorf("unknown mode %q", spec.TimestampMode))
	}
}

func (g *timestampGen) Next(ctx Context) (any, error) {
	now := time.Now().UTC()
	if g.mode == plan.TimestampUnix {
		return float64(now.UnixNano()) / 1e9, nil
	}
	return now.Format(time.RFC3339), nil
}
