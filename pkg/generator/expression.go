package generator

import (
	"fmt"
	"math"
	"time"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

// expressionGen evaluates a restricted arithmetic DSL expression (spec
// §4.3/§9). It keeps per-instance prev/count state across calls, per the
// expression generator contract.
type expressionGen struct {
	ast   expr
	src   *rng.Source
	prev  any // absent value is represented as nil
	count int64
}

func newExpression(spec plan.GeneratorSpec, src *rng.Source) (*expressionGen, error) {
	ast, err := parseExpr(spec.Expression)
	if err != nil {
		return nil, engerrors.NewGeneratorError("expression", fmt.Errorf("parse %q: %w", spec.Expression, err))
	}
	return &expressionGen{ast: ast, src: src}, nil
}

func (g *expressionGen) Next(ctx Context) (any, error) {
	ec := &evalCtx{prev: g.prev, count: g.count, src: g.src, now: time.Now()}
	v, err := g.ast.eval(ec)
	if err != nil {
		return nil, engerrors.NewGeneratorError("expression", err)
	}
	g.prev = v
	g.count++
	return v, nil
}

// --- evaluation context ---

type evalCtx struct {
	prev  any
	count int64
	src   *rng.Source
	now   time.Time
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, fmt.Errorf("cannot use absent value as a number")
	default:
		return 0, fmt.Errorf("cannot use %T as a number", v)
	}
}

// --- AST ---

type expr interface {
	eval(ctx *evalCtx) (any, error)
}

type numberLit struct{ v float64 }

func (n numberLit) eval(ctx *evalCtx) (any, error) { return n.v, nil }

type identRef struct{ name string }

func (id identRef) eval(ctx *evalCtx) (any, error) {
	switch id.name {
	case "prev":
		return ctx.prev, nil
	case "count":
		return float64(ctx.count), nil
	case "random":
		return ctx.src.Float64(), nil
	case "time":
		return float64(ctx.now.UnixNano()) / 1e9, nil
	default:
		return nil, fmt.Errorf("unknown name %q", id.name)
	}
}

// mathAttr resolves a math.<name> constant or is the callee of a math.<name>(...) call.
type mathAttr struct{ name string }

func (m mathAttr) eval(ctx *evalCtx) (any, error) {
	switch m.name {
	case "pi":
		return math.Pi, nil
	case "e":
		return math.E, nil
	default:
		return nil, fmt.Errorf("math.%s is not a value (call it or reference math.pi/math.e)", m.name)
	}
}

type call struct {
	// exactly one of fn (bare name) or mathFn (math.<name>) is set
	fn     string
	mathFn string
	args   []expr
}

func (c call) eval(ctx *evalCtx) (any, error) {
	args := make([]float64, len(c.args))
	for i, a := range c.args {
		v, err := a.eval(ctx)
		if err != nil {
			return nil, err
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		args[i] = f
	}

	if c.mathFn != "" {
		return evalMathCall(c.mathFn, args)
	}

	switch c.fn {
	case "randint":
		if len(args) != 2 {
			return nil, fmt.Errorf("randint takes 2 arguments")
		}
		return ctx.src.IntRange(int64(args[0]), int64(args[1])), nil
	case "uniform":
		if len(args) != 2 {
			return nil, fmt.Errorf("uniform takes 2 arguments")
		}
		return ctx.src.Uniform(args[0], args[1]), nil
	default:
		return nil, fmt.Errorf("unknown function %q", c.fn)
	}
}

func evalMathCall(name string, args []float64) (any, error) {
	arg1 := func() (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("math.%s takes 1 argument", name)
		}
		return args[0], nil
	}
	arg2 := func() (float64, float64, error) {
		if len(args) != 2 {
			return 0, 0, fmt.Errorf("math.%s takes 2 arguments", name)
		}
		return args[0], args[1], nil
	}

	switch name {
	case "sin":
		a, err := arg1()
		return math.Sin(a), err
	case "cos":
		a, err := arg1()
		return math.Cos(a), err
	case "tan":
		a, err := arg1()
		return math.Tan(a), err
	case "sqrt":
		a, err := arg1()
		return math.Sqrt(a), err
	case "log":
		a, err := arg1()
		return math.Log(a), err
	case "exp":
		a, err := arg1()
		return math.Exp(a), err
	case "floor":
		a, err := arg1()
		return math.Floor(a), err
	case "ceil":
		a, err := arg1()
		return math.Ceil(a), err
	case "fabs":
		a, err := arg1()
		return math.Abs(a), err
	case "pow":
		a, b, err := arg2()
		return math.Pow(a, b), err
	default:
		return nil, fmt.Errorf("unknown math function %q", name)
	}
}

type unaryOp struct {
	op string // "-", "not"
	x  expr
}

func (u unaryOp) eval(ctx *evalCtx) (any, error) {
	v, err := u.x.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch u.op {
	case "-":
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return -f, nil
	case "not":
		return !truthy(v), nil
	default:
		return nil, fmt.Errorf("unknown unary operator %q", u.op)
	}
}

type binaryOp struct {
	op   string
	l, r expr
}

func (b binaryOp) eval(ctx *evalCtx) (any, error) {
	// "or"/"and" are short-circuiting and return an operand value, not
	// necessarily a bool, matching the Python-ish "prev or 10" idiom.
	if b.op == "or" {
		lv, err := b.l.eval(ctx)
		if err != nil {
			return nil, err
		}
		if truthy(lv) {
			return lv, nil
		}
		return b.r.eval(ctx)
	}
	if b.op == "and" {
		lv, err := b.l.eval(ctx)
		if err != nil {
			return nil, err
		}
		if !truthy(lv) {
			return lv, nil
		}
		return b.r.eval(ctx)
	}

	lv, err := b.l.eval(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := b.r.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch b.op {
	case "==":
		return valuesEqual(lv, rv), nil
	case "!=":
		return !valuesEqual(lv, rv), nil
	}

	lf, err := toFloat(lv)
	if err != nil {
		return nil, err
	}
	rf, err := toFloat(rv)
	if err != nil {
		return nil, err
	}

	switch b.op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return math.Mod(lf, rf), nil
	case "**":
		return math.Pow(lf, rf), nil
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	default:
		return nil, fmt.Errorf("unknown binary operator %q", b.op)
	}
}

func valuesEqual(a, b any) bool {
	af, aerr := toFloat(a)
	bf, berr := toFloat(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return a == b
}
