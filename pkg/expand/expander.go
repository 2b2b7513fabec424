// Package expand turns each plan.StreamTemplate into one or more
// plan.ResolvedStream by enumerating its Expansion and substituting the
// resulting value into every templated string.
package expand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

// ResolvedStream is a concrete publisher instance: one topic, one interval,
// one payload spec (already templated), one stable id.
type ResolvedStream struct {
	ID       string
	Broker   string
	Topic    string
	Interval float64
	QoS      int
	Retain   bool
	Payload  plan.PayloadSpec
}

// templateVarPattern matches {name}-style placeholders, distinct from the
// doubled-brace escape {{ / }}.
var templateVarPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandAll expands every StreamTemplate in p into its ResolvedStreams, in
// template order then expansion order. It is the sole source of
// "Missing template variable" ConfigErrors (spec §4.2).
func ExpandAll(p *plan.Plan) ([]ResolvedStream, error) {
	var out []ResolvedStream
	for i, tmpl := range p.Streams {
		resolved, err := expandTemplate(i, tmpl)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

// Validate runs the full expansion pass and discards the result, surfacing
// only the first error encountered. Used by the `validate` CLI command and
// prior to scheduling a run.
func Validate(p *plan.Plan) error {
	_, err := ExpandAll(p)
	return err
}

func expandTemplate(idx int, tmpl plan.StreamTemplate) ([]ResolvedStream, error) {
	path := fmt.Sprintf("streams[%d]", idx)

	if tmpl.Expand == nil {
		id := fmt.Sprintf("%d", idx)
		rs, err := resolveOne(path, id, tmpl, nil, "")
		if err != nil {
			return nil, err
		}
		return []ResolvedStream{rs}, nil
	}

	switch tmpl.Expand.Kind {
	case plan.ExpansionRange:
		values, err := enumerateRange(*tmpl.Expand)
		if err != nil {
			return nil, engerrors.NewConfigError(path+".expand", "%v", err)
		}
		out := make([]ResolvedStream, 0, len(values))
		for _, v := range values {
			sval := strconv.FormatInt(v, 10)
			id := fmt.Sprintf("%d-%s", idx, sval)
			rs, err := resolveOne(path, id, tmpl, map[string]string{tmpl.Expand.Var: sval}, tmpl.Expand.Var)
			if err != nil {
				return nil, err
			}
			out = append(out, rs)
		}
		return out, nil

	case plan.ExpansionList:
		out := make([]ResolvedStream, 0, len(tmpl.Expand.Values))
		for _, v := range tmpl.Expand.Values {
			id := fmt.Sprintf("%d-%s", idx, v)
			rs, err := resolveOne(path, id, tmpl, map[string]string{tmpl.Expand.Var: v}, tmpl.Expand.Var)
			if err != nil {
				return nil, err
			}
			out = append(out, rs)
		}
		return out, nil

	default:
		return nil, engerrors.NewConfigError(path+".expand.kind", "unknown expansion kind %q", tmpl.Expand.Kind)
	}
}

// enumerateRange enumerates integers starting at Start, adding Step each
// iteration, until Stop would be passed. If Inclusive, Stop is included
// when it lies on the lattice start + k*step.
func enumerateRange(e plan.Expansion) ([]int64, error) {
	if e.Step == 0 {
		return nil, fmt.Errorf("range step must not be 0")
	}
	var out []int64
	if e.Step > 0 {
		for v := e.Start; ; v += e.Step {
			if v > e.Stop || (v == e.Stop && !e.Inclusive) {
				break
			}
			out = append(out, v)
			if v == e.Stop {
				break
			}
		}
	} else {
		for v := e.Start; ; v += e.Step {
			if v < e.Stop || (v == e.Stop && !e.Inclusive) {
				break
			}
			out = append(out, v)
			if v == e.Stop {
				break
			}
		}
	}
	return out, nil
}

// resolveOne applies substitution to topic and payload, validating that
// every template variable used matches expandVar (or that none are used,
// when expandVar is empty).
func resolveOne(path, id string, tmpl plan.StreamTemplate, ctx map[string]string, expandVar string) (ResolvedStream, error) {
	topic, err := substitute(tmpl.Topic, ctx, expandVar, path+".topic")
	if err != nil {
		return ResolvedStream{}, err
	}

	payload, err := substitutePayload(tmpl.Payload, ctx, expandVar, path+".payload")
	if err != nil {
		return ResolvedStream{}, err
	}

	return ResolvedStream{
		ID:       id,
		Broker:   tmpl.Broker,
		Topic:    topic,
		Interval: tmpl.Interval,
		QoS:      tmpl.QoS,
		Retain:   tmpl.Retain,
		Payload:  payload,
	}, nil
}

func substitutePayload(p plan.PayloadSpec, ctx map[string]string, expandVar, path string) (plan.PayloadSpec, error) {
	out := p
	var err error

	switch p.Kind {
	case plan.PayloadText:
		out.Value, err = substitute(p.Value, ctx, expandVar, path+".value")
	case plan.PayloadBytes:
		out.Value, err = substitute(p.Value, ctx, expandVar, path+".value")
	case plan.PayloadFile, plan.PayloadPickleFile:
		out.Path, err = substitute(p.Path, ctx, expandVar, path+".path")
	case plan.PayloadSequence:
		items := make([]string, len(p.Items))
		for i, it := range p.Items {
			items[i], err = substitute(it, ctx, expandVar, fmt.Sprintf("%s.items[%d]", path, i))
			if err != nil {
				return plan.PayloadSpec{}, err
			}
		}
		out.Items = items
	case plan.PayloadJSONFields:
		fields := make([]plan.FieldSpec, len(p.Fields))
		for i, f := range p.Fields {
			fp := fmt.Sprintf("%s.fields[%d]", path, i)
			gen, gerr := substituteGenerator(f.Generator, ctx, expandVar, fp+".generator")
			if gerr != nil {
				return plan.PayloadSpec{}, gerr
			}
			fields[i] = plan.FieldSpec{Name: f.Name, Generator: gen}
		}
		out.Fields = fields
	}
	if err != nil {
		return plan.PayloadSpec{}, err
	}
	return out, nil
}

func substituteGenerator(g plan.GeneratorSpec, ctx map[string]string, expandVar, path string) (plan.GeneratorSpec, error) {
	out := g
	var err error

	switch g.Kind {
	case plan.GenConst:
		if s, ok := g.ConstValue.(string); ok {
			out.ConstValue, err = substitute(s, ctx, expandVar, path+".value")
		}
	case plan.GenExpression:
		out.Expression, err = substitute(g.Expression, ctx, expandVar, path+".expression")
	case plan.GenChoice, plan.GenSequence:
		values := make([]any, len(g.Values))
		for i, v := range g.Values {
			if s, ok := v.(string); ok {
				values[i], err = substitute(s, ctx, expandVar, fmt.Sprintf("%s.values[%d]", path, i))
				if err != nil {
					return plan.GeneratorSpec{}, err
				}
			} else {
				values[i] = v
			}
		}
		out.Values = values
	}
	if err != nil {
		return plan.GeneratorSpec{}, err
	}
	return out, nil
}

// substitute replaces every {name} placeholder in s with ctx[name],
// honoring {{ / }} as literal-brace escapes. It is a validation failure to
// reference a name other than expandVar (or any name, when expandVar is
// empty — the no-expansion case).
func substitute(s string, ctx map[string]string, expandVar, path string) (string, error) {
	if s == "" {
		return "", nil
	}

	// Escape {{ and }} first so they don't match as variable references.
	const lbraceSentinel = "\x00LBRACE\x00"
	const rbraceSentinel = "\x00RBRACE\x00"
	escaped := strings.ReplaceAll(s, "{{", lbraceSentinel)
	escaped = strings.ReplaceAll(escaped, "}}", rbraceSentinel)

	var firstErr error
	result := templateVarPattern.ReplaceAllStringFunc(escaped, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := match[1 : len(match)-1]
		if expandVar == "" || name != expandVar {
			firstErr = engerrors.NewConfigError(path, "Missing template variable '%s' in stream template.", name)
			return match
		}
		return ctx[name]
	})
	if firstErr != nil {
		return "", firstErr
	}

	result = strings.ReplaceAll(result, lbraceSentinel, "{")
	result = strings.ReplaceAll(result, rbraceSentinel, "}")
	return result, nil
}
