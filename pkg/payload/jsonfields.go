package payload

import (
	"bytes"
	"encoding/json"
	"fmt"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/generator"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

type jsonField struct {
	name string
	gen  generator.Generator
}

// jsonFieldsBuilder serializes an ordered map of field name to generated
// value. encoding/json cannot preserve declaration order through a Go map,
// so this writes the JSON object by hand, one field at a time, in the
// order fields were declared.
type jsonFieldsBuilder struct {
	fields []jsonField
}

func newJSONFieldsBuilder(spec plan.PayloadSpec, src *rng.Source) (*jsonFieldsBuilder, error) {
	fields := make([]jsonField, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		g, err := generator.New(f.Generator, src)
		if err != nil {
			return nil, engerrors.NewPayloadError("json_fields", fmt.Errorf("field %q: %w", f.Name, err))
		}
		fields = append(fields, jsonField{name: f.Name, gen: g})
	}
	return &jsonFieldsBuilder{fields: fields}, nil
}

func (b *jsonFieldsBuilder) Build() ([]byte, string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range b.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, err := f.gen.Next(generator.Context{})
		if err != nil {
			return nil, "", engerrors.NewPayloadError("json_fields", fmt.Errorf("field %q: %w", f.name, err))
		}
		key, err := json.Marshal(f.name)
		if err != nil {
			return nil, "", engerrors.NewPayloadError("json_fields", fmt.Errorf("encode field name %q: %w", f.name, err))
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, "", engerrors.NewPayloadError("json_fields", fmt.Errorf("field %q: encode value: %w", f.name, err))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	data := buf.Bytes()
	return data, preview(data), nil
}
