package payload

import (
	"encoding/json"
	"fmt"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

type sequenceBuilder struct {
	items    []string
	encoding plan.SequenceEncoding
	loop     bool
	idx      int
}

func newSequenceBuilder(spec plan.PayloadSpec) (*sequenceBuilder, error) {
	switch spec.SeqEncoding {
	case plan.SeqEncodingText, plan.SeqEncodingJSON:
	default:
		return nil, engerrors.NewPayloadError("sequence", fmt.Errorf("unknown encoding %q", spec.SeqEncoding))
	}
	return &sequenceBuilder{items: spec.Items, encoding: spec.SeqEncoding, loop: spec.Loop}, nil
}

// Build returns items[idx] encoded per encoding, then advances idx with the
// same loop/clamp semantics as the sequence generator.
func (b *sequenceBuilder) Build() ([]byte, string, error) {
	item := b.items[b.idx]
	if b.idx < len(b.items)-1 {
		b.idx++
	} else if b.loop {
		b.idx = 0
	}

	var data []byte
	switch b.encoding {
	case plan.SeqEncodingText:
		data = []byte(item)
	case plan.SeqEncodingJSON:
		var v any
		if err := json.Unmarshal([]byte(item), &v); err != nil {
			return nil, "", engerrors.NewPayloadError("sequence", fmt.Errorf("decode json item %q: %w", item, err))
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", engerrors.NewPayloadError("sequence", fmt.Errorf("encode json item: %w", err))
		}
		data = encoded
	}
	return data, preview(data), nil
}
