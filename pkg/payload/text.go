package payload

import "github.com/jihwankim/mqtt-sim/pkg/plan"

type textBuilder struct {
	value string
}

func newTextBuilder(spec plan.PayloadSpec) *textBuilder {
	return &textBuilder{value: spec.Value}
}

func (b *textBuilder) Build() ([]byte, string, error) {
	data := []byte(b.value)
	return data, preview(data), nil
}
