package payload

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

type bytesBuilder struct {
	value    string
	encoding plan.BytesEncoding
}

func newBytesBuilder(spec plan.PayloadSpec) (*bytesBuilder, error) {
	switch spec.BytesEncoding {
	case plan.EncodingUTF8, plan.EncodingHex, plan.EncodingBase64:
	default:
		return nil, engerrors.NewPayloadError("bytes", fmt.Errorf("unknown encoding %q", spec.BytesEncoding))
	}
	return &bytesBuilder{value: spec.Value, encoding: spec.BytesEncoding}, nil
}

func (b *bytesBuilder) Build() ([]byte, string, error) {
	var data []byte
	var err error
	switch b.encoding {
	case plan.EncodingUTF8:
		data = []byte(b.value)
	case plan.EncodingHex:
		data, err = hex.DecodeString(strings.Join(strings.Fields(b.value), ""))
	case plan.EncodingBase64:
		data, err = base64.StdEncoding.DecodeString(b.value)
	}
	if err != nil {
		return nil, "", engerrors.NewPayloadError("bytes", fmt.Errorf("decode %s: %w", b.encoding, err))
	}
	return data, preview(data), nil
}
