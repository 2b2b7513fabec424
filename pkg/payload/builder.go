// Package payload implements the payload builders: closed tagged-variant
// producers that turn a resolved PayloadSpec into the bytes published on
// the wire, plus a short preview string for status reporting.
package payload

import (
	"fmt"
	"unicode/utf8"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
	"github.com/jihwankim/mqtt-sim/pkg/rng"
)

// Builder produces one published payload per call to Build. Implementations
// own any generator state exclusively; two Builders built from the same
// spec never share state.
type Builder interface {
	// Build returns the wire bytes and a short human preview for status
	// reporting.
	Build() ([]byte, string, error)
}

// New builds the Builder for spec. configDir is the directory file and
// pickle_file paths are resolved against when the path is not absolute.
// src supplies randomness to any json_fields generators that need it.
func New(spec plan.PayloadSpec, configDir string, src *rng.Source) (Builder, error) {
	switch spec.Kind {
	case plan.PayloadText:
		return newTextBuilder(spec), nil
	case plan.PayloadBytes:
		return newBytesBuilder(spec)
	case plan.PayloadFile:
		return newFileBuilder(spec, configDir), nil
	case plan.PayloadPickleFile:
		return newPickleFileBuilder(spec, configDir), nil
	case plan.PayloadSequence:
		return newSequenceBuilder(spec)
	case plan.PayloadJSONFields:
		return newJSONFieldsBuilder(spec, src)
	default:
		return nil, engerrors.NewPayloadError(string(spec.Kind), fmt.Errorf("unknown payload kind"))
	}
}

const previewMaxLen = 80

// preview renders a short human-readable preview of data, matching the
// table/log sinks' PAYLOAD column. Valid, short UTF-8 text is shown as-is;
// longer valid UTF-8 text is cut to its first previewMaxLen bytes followed
// by "...", and non-UTF-8 data falls back to a byte-count marker.
func preview(data []byte) string {
	if utf8.Valid(data) && len(data) <= previewMaxLen {
		return string(data)
	}
	if utf8.Valid(data) {
		return string(data[:previewMaxLen]) + "..."
	}
	return fmt.Sprintf("<%dB>", len(data))
}
