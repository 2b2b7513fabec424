package payload

import (
	"fmt"
	"os"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

// pickleFileBuilder passes the referenced file through byte-for-byte. It
// never parses the pickle wire format; its only job is preserving the
// bytes and reporting their size.
type pickleFileBuilder struct {
	path string
}

func newPickleFileBuilder(spec plan.PayloadSpec, configDir string) *pickleFileBuilder {
	return &pickleFileBuilder{path: resolvePath(spec.Path, configDir)}
}

func (b *pickleFileBuilder) Build() ([]byte, string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, "", engerrors.NewPayloadError("pickle_file", fmt.Errorf("read %s: %w", b.path, err))
	}
	return data, fmt.Sprintf("<pickle %dB>", len(data)), nil
}
