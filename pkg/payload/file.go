package payload

import (
	"fmt"
	"os"
	"path/filepath"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
	"github.com/jihwankim/mqtt-sim/pkg/plan"
)

type fileBuilder struct {
	path string
}

func resolvePath(path, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

func newFileBuilder(spec plan.PayloadSpec, configDir string) *fileBuilder {
	return &fileBuilder{path: resolvePath(spec.Path, configDir)}
}

// Build re-reads the file on every call, so the configured path may be
// rotated or rewritten between publishes.
func (b *fileBuilder) Build() ([]byte, string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, "", engerrors.NewPayloadError("file", fmt.Errorf("read %s: %w", b.path, err))
	}
	return data, preview(data), nil
}
