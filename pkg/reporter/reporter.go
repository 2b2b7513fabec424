package reporter

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Mode selects which sink backs the Reporter.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeTable Mode = "table"
	ModeLog   Mode = "log"
)

// New resolves mode (auto picks table on an interactive stdout, log
// otherwise) and builds the corresponding sink.
func New(mode Mode, verbose bool) (Reporter, error) {
	resolved := mode
	if resolved == ModeAuto {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			resolved = ModeTable
		} else {
			resolved = ModeLog
		}
	}
	switch resolved {
	case ModeTable:
		return NewTableReporter(), nil
	case ModeLog:
		return NewLogReporter(verbose), nil
	default:
		return nil, fmt.Errorf("unknown reporter mode %q", mode)
	}
}
