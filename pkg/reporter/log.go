package reporter

import (
	"github.com/rs/zerolog/log"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
)

// logReporter emits one structured zerolog line per publish outcome. It
// never buffers; every Event call writes immediately.
type logReporter struct {
	verbose bool
}

// NewLogReporter builds the log sink. When verbose is set, successful
// publish lines also include the payload preview.
func NewLogReporter(verbose bool) Reporter {
	return &logReporter{verbose: verbose}
}

func (r *logReporter) Event(s Snapshot) {
	if s.Err != nil {
		ev := log.Error().Str("stream", s.ID).Str("topic", s.Topic).Str("kind", errKind(s.Err)).Err(s.Err)
		if r.verbose {
			ev = ev.Str("preview", s.Preview)
		}
		ev.Msg("ERROR")
		return
	}
	ev := log.Info().Str("topic", s.Topic).Int64("count", s.PublishCount).Int("bytes", s.Bytes)
	if r.verbose {
		ev = ev.Str("preview", s.Preview)
	}
	ev.Msg("PUBLISH")
}

func (r *logReporter) Close() {}

// errKind classifies err against the engine's error taxonomy for the
// structured "kind" field.
func errKind(err error) string {
	switch e := err.(type) {
	case *engerrors.TransportError:
		return "transport"
	case *engerrors.PayloadError:
		return "payload:" + e.Kind
	case *engerrors.GeneratorError:
		return "generator:" + e.Kind
	case *engerrors.ConfigError:
		return "config"
	case *engerrors.CancellationSignal:
		return "cancelled"
	default:
		return "unknown"
	}
}
