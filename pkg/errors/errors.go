// Package errors defines the error taxonomy shared by every engine
// component: ConfigError, GeneratorError, PayloadError, TransportError,
// and CancellationSignal.
package errors

import "fmt"

// ConfigError reports a schema, validation, template-variable, or
// path-resolution failure. Raised by the Loader or Expander; always fatal.
type ConfigError struct {
	Path string // dotted location of the offending node, e.g. streams[3].payload.kind; empty if unknown
	Msg  string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// NewConfigError builds a ConfigError qualified by a dotted node path.
func NewConfigError(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// GeneratorError reports generator misuse: a domain error raised while
// evaluating an expression, or invalid bounds discovered while building a
// value.
type GeneratorError struct {
	Kind string // generator kind, e.g. "expression"
	Err  error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator %s: %v", e.Kind, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// NewGeneratorError wraps err as a GeneratorError for the given kind.
func NewGeneratorError(kind string, err error) *GeneratorError {
	return &GeneratorError{Kind: kind, Err: err}
}

// PayloadError reports file I/O failure, decoding failure, or JSON
// serialization failure while building a payload. May wrap a GeneratorError.
type PayloadError struct {
	Kind string // payload builder kind, e.g. "file"
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payload %s: %v", e.Kind, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// NewPayloadError wraps err as a PayloadError for the given kind.
func NewPayloadError(kind string, err error) *PayloadError {
	return &PayloadError{Kind: kind, Err: err}
}

// TransportError reports a broker connection or publish failure.
type TransportError struct {
	Broker string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Broker, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err as a TransportError for the named broker.
func NewTransportError(broker string, err error) *TransportError {
	return &TransportError{Broker: broker, Err: err}
}

// CancellationSignal marks normal, requested cancellation. It must never be
// surfaced to the user as a failure.
type CancellationSignal struct {
	Reason string
}

func (e *CancellationSignal) Error() string { return "cancelled: " + e.Reason }

// NewCancellationSignal builds a CancellationSignal with the given reason.
func NewCancellationSignal(reason string) *CancellationSignal {
	return &CancellationSignal{Reason: reason}
}
