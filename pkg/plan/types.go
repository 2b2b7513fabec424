// Package plan holds the config model: the immutable Plan produced by the
// Loader, and every sub-variant it is built from.
package plan

// Plan is the fully validated, immutable configuration tree.
type Plan struct {
	SchemaVersion int
	Brokers       []BrokerSpec
	Streams       []StreamTemplate

	// ConfigDir is the absolute directory containing the config file;
	// relative file paths in payload specs resolve against it.
	ConfigDir string
}

// BrokerByName returns the BrokerSpec with the given name, or false if none
// matches.
func (p *Plan) BrokerByName(name string) (BrokerSpec, bool) {
	for _, b := range p.Brokers {
		if b.Name == name {
			return b, true
		}
	}
	return BrokerSpec{}, false
}

// BrokerSpec names one MQTT broker connection.
type BrokerSpec struct {
	Name      string
	Host      string
	Port      int
	Keepalive int
	ClientID  string
	Username  string
	Password  string
}

// StreamTemplate is a stream declaration that may expand into multiple
// ResolvedStreams.
type StreamTemplate struct {
	Name     string
	Broker   string
	Topic    string
	Interval float64
	QoS      int
	Retain   bool
	Payload  PayloadSpec
	Expand   *Expansion // nil: no expansion, one resolved stream
}

// ExpansionKind discriminates the two Expansion variants.
type ExpansionKind string

const (
	ExpansionRange ExpansionKind = "range"
	ExpansionList  ExpansionKind = "list"
)

// Expansion is exactly one of Range or List, discriminated by Kind.
type Expansion struct {
	Kind ExpansionKind
	Var  string

	// Range fields.
	Start     int64
	Stop      int64
	Step      int64
	Inclusive bool

	// List fields.
	Values []string
}

// PayloadKind discriminates the PayloadSpec variants.
type PayloadKind string

const (
	PayloadText       PayloadKind = "text"
	PayloadBytes      PayloadKind = "bytes"
	PayloadFile       PayloadKind = "file"
	PayloadPickleFile PayloadKind = "pickle_file"
	PayloadSequence   PayloadKind = "sequence"
	PayloadJSONFields PayloadKind = "json_fields"
)

// BytesEncoding is the encoding of a PayloadBytes value.
type BytesEncoding string

const (
	EncodingUTF8   BytesEncoding = "utf8"
	EncodingHex    BytesEncoding = "hex"
	EncodingBase64 BytesEncoding = "base64"
)

// SequenceEncoding is the encoding used by PayloadSequence items.
type SequenceEncoding string

const (
	SeqEncodingText SequenceEncoding = "text"
	SeqEncodingJSON SequenceEncoding = "json"
)

// PayloadSpec is one of the six payload builder variants, discriminated by
// Kind. Only the fields relevant to Kind are populated.
type PayloadSpec struct {
	Kind PayloadKind

	// text
	Value string

	// bytes
	BytesEncoding BytesEncoding

	// file / pickle_file
	Path string

	// sequence
	Items          []string
	SeqEncoding    SequenceEncoding
	Loop           bool

	// json_fields
	Fields []FieldSpec
}

// FieldSpec names one field of a json_fields payload.
type FieldSpec struct {
	Name      string
	Generator GeneratorSpec
}

// GeneratorKind discriminates the GeneratorSpec variants.
type GeneratorKind string

const (
	GenConst        GeneratorKind = "const"
	GenBoolToggle   GeneratorKind = "bool_toggle"
	GenNumberWalk   GeneratorKind = "number_walk"
	GenNumberRandom GeneratorKind = "number_random"
	GenChoice       GeneratorKind = "choice"
	GenSequence     GeneratorKind = "sequence"
	GenExpression   GeneratorKind = "expression"
	GenTimestamp    GeneratorKind = "timestamp"
	GenUUID         GeneratorKind = "uuid"
)

// NumericType selects int or float semantics for number_walk/number_random.
type NumericType string

const (
	NumericInt   NumericType = "int"
	NumericFloat NumericType = "float"
)

// TimestampMode selects iso or unix output for the timestamp generator.
type TimestampMode string

const (
	TimestampISO  TimestampMode = "iso"
	TimestampUnix TimestampMode = "unix"
)

// GeneratorSpec is one of the nine generator variants, discriminated by Kind.
type GeneratorSpec struct {
	Kind GeneratorKind

	// const
	ConstValue any

	// bool_toggle
	Start bool

	// number_walk / number_random
	Min         float64
	Max         float64
	Step        float64
	NumericType NumericType
	HasStart    bool
	NumberStart float64
	Precision   *int // number_random float precision; nil = unrounded

	// choice / sequence
	Values []any
	Loop   bool

	// expression
	Expression string

	// timestamp
	TimestampMode TimestampMode
}
