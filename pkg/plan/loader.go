package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	engerrors "github.com/jihwankim/mqtt-sim/pkg/errors"
)

// Load reads, parses, and validates the config file at path, returning an
// immutable Plan. All failures surface as *engerrors.ConfigError.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engerrors.NewConfigError("", "read config file: %v", err)
	}

	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, engerrors.NewConfigError("", "resolve config directory: %v", err)
	}

	return parse(data, absDir)
}

// wireRoot is the strict JSON shape of the root config object.
type wireRoot struct {
	SchemaVersion int               `json:"schema_version"`
	Brokers       []wireBroker      `json:"brokers"`
	Streams       []json.RawMessage `json:"streams"`
}

type wireBroker struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      *int   `json:"port"`
	Keepalive *int   `json:"keepalive"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type wireStream struct {
	Name     string          `json:"name"`
	Broker   string          `json:"broker"`
	Topic    string          `json:"topic"`
	Interval float64         `json:"interval"`
	QoS      *int            `json:"qos"`
	Retain   bool            `json:"retain"`
	Payload  json.RawMessage `json:"payload"`
	Expand   json.RawMessage `json:"expand"`
}

type wireKindOnly struct {
	Kind string `json:"kind"`
}

func parse(data []byte, configDir string) (*Plan, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var root wireRoot
	if err := dec.Decode(&root); err != nil {
		return nil, engerrors.NewConfigError("", "parse config JSON: %v", err)
	}

	if root.SchemaVersion != 1 {
		return nil, engerrors.NewConfigError("schema_version", "must equal 1, got %d", root.SchemaVersion)
	}
	if len(root.Brokers) == 0 {
		return nil, engerrors.NewConfigError("brokers", "must be non-empty")
	}
	if len(root.Streams) == 0 {
		return nil, engerrors.NewConfigError("streams", "must be non-empty")
	}

	brokers := make([]BrokerSpec, 0, len(root.Brokers))
	seenBroker := make(map[string]bool, len(root.Brokers))
	for i, b := range root.Brokers {
		path := fmt.Sprintf("brokers[%d]", i)
		if b.Name == "" {
			return nil, engerrors.NewConfigError(path+".name", "must be non-empty")
		}
		if seenBroker[b.Name] {
			return nil, engerrors.NewConfigError(path+".name", "duplicate broker name %q", b.Name)
		}
		seenBroker[b.Name] = true
		if b.Host == "" {
			return nil, engerrors.NewConfigError(path+".host", "must be non-empty")
		}
		port := 1883
		if b.Port != nil {
			port = *b.Port
		}
		keepalive := 60
		if b.Keepalive != nil {
			keepalive = *b.Keepalive
		}
		brokers = append(brokers, BrokerSpec{
			Name:      b.Name,
			Host:      b.Host,
			Port:      port,
			Keepalive: keepalive,
			ClientID:  b.ClientID,
			Username:  b.Username,
			Password:  b.Password,
		})
	}

	streams := make([]StreamTemplate, 0, len(root.Streams))
	for i, raw := range root.Streams {
		path := fmt.Sprintf("streams[%d]", i)
		st, err := parseStream(raw, path)
		if err != nil {
			return nil, err
		}
		if _, ok := findBroker(brokers, st.Broker); !ok {
			return nil, engerrors.NewConfigError(path+".broker", "references unknown broker %q", st.Broker)
		}
		streams = append(streams, st)
	}

	return &Plan{
		SchemaVersion: root.SchemaVersion,
		Brokers:       brokers,
		Streams:       streams,
		ConfigDir:     configDir,
	}, nil
}

func findBroker(brokers []BrokerSpec, name string) (BrokerSpec, bool) {
	for _, b := range brokers {
		if b.Name == name {
			return b, true
		}
	}
	return BrokerSpec{}, false
}

func parseStream(raw json.RawMessage, path string) (StreamTemplate, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var ws wireStream
	if err := dec.Decode(&ws); err != nil {
		return StreamTemplate{}, engerrors.NewConfigError(path, "decode stream: %v", err)
	}

	if ws.Broker == "" {
		return StreamTemplate{}, engerrors.NewConfigError(path+".broker", "must be non-empty")
	}
	if ws.Topic == "" {
		return StreamTemplate{}, engerrors.NewConfigError(path+".topic", "must be non-empty")
	}
	if ws.Interval <= 0 {
		return StreamTemplate{}, engerrors.NewConfigError(path+".interval", "must be > 0, got %v", ws.Interval)
	}
	qos := 0
	if ws.QoS != nil {
		qos = *ws.QoS
	}
	if qos < 0 || qos > 2 {
		return StreamTemplate{}, engerrors.NewConfigError(path+".qos", "must be 0, 1, or 2, got %d", qos)
	}
	if len(ws.Payload) == 0 {
		return StreamTemplate{}, engerrors.NewConfigError(path+".payload", "is required")
	}
	payload, err := parsePayload(ws.Payload, path+".payload")
	if err != nil {
		return StreamTemplate{}, err
	}

	var expand *Expansion
	if len(ws.Expand) > 0 {
		e, err := parseExpansion(ws.Expand, path+".expand")
		if err != nil {
			return StreamTemplate{}, err
		}
		expand = e
	}

	return StreamTemplate{
		Name:     ws.Name,
		Broker:   ws.Broker,
		Topic:    ws.Topic,
		Interval: ws.Interval,
		QoS:      qos,
		Retain:   ws.Retain,
		Payload:  payload,
		Expand:   expand,
	}, nil
}

func parseExpansion(raw json.RawMessage, path string) (*Expansion, error) {
	var ko wireKindOnly
	if err := json.Unmarshal(raw, &ko); err != nil {
		return nil, engerrors.NewConfigError(path, "decode expansion: %v", err)
	}

	switch ExpansionKind(ko.Kind) {
	case ExpansionRange:
		var w struct {
			Kind      string `json:"kind"`
			Var       string `json:"var"`
			Start     int64  `json:"start"`
			Stop      int64  `json:"stop"`
			Step      *int64 `json:"step"`
			Inclusive *bool  `json:"inclusive"`
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return nil, engerrors.NewConfigError(path, "decode range expansion: %v", err)
		}
		if w.Var == "" {
			return nil, engerrors.NewConfigError(path+".var", "must be non-empty")
		}
		step := int64(1)
		if w.Step != nil {
			step = *w.Step
		}
		if step == 0 {
			return nil, engerrors.NewConfigError(path+".step", "must not be 0")
		}
		inclusive := true
		if w.Inclusive != nil {
			inclusive = *w.Inclusive
		}
		return &Expansion{
			Kind:      ExpansionRange,
			Var:       w.Var,
			Start:     w.Start,
			Stop:      w.Stop,
			Step:      step,
			Inclusive: inclusive,
		}, nil

	case ExpansionList:
		var w struct {
			Kind   string   `json:"kind"`
			Var    string   `json:"var"`
			Values []string `json:"values"`
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return nil, engerrors.NewConfigError(path, "decode list expansion: %v", err)
		}
		if w.Var == "" {
			return nil, engerrors.NewConfigError(path+".var", "must be non-empty")
		}
		if len(w.Values) == 0 {
			return nil, engerrors.NewConfigError(path+".values", "must be non-empty")
		}
		return &Expansion{Kind: ExpansionList, Var: w.Var, Values: w.Values}, nil

	default:
		return nil, engerrors.NewConfigError(path+".kind", "unknown expansion kind %q", ko.Kind)
	}
}

func parsePayload(raw json.RawMessage, path string) (PayloadSpec, error) {
	var ko wireKindOnly
	if err := json.Unmarshal(raw, &ko); err != nil {
		return PayloadSpec{}, engerrors.NewConfigError(path, "decode payload: %v", err)
	}

	switch PayloadKind(ko.Kind) {
	case PayloadText:
		var w struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return PayloadSpec{}, engerrors.NewConfigError(path, "decode text payload: %v", err)
		}
		return PayloadSpec{Kind: PayloadText, Value: w.Value}, nil

	case PayloadBytes:
		var w struct {
			Kind     string `json:"kind"`
			Value    string `json:"value"`
			Encoding string `json:"encoding"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return PayloadSpec{}, engerrors.NewConfigError(path, "decode bytes payload: %v", err)
		}
		enc := BytesEncoding(w.Encoding)
		switch enc {
		case EncodingUTF8, EncodingHex, EncodingBase64:
		default:
			return PayloadSpec{}, engerrors.NewConfigError(path+".encoding", "unknown encoding %q", w.Encoding)
		}
		return PayloadSpec{Kind: PayloadBytes, Value: w.Value, BytesEncoding: enc}, nil

	case PayloadFile:
		var w struct {
			Kind string `json:"kind"`
			Path string `json:"path"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return PayloadSpec{}, engerrors.NewConfigError(path, "decode file payload: %v", err)
		}
		if w.Path == "" {
			return PayloadSpec{}, engerrors.NewConfigError(path+".path", "must be non-empty")
		}
		return PayloadSpec{Kind: PayloadFile, Path: w.Path}, nil

	case PayloadPickleFile:
		var w struct {
			Kind string `json:"kind"`
			Path string `json:"path"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return PayloadSpec{}, engerrors.NewConfigError(path, "decode pickle_file payload: %v", err)
		}
		if w.Path == "" {
			return PayloadSpec{}, engerrors.NewConfigError(path+".path", "must be non-empty")
		}
		return PayloadSpec{Kind: PayloadPickleFile, Path: w.Path}, nil

	case PayloadSequence:
		var w struct {
			Kind     string   `json:"kind"`
			Items    []string `json:"items"`
			Encoding string   `json:"encoding"`
			Loop     bool     `json:"loop"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return PayloadSpec{}, engerrors.NewConfigError(path, "decode sequence payload: %v", err)
		}
		if len(w.Items) == 0 {
			return PayloadSpec{}, engerrors.NewConfigError(path+".items", "must be non-empty")
		}
		enc := SequenceEncoding(w.Encoding)
		switch enc {
		case SeqEncodingText, SeqEncodingJSON:
		default:
			return PayloadSpec{}, engerrors.NewConfigError(path+".encoding", "unknown encoding %q", w.Encoding)
		}
		return PayloadSpec{Kind: PayloadSequence, Items: w.Items, SeqEncoding: enc, Loop: w.Loop}, nil

	case PayloadJSONFields:
		var w struct {
			Kind   string `json:"kind"`
			Fields []struct {
				Name      string          `json:"name"`
				Generator json.RawMessage `json:"generator"`
			} `json:"fields"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return PayloadSpec{}, engerrors.NewConfigError(path, "decode json_fields payload: %v", err)
		}
		if len(w.Fields) == 0 {
			return PayloadSpec{}, engerrors.NewConfigError(path+".fields", "must be non-empty")
		}
		fields := make([]FieldSpec, 0, len(w.Fields))
		for i, f := range w.Fields {
			fp := fmt.Sprintf("%s.fields[%d]", path, i)
			if f.Name == "" {
				return PayloadSpec{}, engerrors.NewConfigError(fp+".name", "must be non-empty")
			}
			gen, err := parseGenerator(f.Generator, fp+".generator")
			if err != nil {
				return PayloadSpec{}, err
			}
			fields = append(fields, FieldSpec{Name: f.Name, Generator: gen})
		}
		return PayloadSpec{Kind: PayloadJSONFields, Fields: fields}, nil

	default:
		return PayloadSpec{}, engerrors.NewConfigError(path+".kind", "unknown payload kind %q", ko.Kind)
	}
}

func parseGenerator(raw json.RawMessage, path string) (GeneratorSpec, error) {
	if len(raw) == 0 {
		return GeneratorSpec{}, engerrors.NewConfigError(path, "is required")
	}
	var ko wireKindOnly
	if err := json.Unmarshal(raw, &ko); err != nil {
		return GeneratorSpec{}, engerrors.NewConfigError(path, "decode generator: %v", err)
	}

	switch GeneratorKind(ko.Kind) {
	case GenConst:
		var w struct {
			Kind  string `json:"kind"`
			Value any    `json:"value"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode const generator: %v", err)
		}
		return GeneratorSpec{Kind: GenConst, ConstValue: w.Value}, nil

	case GenBoolToggle:
		var w struct {
			Kind  string `json:"kind"`
			Start *bool  `json:"start"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode bool_toggle generator: %v", err)
		}
		start := false
		if w.Start != nil {
			start = *w.Start
		}
		return GeneratorSpec{Kind: GenBoolToggle, Start: start}, nil

	case GenNumberWalk:
		var w struct {
			Kind        string   `json:"kind"`
			Min         float64  `json:"min"`
			Max         float64  `json:"max"`
			Step        float64  `json:"step"`
			NumericType string   `json:"numeric_type"`
			Start       *float64 `json:"start"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode number_walk generator: %v", err)
		}
		if w.Min > w.Max {
			return GeneratorSpec{}, engerrors.NewConfigError(path+".min", "must be <= max")
		}
		if w.Step <= 0 {
			return GeneratorSpec{}, engerrors.NewConfigError(path+".step", "must be > 0")
		}
		nt, err := parseNumericType(w.NumericType, path)
		if err != nil {
			return GeneratorSpec{}, err
		}
		spec := GeneratorSpec{Kind: GenNumberWalk, Min: w.Min, Max: w.Max, Step: w.Step, NumericType: nt}
		if w.Start != nil {
			spec.HasStart = true
			spec.NumberStart = *w.Start
		}
		return spec, nil

	case GenNumberRandom:
		var w struct {
			Kind        string `json:"kind"`
			Min         float64 `json:"min"`
			Max         float64 `json:"max"`
			NumericType string  `json:"numeric_type"`
			Precision   *int    `json:"precision"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode number_random generator: %v", err)
		}
		if w.Min > w.Max {
			return GeneratorSpec{}, engerrors.NewConfigError(path+".min", "must be <= max")
		}
		nt, err := parseNumericType(w.NumericType, path)
		if err != nil {
			return GeneratorSpec{}, err
		}
		return GeneratorSpec{Kind: GenNumberRandom, Min: w.Min, Max: w.Max, NumericType: nt, Precision: w.Precision}, nil

	case GenChoice:
		var w struct {
			Kind   string `json:"kind"`
			Values []any  `json:"values"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode choice generator: %v", err)
		}
		if len(w.Values) == 0 {
			return GeneratorSpec{}, engerrors.NewConfigError(path+".values", "must be non-empty")
		}
		return GeneratorSpec{Kind: GenChoice, Values: w.Values}, nil

	case GenSequence:
		var w struct {
			Kind   string `json:"kind"`
			Values []any  `json:"values"`
			Loop   bool   `json:"loop"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode sequence generator: %v", err)
		}
		if len(w.Values) == 0 {
			return GeneratorSpec{}, engerrors.NewConfigError(path+".values", "must be non-empty")
		}
		return GeneratorSpec{Kind: GenSequence, Values: w.Values, Loop: w.Loop}, nil

	case GenExpression:
		var w struct {
			Kind       string `json:"kind"`
			Expression string `json:"expression"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode expression generator: %v", err)
		}
		if w.Expression == "" {
			return GeneratorSpec{}, engerrors.NewConfigError(path+".expression", "must be non-empty")
		}
		return GeneratorSpec{Kind: GenExpression, Expression: w.Expression}, nil

	case GenTimestamp:
		var w struct {
			Kind string `json:"kind"`
			Mode string `json:"mode"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode timestamp generator: %v", err)
		}
		mode := TimestampMode(w.Mode)
		switch mode {
		case TimestampISO, TimestampUnix:
		default:
			return GeneratorSpec{}, engerrors.NewConfigError(path+".mode", "unknown mode %q", w.Mode)
		}
		return GeneratorSpec{Kind: GenTimestamp, TimestampMode: mode}, nil

	case GenUUID:
		var w struct {
			Kind string `json:"kind"`
		}
		if err := strictDecode(raw, &w); err != nil {
			return GeneratorSpec{}, engerrors.NewConfigError(path, "decode uuid generator: %v", err)
		}
		return GeneratorSpec{Kind: GenUUID}, nil

	default:
		return GeneratorSpec{}, engerrors.NewConfigError(path+".kind", "unknown generator kind %q", ko.Kind)
	}
}

func parseNumericType(s, path string) (NumericType, error) {
	nt := NumericType(s)
	switch nt {
	case NumericInt, NumericFloat:
		return nt, nil
	default:
		return "", engerrors.NewConfigError(path+".numeric_type", "unknown numeric_type %q", s)
	}
}

func strictDecode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
