package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "localhost", "port": 1883}],
		"streams": [{
			"broker": "main",
			"topic": "devices/{id}/status",
			"interval": 0.1,
			"payload": {"kind": "text", "value": "hello-{id}"},
			"expand": {"kind": "range", "var": "id", "start": 1, "stop": 3, "step": 1, "inclusive": true}
		}]
	}`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Brokers) != 1 || p.Brokers[0].Name != "main" {
		t.Fatalf("unexpected brokers: %+v", p.Brokers)
	}
	if p.Brokers[0].Port != 1883 || p.Brokers[0].Keepalive != 60 {
		t.Fatalf("unexpected broker defaults: %+v", p.Brokers[0])
	}
	if len(p.Streams) != 1 {
		t.Fatalf("expected 1 stream template, got %d", len(p.Streams))
	}
}

func TestLoadRejectsUnknownRootKey(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "localhost"}],
		"streams": [{"broker":"main","topic":"t","interval":1,"payload":{"kind":"text","value":"x"}}],
		"bogus": true
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown root key")
	}
}

func TestLoadRejectsWrongSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 2,
		"brokers": [{"name": "main", "host": "localhost"}],
		"streams": [{"broker":"main","topic":"t","interval":1,"payload":{"kind":"text","value":"x"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for schema_version != 1")
	}
}

func TestLoadRejectsDuplicateBrokerNames(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "a"}, {"name": "main", "host": "b"}],
		"streams": [{"broker":"main","topic":"t","interval":1,"payload":{"kind":"text","value":"x"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate broker name")
	}
}

func TestLoadRejectsUnknownBrokerReference(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "a"}],
		"streams": [{"broker":"other","topic":"t","interval":1,"payload":{"kind":"text","value":"x"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown broker reference")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "a"}],
		"streams": [{"broker":"main","topic":"t","interval":0,"payload":{"kind":"text","value":"x"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-positive interval")
	}
}

func TestLoadRejectsInvalidQoS(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "a"}],
		"streams": [{"broker":"main","topic":"t","interval":1,"qos":3,"payload":{"kind":"text","value":"x"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid qos")
	}
}

func TestLoadRejectsUnknownPayloadKind(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "a"}],
		"streams": [{"broker":"main","topic":"t","interval":1,"payload":{"kind":"nope"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown payload kind")
	}
}

func TestLoadRejectsEmptyBrokers(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [],
		"streams": [{"broker":"main","topic":"t","interval":1,"payload":{"kind":"text","value":"x"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty brokers")
	}
}

func TestLoadJSONFieldsWithNestedGenerator(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"schema_version": 1,
		"brokers": [{"name": "main", "host": "a"}],
		"streams": [{
			"broker":"main","topic":"t","interval":1,
			"payload": {
				"kind": "json_fields",
				"fields": [
					{"name": "ok", "generator": {"kind": "bool_toggle", "start": true}},
					{"name": "n", "generator": {"kind": "number_walk", "min": 0, "max": 3, "step": 1, "numeric_type": "int"}}
				]
			}
		}]
	}`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := p.Streams[0].Payload.Fields
	if len(fields) != 2 || fields[0].Name != "ok" || fields[1].Name != "n" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields[1].Generator.Min != 0 || fields[1].Generator.Max != 3 {
		t.Fatalf("unexpected number_walk bounds: %+v", fields[1].Generator)
	}
}
