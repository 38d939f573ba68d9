package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.NoteBytes()) != 44 {
		t.Errorf("note table has %d entries, want 44", len(cfg.NoteBytes()))
	}
	if ch := cfg.FindChannel(2); ch == nil || ch.PWM != "OCR1A" {
		t.Errorf("FindChannel(2) = %+v", ch)
	}
	if cfg.FindChannel(3) != nil {
		t.Error("FindChannel(3) should be nil")
	}
}

func TestSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Channels = append(cfg.Channels, ChannelConfig{Channel: 3, GatePin: 4, PWM: "OCR1B"})
	cfg.Input = InputConfig{Type: InputMIDI, Port: "Arduino", Baud: 31250}

	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	doc := `
channels:
  - channel: 0
    gatePin: 7
    pwm: OCR2A
  - channel: 1
    gatePin: 8
noteTable: [10, 20, 30]
input:
  type: none
output:
  type: midi
  port: IAC
  midiChannel: 9
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0].GatePin != 7 || cfg.Channels[1].PWM != "" {
		t.Errorf("channels = %+v", cfg.Channels)
	}
	if !reflect.DeepEqual(cfg.NoteBytes(), []uint8{10, 20, 30}) {
		t.Errorf("note table = %v", cfg.NoteTable)
	}
	if cfg.Output.Type != OutputMIDI || cfg.Output.MIDIChannel != 9 {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.TickMillis != 1 {
		t.Errorf("tick default lost: %d", cfg.TickMillis)
	}
}

func TestLoadKeepsDefaultTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"debug": true}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.Debug || len(cfg.Channels) != 1 || len(cfg.NoteTable) != len(CalibratedNotes) {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no channels", func(c *Config) { c.Channels = nil }, "no channels"},
		{"channel range", func(c *Config) { c.Channels[0].Channel = 16 }, "out of range"},
		{"duplicate", func(c *Config) { c.Channels = append(c.Channels, c.Channels[0]) }, "twice"},
		{"empty table", func(c *Config) { c.NoteTable = nil }, "empty"},
		{"table value", func(c *Config) { c.NoteTable[3] = 300 }, "0-255"},
		{"input", func(c *Config) { c.Input.Type = "usb" }, "input type"},
		{"output", func(c *Config) { c.Output.Type = "dac" }, "output type"},
		{"midi channel", func(c *Config) { c.Output.MIDIChannel = 16 }, "midi channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"channels": [{"channel": 20}]}`), 0644)
	if _, err := LoadFile(bad); err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("LoadFile(bad) = %v", err)
	}
}
