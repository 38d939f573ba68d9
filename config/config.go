package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// InputType selects where command bytes come from
type InputType string

const (
	InputSerial InputType = "serial"
	InputMIDI   InputType = "midi"
	InputNone   InputType = "none"
)

// OutputType selects what the channel routes drive
type OutputType string

const (
	OutputSim  OutputType = "sim"
	OutputMIDI OutputType = "midi"
)

// ChannelConfig routes one protocol channel to its outputs
type ChannelConfig struct {
	Channel uint8  `json:"channel" yaml:"channel"`
	GatePin uint8  `json:"gatePin" yaml:"gatePin"`
	PWM     string `json:"pwm,omitempty" yaml:"pwm,omitempty"` // register name

	// MIDI output routing
	MIDIKey uint8 `json:"midiKey,omitempty" yaml:"midiKey,omitempty"`
	MIDICC  uint8 `json:"midiCC,omitempty" yaml:"midiCC,omitempty"`
}

// InputConfig defines the command source
type InputConfig struct {
	Type InputType `json:"type" yaml:"type"`
	Port string    `json:"port,omitempty" yaml:"port,omitempty"` // device path or MIDI port name
	Baud int       `json:"baud,omitempty" yaml:"baud,omitempty"`
}

// OutputConfig defines what routes write to
type OutputConfig struct {
	Type        OutputType `json:"type" yaml:"type"`
	Port        string     `json:"port,omitempty" yaml:"port,omitempty"`
	MIDIChannel uint8      `json:"midiChannel,omitempty" yaml:"midiChannel,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty" yaml:"palette,omitempty"` // GIMP .gpl file
}

// Config is the main configuration structure
type Config struct {
	Channels   []ChannelConfig `json:"channels" yaml:"channels"`
	NoteTable  []int           `json:"noteTable" yaml:"noteTable"`
	Input      InputConfig     `json:"input" yaml:"input"`
	Output     OutputConfig    `json:"output" yaml:"output"`
	TickMillis int             `json:"tickMillis,omitempty" yaml:"tickMillis,omitempty"`
	Debug      bool            `json:"debug,omitempty" yaml:"debug,omitempty"`
	DebugLog   string          `json:"debugLog,omitempty" yaml:"debugLog,omitempty"`
	UI         UIConfig        `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// CalibratedNotes maps note index to OCR1A duty for the reference board
var CalibratedNotes = []int{
	//  C    C#   D    D#   E    F    F#   G    G#   A    A#   B
	0, 5, 9, 14, 18, 23, 28, 33, 37, 42, 46, 51,
	56, 61, 65, 70, 74, 79, 83, 88, 93, 98, 102, 107,
	112, 117, 121, 126, 130, 135, 139, 144, 149, 154, 158, 163,
	168, 167, 172, 177, 181, 186, 190, 197,
}

// DefaultConfig matches the reference board: one channel on pin 2
// driving OCR1A, commands over serial at MIDI baud
func DefaultConfig() *Config {
	return &Config{
		Channels: []ChannelConfig{
			{
				Channel: 2,
				GatePin: 2,
				PWM:     "OCR1A",
				MIDIKey: 60,
				MIDICC:  1,
			},
		},
		NoteTable: append([]int(nil), CalibratedNotes...),
		Input: InputConfig{
			Type: InputSerial,
			Baud: 31250,
		},
		Output: OutputConfig{
			Type: OutputSim,
		},
		TickMillis: 1,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "notegate"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	cfg, err := LoadFile(path)
	if os.IsNotExist(errors.Cause(err)) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFile reads a JSON or YAML (by extension) config. Fields missing
// from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	// lists replace rather than merge
	cfg.Channels = nil
	cfg.NoteTable = nil

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Base(path))
	}

	if cfg.Channels == nil {
		cfg.Channels = DefaultConfig().Channels
	}
	if cfg.NoteTable == nil {
		cfg.NoteTable = append([]int(nil), CalibratedNotes...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", filepath.Base(path))
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as JSON or YAML (by extension)
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Validate checks the channel table and note table
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return errors.New("no channels configured")
	}
	seen := make(map[uint8]bool)
	for _, ch := range c.Channels {
		if ch.Channel > 15 {
			return errors.Errorf("channel %d out of range 0-15", ch.Channel)
		}
		if seen[ch.Channel] {
			return errors.Errorf("channel %d configured twice", ch.Channel)
		}
		seen[ch.Channel] = true
	}

	if len(c.NoteTable) == 0 {
		return errors.New("note table is empty")
	}
	for i, v := range c.NoteTable {
		if v < 0 || v > 255 {
			return errors.Errorf("note table entry %d = %d, want 0-255", i, v)
		}
	}

	switch c.Input.Type {
	case InputSerial, InputMIDI, InputNone:
	default:
		return errors.Errorf("unknown input type %q", c.Input.Type)
	}
	switch c.Output.Type {
	case OutputSim, OutputMIDI:
	default:
		return errors.Errorf("unknown output type %q", c.Output.Type)
	}
	if c.Output.MIDIChannel > 15 {
		return errors.Errorf("midi channel %d out of range 0-15", c.Output.MIDIChannel)
	}
	return nil
}

// NoteBytes returns the note table as duty values
func (c *Config) NoteBytes() []uint8 {
	table := make([]uint8, len(c.NoteTable))
	for i, v := range c.NoteTable {
		table[i] = uint8(v)
	}
	return table
}

// FindChannel finds a channel config by protocol id
func (c *Config) FindChannel(id uint8) *ChannelConfig {
	for i := range c.Channels {
		if c.Channels[i].Channel == id {
			return &c.Channels[i]
		}
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
