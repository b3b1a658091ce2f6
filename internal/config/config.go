// Package config loads the clock settings file.
//
// The file is JSON, which is a subset of YAML, so it is decoded with the
// YAML decoder; hand edited YAML works too. Keys that are missing keep
// their defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwulff/pinclock-go/internal/panel"
)

// Settings is the whole settings file.
type Settings struct {
	Hostname string `yaml:"hostname" json:"hostname"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Timezone is an IANA name; empty means the local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	Panel  Panel          `yaml:"panel" json:"panel"`
	GPIO   panel.GPIOPins `yaml:"gpio" json:"gpio"`
	Delays Delays         `yaml:"delays" json:"delays"`
	Power  Power          `yaml:"power" json:"power"`
	Paths  Paths          `yaml:"paths" json:"paths"`
	Mirror Mirror         `yaml:"mirror" json:"mirror"`
}

// Panel extends the driver config with the start-up test pattern switch.
type Panel struct {
	panel.Config `yaml:",inline"`

	TestPattern  bool `yaml:"test_pattern" json:"test_pattern"`
	TPBrightness int  `yaml:"tp_brightness" json:"tp_brightness"`
}

// Delays are in seconds. Shader may be 0 or negative to keep the first
// background forever.
type Delays struct {
	Animation int `yaml:"ani" json:"ani"`
	Font      int `yaml:"font" json:"font"`
	Color     int `yaml:"color" json:"color"`
	Shader    int `yaml:"shader" json:"shader"`
}

// Power modes.
const (
	PowerFixed    = 0
	PowerAmbient  = 1
	PowerDayNight = 2
)

// Power selects the brightness policy.
type Power struct {
	Mode  int      `yaml:"mode" json:"mode"`
	Day   Schedule `yaml:"day" json:"day"`
	Night Schedule `yaml:"night" json:"night"`
}

// Schedule is a switch time and the brightness that applies from then on.
type Schedule struct {
	Hour       int `yaml:"h" json:"h"`
	Minute     int `yaml:"m" json:"m"`
	Brightness int `yaml:"p" json:"p"`
}

// Minutes returns the switch time as minutes after midnight.
func (s Schedule) Minutes() int { return s.Hour*60 + s.Minute }

// Paths locates the assets and the database.
type Paths struct {
	Animations  string `yaml:"animations" json:"animations"`
	Fonts       string `yaml:"fonts" json:"fonts"`
	ConsoleFont string `yaml:"console_font" json:"console_font"`
	Database    string `yaml:"database" json:"database"`
}

// Mirror forwards the display to a Pixoo-64 on the LAN.
type Mirror struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	// Interval throttles uploads; the device cannot keep up with the panel.
	Interval Duration `yaml:"interval" json:"interval"`
}

// Duration accepts "1.5s" style strings or a number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs float64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Hostname: "pinclock",
		LogLevel: "info",
		Panel: Panel{
			Config:       panel.DefaultConfig(),
			TPBrightness: 10,
		},
		GPIO: panel.DefaultGPIOPins(),
		Delays: Delays{
			Animation: 15,
			Font:      3600,
			Color:     600,
			Shader:    300,
		},
		Power: Power{
			Mode:  PowerFixed,
			Day:   Schedule{Hour: 9, Minute: 0, Brightness: 20},
			Night: Schedule{Hour: 22, Minute: 45, Brightness: 2},
		},
		Paths: Paths{
			Animations:  "animations.img",
			Fonts:       "fnt",
			ConsoleFont: "lemon.fnt",
			Database:    "pinclock.db",
		},
		Mirror: Mirror{
			Interval: Duration(time.Second),
		},
	}
}

// Parse decodes data over the defaults.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.normalize()
	return s, s.Validate()
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return Parse(data)
}

// WriteDefaults creates path with the default settings unless it exists.
// It reports whether the file was written.
func WriteDefaults(path string) (bool, error) {
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create settings: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return false, fmt.Errorf("failed to write settings: %w", err)
	}
	return true, f.Close()
}

// normalize clamps the delays the clock task divides by.
func (s *Settings) normalize() {
	s.Delays.Animation = max(1, s.Delays.Animation)
	s.Delays.Font = max(1, s.Delays.Font)
	s.Delays.Color = max(1, s.Delays.Color)
	s.Panel.TPBrightness = max(0, s.Panel.TPBrightness)
}

// MaxFrameRate keeps the frame period at one millisecond or more.
const MaxFrameRate = 1000

// Validate checks the panel section and the brightness schedule.
func (s Settings) Validate() error {
	if err := s.Panel.Config.Validate(); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	if r := s.Panel.MaxFrameRate; r < 1 || r > MaxFrameRate {
		return fmt.Errorf("panel: max_frame_rate must be 1..%d, got %d", MaxFrameRate, r)
	}
	for name, sch := range map[string]Schedule{"day": s.Power.Day, "night": s.Power.Night} {
		if sch.Hour < 0 || sch.Hour > 23 || sch.Minute < 0 || sch.Minute > 59 {
			return fmt.Errorf("power.%s: invalid time %02d:%02d", name, sch.Hour, sch.Minute)
		}
	}
	if s.Mirror.Enabled && s.Mirror.Address == "" {
		return errors.New("mirror: address required when enabled")
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}
	return nil
}

// Location returns the configured time zone.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// OverrideKeys lists the settings that Set accepts.
var OverrideKeys = []string{
	"hostname", "log_level", "timezone",
	"delays.ani", "delays.font", "delays.color", "delays.shader",
	"power.mode", "power.day.h", "power.day.m", "power.day.p",
	"power.night.h", "power.night.m", "power.night.p",
	"panel.max_frame_rate", "panel.test_pattern",
}

// Set changes one setting by its dotted key, as stored in the database
// overrides table. The result is normalized and validated.
func (s *Settings) Set(key, value string) error {
	next := *s
	var err error
	switch key {
	case "hostname":
		next.Hostname = value
	case "log_level":
		next.LogLevel = value
	case "timezone":
		next.Timezone = value
	case "delays.ani":
		next.Delays.Animation, err = strconv.Atoi(value)
	case "delays.font":
		next.Delays.Font, err = strconv.Atoi(value)
	case "delays.color":
		next.Delays.Color, err = strconv.Atoi(value)
	case "delays.shader":
		next.Delays.Shader, err = strconv.Atoi(value)
	case "power.mode":
		next.Power.Mode, err = strconv.Atoi(value)
	case "power.day.h":
		next.Power.Day.Hour, err = strconv.Atoi(value)
	case "power.day.m":
		next.Power.Day.Minute, err = strconv.Atoi(value)
	case "power.day.p":
		next.Power.Day.Brightness, err = strconv.Atoi(value)
	case "power.night.h":
		next.Power.Night.Hour, err = strconv.Atoi(value)
	case "power.night.m":
		next.Power.Night.Minute, err = strconv.Atoi(value)
	case "power.night.p":
		next.Power.Night.Brightness, err = strconv.Atoi(value)
	case "panel.max_frame_rate":
		next.Panel.MaxFrameRate, err = strconv.Atoi(value)
	case "panel.test_pattern":
		next.Panel.TestPattern, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	next.normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}
