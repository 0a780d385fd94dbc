package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime's sizing constants. Load starts from Default()
// and decodes the YAML file over it, so keys absent from the file keep
// Default()'s values; a key present in the file, even with a zero value,
// replaces the default.
type Config struct {
	MailboxCapacity    int        `yaml:"mailbox_capacity"`
	IngressCapacity    int        `yaml:"ingress_capacity"`
	MaxTopics          int        `yaml:"max_topics"`
	MaxActiveObjects   int        `yaml:"max_active_objects"`
	TimerPeriods       []Duration `yaml:"timer_periods"`
	HeartbeatPeriod    Duration   `yaml:"heartbeat_period"`
	ScanPeriod         Duration   `yaml:"scan_period"`
	HeartbeatThreshold Duration   `yaml:"heartbeat_threshold"`
}

// Duration wraps time.Duration with YAML (un)marshaling via its string
// form ("10ms", "200ms") rather than raw nanosecond integers, so config
// files stay human-editable.
type Duration time.Duration

// AsDuration returns d as a standard time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the runtime's built-in configuration constants.
func Default() Config {
	return Config{
		MailboxCapacity:  16,
		IngressCapacity:  128,
		MaxTopics:        32,
		MaxActiveObjects: 32,
		TimerPeriods: []Duration{
			Duration(10 * time.Millisecond),
			Duration(100 * time.Millisecond),
			Duration(200 * time.Millisecond),
		},
		HeartbeatPeriod:    Duration(10 * time.Millisecond),
		ScanPeriod:         Duration(100 * time.Millisecond),
		HeartbeatThreshold: Duration(200 * time.Millisecond),
	}
}

// Load reads a YAML config file; fields the file does not set keep
// Default()'s values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
