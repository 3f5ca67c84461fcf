// Package config loads the monitor configuration and publishes it on the bus.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tempmon-go/types"
	"tempmon-go/x/mathx"
)

// Config is the whole monitor configuration.
type Config struct {
	Bus          int                   `yaml:"bus"`
	PollInterval time.Duration         `yaml:"poll_interval"`
	LockTimeout  time.Duration         `yaml:"lock_timeout"` // 0 waits forever
	HTTPAddr     string                `yaml:"http_addr"`
	Log          LogConfig             `yaml:"log"`
	Sensors      []types.SensorBinding `yaml:"sensors"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const DefaultPollInterval = time.Second

var (
	ErrInvalidBus      = errors.New("invalid_bus")
	ErrInvalidInterval = errors.New("invalid_poll_interval")
	ErrInvalidTimeout  = errors.New("invalid_lock_timeout")
	ErrInvalidAddress  = errors.New("invalid_address")
	ErrEmptyName       = errors.New("empty_sensor_name")
	ErrDuplicateName   = errors.New("duplicate_sensor_name")
)

// Parse decodes YAML and fills defaults. It does not validate.
func Parse(raw []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(raw)
}

// Default returns the embedded configuration for device, falling back to
// the host profile.
func Default(device string) Config {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok {
		raw = []byte(cfgHost)
	}
	c, err := Parse(raw)
	if err != nil {
		panic("config: embedded config does not parse: " + err.Error())
	}
	return c
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Bus < 0 {
		errs = append(errs, fmt.Errorf("bus %d: %w", c.Bus, ErrInvalidBus))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval %s: %w", c.PollInterval, ErrInvalidInterval))
	}
	if c.LockTimeout < 0 {
		errs = append(errs, fmt.Errorf("lock_timeout %s: %w", c.LockTimeout, ErrInvalidTimeout))
	}
	seen := make(map[string]bool, len(c.Sensors))
	for i, s := range c.Sensors {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("sensors[%d]: %w", i, ErrEmptyName))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("sensor %q: %w", s.Name, ErrDuplicateName))
		}
		seen[s.Name] = true
		if !mathx.Between(s.Address, 0x01, 0x7F) {
			errs = append(errs, fmt.Errorf("sensor %q address 0x%02X: %w", s.Name, s.Address, ErrInvalidAddress))
		}
	}
	return errors.Join(errs...)
}
