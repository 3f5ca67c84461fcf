package config

import (
	"context"
	"errors"

	"tempmon-go/bus"
	"tempmon-go/types"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// Topics the service publishes (retained).
var (
	TopicSensors = bus.T(configPrefix, "sensors")
	TopicPoll    = bus.T(configPrefix, "poll")
)

// PollSettings is the payload on TopicPoll.
type PollSettings struct {
	Bus           int
	IntervalMS    int64
	LockTimeoutMS int64 // 0 waits forever
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	cfg  *Config
}

// NewConfigService publishes the embedded config for the device in ctx.
func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// NewStaticService publishes cfg instead of an embedded config.
func NewStaticService(cfg Config) *ConfigService {
	return &ConfigService{Name: serviceName, cfg: &cfg}
}

func (s *ConfigService) resolve(ctx context.Context) (Config, error) {
	if s.cfg != nil {
		return *s.cfg, nil
	}
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return Config{}, errors.New("missing device ID in context")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Config{}, errors.New("no embedded config for device: " + device)
	}
	return Parse(raw)
}

// Publish resolves and validates the config, then publishes it as retained
// messages.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	cfg, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sensors := append([]types.SensorBinding(nil), cfg.Sensors...)
	conn.Publish(conn.NewMessage(TopicSensors, sensors, true))
	conn.Publish(conn.NewMessage(TopicPoll, PollSettings{
		Bus:           cfg.Bus,
		IntervalMS:    cfg.PollInterval.Milliseconds(),
		LockTimeoutMS: cfg.LockTimeout.Milliseconds(),
	}, true))
	return nil
}
