// config/config_test.go
package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempmon-go/bus"
	"tempmon-go/types"
)

func TestDefaultCarriesFixedBindings(t *testing.T) {
	for _, dev := range []string{"host", "pico", "unknown-device"} {
		c := Default(dev)
		require.NoError(t, c.Validate(), dev)
		assert.Equal(t, types.DefaultSensors, c.Sensors, dev)
		assert.Equal(t, time.Second, c.PollInterval, dev)
	}
	assert.Equal(t, ":8080", Default("host").HTTPAddr)
	assert.Equal(t, 0, Default("pico").Bus)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
bus: 2
poll_interval: 250ms
lock_timeout: 50ms
log: {level: debug, format: json}
sensors:
  - {name: "Inlet", address: 0x48}
  - {name: "Outlet", address: 73}
`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Bus)
	assert.Equal(t, 250*time.Millisecond, c.PollInterval)
	assert.Equal(t, 50*time.Millisecond, c.LockTimeout)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, c.Log)
	assert.Equal(t, []types.SensorBinding{{Name: "Inlet", Address: 0x48}, {Name: "Outlet", Address: 0x49}}, c.Sensors)
	require.NoError(t, c.Validate())
}

func TestParseDefaultsInterval(t *testing.T) {
	c, err := Parse([]byte("bus: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPollInterval, c.PollInterval)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("bus: [unterminated"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus: 3\nsensors: [{name: A, address: 0x10}]\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Bus)
	assert.Len(t, c.Sensors, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Config{
		Bus:          -1,
		PollInterval: -time.Second,
		LockTimeout:  -time.Millisecond,
		Sensors: []types.SensorBinding{
			{Name: "", Address: 0x10},
			{Name: "A", Address: 0x00},
			{Name: "A", Address: 0x80},
		},
	}
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []error{
		ErrInvalidBus, ErrInvalidInterval, ErrInvalidTimeout,
		ErrEmptyName, ErrDuplicateName, ErrInvalidAddress,
	} {
		assert.True(t, errors.Is(err, want), "missing %v in %v", want, err)
	}
}

func TestConfig_PublishEmbedded_Retained(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte("bus: 0\npoll_interval: 2s\nsensors: [{name: Modem, address: 0x4E}]\n"), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	require.NoError(t, svc.Publish(ctx, conn))

	sub := conn.Subscribe(bus.T(configPrefix, "#"))
	got := map[string]any{}
	deadline := time.After(500 * time.Millisecond)
	for len(got) < 2 {
		select {
		case m := <-sub.Channel():
			got[m.Topic[1].(string)] = m.Payload
		case <-deadline:
			t.Fatalf("only got %v", got)
		}
	}
	assert.Equal(t, []types.SensorBinding{{Name: "Modem", Address: 0x4E}}, got["sensors"])
	assert.Equal(t, PollSettings{Bus: 0, IntervalMS: 2000}, got["poll"])
}

func TestConfig_PublishErrors(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test-config")

	err := NewConfigService().Publish(context.Background(), conn)
	require.Error(t, err)

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "nope")
	err = NewConfigService().Publish(ctx, conn)
	require.Error(t, err)

	bad := Default("host")
	bad.Sensors = append(bad.Sensors, types.SensorBinding{Name: "Modem", Address: 0x20})
	err = NewStaticService(bad).Publish(context.Background(), conn)
	require.ErrorIs(t, err, ErrDuplicateName)
}
