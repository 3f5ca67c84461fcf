package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempmon-go/bus"
	"tempmon-go/i2cbus"
	"tempmon-go/services/temperature"
	"tempmon-go/types"
	"tempmon-go/x/logx"
)

type rig struct {
	sim  *i2cbus.Sim
	bus  *i2cbus.Bus
	pool *temperature.Pool
	ps   *bus.Bus
	out  *bytes.Buffer
	con  *Console
}

func newRig(t *testing.T) *rig {
	t.Helper()
	sim := i2cbus.NewSim()
	sim.SetTemperature(0x4A, 25)
	sim.SetTemperature(0x4E, 30.5)

	m := i2cbus.NewManager(i2cbus.SimFactory(map[int]*i2cbus.Sim{1: sim}), i2cbus.WithLogger(logx.Discard()))
	b, err := m.Open(1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	pool := temperature.NewPool(b, temperature.WithLogger(logx.Discard()))
	ps := bus.NewBus(8)
	out := &bytes.Buffer{}
	return &rig{
		sim: sim, bus: b, pool: pool, ps: ps, out: out,
		con: New(pool, b, ps.NewConnection("console"), out),
	}
}

func TestRegisterListUnregister(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	require.NoError(t, r.con.Exec(ctx, `register "Power Unit" 0x4A`))
	require.NoError(t, r.con.Exec(ctx, `add Modem 78`))
	err := r.con.Exec(ctx, `register Modem 0x10`)
	require.Error(t, err)

	r.pool.PollSensors()
	r.out.Reset()
	require.NoError(t, r.con.Exec(ctx, "list"))
	assert.Equal(t, "0x4E  Modem sensor: 30.50 C\n0x4A  Power Unit sensor: 25.00 C\n", r.out.String())

	r.out.Reset()
	require.NoError(t, r.con.Exec(ctx, `temp "Power Unit"`))
	assert.Equal(t, "Power Unit sensor: 25.00 C\n", r.out.String())

	require.NoError(t, r.con.Exec(ctx, "unregister Modem"))
	require.Error(t, r.con.Exec(ctx, "rm Modem"))
	assert.Equal(t, []string{"Power Unit"}, r.pool.Names())
}

func TestBadInput(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	assert.True(t, errors.Is(r.con.Exec(ctx, "frobnicate"), ErrUnknown))
	assert.True(t, errors.Is(r.con.Exec(ctx, "register onlyname"), ErrUsage))
	assert.True(t, errors.Is(r.con.Exec(ctx, "temp"), ErrUsage))
	require.Error(t, r.con.Exec(ctx, "register x 0x80"))
	require.Error(t, r.con.Exec(ctx, "register x 0"))
	require.Error(t, r.con.Exec(ctx, "register x zz"))
	require.Error(t, r.con.Exec(ctx, `temp "unterminated`))
	require.NoError(t, r.con.Exec(ctx, "   "))
}

func TestScan(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.con.Exec(context.Background(), "scan"))
	assert.Equal(t, "Found device at addr 0x4A\nFound device at addr 0x4E\n2 device(s)\n", r.out.String())
}

func TestPollGoesThroughService(t *testing.T) {
	r := newRig(t)
	r.pool.RegisterSensor(types.SensorPowerUnit, 0x4A)
	r.pool.RegisterSensor(types.SensorUpconverter, 0x4D)

	svc := temperature.NewService(r.pool, temperature.WithServiceLogger(logx.Discard()), temperature.WithInterval(time.Hour))
	svcConn := r.ps.NewConnection("temperature")
	ready := r.ps.NewConnection("probe").Subscribe(temperature.TopicValue(types.SensorPowerUnit))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, svcConn)
	<-ready.Channel()

	r.out.Reset()
	require.NoError(t, r.con.Exec(ctx, "poll"))
	assert.Equal(t, "Power Unit sensor: 25.00 C\nUpconverter sensor: no connection\n", r.out.String())
}

func TestPollWithoutServiceTimesOut(t *testing.T) {
	r := newRig(t)
	r.con.pollTimeout = 20 * time.Millisecond
	require.ErrorIs(t, r.con.Exec(context.Background(), "poll"), bus.ErrNoReply)
}

func TestServe(t *testing.T) {
	r := newRig(t)
	in := strings.NewReader("register a 0x4A\nbogus\nhelp\n")
	require.NoError(t, r.con.Serve(context.Background(), in))

	out := r.out.String()
	assert.Contains(t, out, "registered a at 0x4A")
	assert.Contains(t, out, `error: unknown command`)
	assert.Contains(t, out, "commands:")
	assert.Equal(t, []string{"a"}, r.pool.Names())
}
