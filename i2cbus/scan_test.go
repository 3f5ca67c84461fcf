package i2cbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempmon-go/errcode"
)

// txOnly hides Sim's Prober implementation.
type txOnly struct{ s *Sim }

func (t txOnly) Tx(addr uint16, w, r []byte) error { return t.s.Tx(addr, w, r) }

// startStopCounter records probe bracketing.
type startStopCounter struct {
	*Sim
	mu     sync.Mutex
	starts int
	stops  int
}

func (c *startStopCounter) Start(addr uint16) error {
	c.mu.Lock()
	c.starts++
	c.mu.Unlock()
	return c.Sim.Start(addr)
}

func (c *startStopCounter) Stop() error {
	c.mu.Lock()
	c.stops++
	c.mu.Unlock()
	return c.Sim.Stop()
}

func TestScanReportsAcknowledgingAddresses(t *testing.T) {
	sim := NewSim()
	for _, a := range []uint8{0x49, 0x4A, 0x4D, 0x4E} {
		sim.SetTemperature(a, 30)
	}
	sim.SetTemperature(0x4D, 30)
	sim.Fail(0x4D, errors.New("stuck"))

	counter := &startStopCounter{Sim: sim}
	m := NewManager(FactoryFunc(func(int) (Transport, error) { return counter, nil }))
	b, err := m.Open(1)
	require.NoError(t, err)
	defer b.Close()

	var found []uint8
	require.NoError(t, b.Scan(func(a uint8) { found = append(found, a) }))

	assert.Equal(t, []uint8{0x49, 0x4A, 0x4E}, found)
	assert.Equal(t, 127, counter.starts)
	assert.Equal(t, 127, counter.stops)
}

func TestScanFallsBackToWriteProbe(t *testing.T) {
	sim := NewSim()
	sim.SetTemperature(0x01, 10)
	sim.SetTemperature(0x7F, 10)

	m := NewManager(FactoryFunc(func(int) (Transport, error) { return txOnly{sim}, nil }))
	b, err := m.Open(1)
	require.NoError(t, err)
	defer b.Close()

	var found []uint8
	require.NoError(t, b.Scan(func(a uint8) { found = append(found, a) }))
	assert.Equal(t, []uint8{0x01, 0x7F}, found)
	assert.Equal(t, 127, sim.TxCount())
	assert.Equal(t, [][]byte{{0x00}}, sim.Writes(0x01))
}

func TestScanHoldsBusForWholeSweep(t *testing.T) {
	sim := NewSim()
	sim.Delay = 100 * time.Microsecond
	sim.SetTemperature(0x4A, 30)

	m := NewManager(FactoryFunc(func(int) (Transport, error) { return txOnly{sim}, nil }))
	b, err := m.Open(1)
	require.NoError(t, err)
	defer b.Close()

	scanning := make(chan struct{})
	scanDone := make(chan error, 1)
	go func() {
		scanDone <- b.Scan(func(uint8) { close(scanning) })
	}()

	<-scanning
	_, err = b.Receive(0x4A, 2)
	require.NoError(t, err)

	// The read could only run once all 127 probes had finished.
	assert.Equal(t, 128, sim.TxCount())
	require.NoError(t, <-scanDone)
	assert.Equal(t, 1, sim.MaxInFlight())
}

func TestScanContextTimesOutWaitingForBus(t *testing.T) {
	m := NewManager(SimFactory(map[int]*Sim{1: NewSim()}))
	b, err := m.Open(1)
	require.NoError(t, err)
	defer b.Close()

	release, err := b.acquire(context.Background(), "test")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err = b.ScanContext(ctx, nil)
	assert.Equal(t, errcode.Timeout, errcode.Of(err))
}
