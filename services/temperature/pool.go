// Package temperature keeps the last known reading of every named sensor on
// a shared bus.
package temperature

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"tempmon-go/drivers/tempsense"
	"tempmon-go/types"
	"tempmon-go/x/conv"
	"tempmon-go/x/logx"
)

// Receiver is the part of an I²C bus the pool reads through. *i2cbus.Bus
// satisfies it.
type Receiver interface {
	Receive(addr uint8, n int) ([]byte, error)
}

// ContextReceiver is used instead of Receiver when a lock timeout is set.
type ContextReceiver interface {
	ReceiveContext(ctx context.Context, addr uint8, n int) ([]byte, error)
}

type sensorEntry struct {
	addr uint8
	last types.Temperature
}

// Pool is a registry of named sensors and their last readings. It never owns
// or closes the bus it reads from. Safe for concurrent use.
type Pool struct {
	rx          Receiver
	log         *slog.Logger
	lockTimeout time.Duration

	mu      sync.RWMutex
	sensors map[string]*sensorEntry
}

type Option func(*Pool)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// WithLockTimeout bounds how long one read waits for the bus. Zero waits
// forever. Needs a ContextReceiver.
func WithLockTimeout(d time.Duration) Option {
	return func(p *Pool) { p.lockTimeout = d }
}

func NewPool(rx Receiver, opts ...Option) *Pool {
	p := &Pool{
		rx:      rx,
		log:     logx.L(),
		sensors: make(map[string]*sensorEntry),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// RegisterSensor adds name at addr with an invalid reading. It returns false,
// leaving the pool untouched, if name is already registered. The address is
// not probed.
func (p *Pool) RegisterSensor(name string, addr uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sensors[name]; ok {
		return false
	}
	p.sensors[name] = &sensorEntry{addr: addr}
	return true
}

// UnregisterSensor removes name and reports whether it was present.
func (p *Pool) UnregisterSensor(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sensors[name]; !ok {
		return false
	}
	delete(p.sensors, name)
	return true
}

type pollTarget struct {
	name  string
	entry *sensorEntry
	addr  uint8
}

// PollSensors reads every registered sensor once. A failed read stores an
// invalid reading for that sensor only; the rest of the cycle carries on.
// Enumeration order is unspecified.
func (p *Pool) PollSensors() {
	p.mu.RLock()
	targets := make([]pollTarget, 0, len(p.sensors))
	for name, e := range p.sensors {
		targets = append(targets, pollTarget{name: name, entry: e, addr: e.addr})
	}
	p.mu.RUnlock()

	// Bus I/O runs without the registry lock; results are committed one by
	// one so readers only ever see completed polls.
	for _, t := range targets {
		reading := p.read(t.name, t.addr)

		p.mu.Lock()
		if cur, ok := p.sensors[t.name]; ok && cur == t.entry {
			cur.last = reading
		}
		p.mu.Unlock()
	}
}

func (p *Pool) read(name string, addr uint8) types.Temperature {
	buf, err := p.receive(addr)
	if err != nil {
		p.log.Debug("sensor read failed", "sensor", name, "addr", conv.Hex8(addr), "err", err)
		return types.Invalid[float32]()
	}
	c, err := tempsense.DecodeBytes(buf)
	if err != nil {
		p.log.Debug("sensor decode failed", "sensor", name, "addr", conv.Hex8(addr), "err", err)
		return types.Invalid[float32]()
	}
	return types.Valid(c)
}

func (p *Pool) receive(addr uint8) ([]byte, error) {
	if cr, ok := p.rx.(ContextReceiver); ok && p.lockTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), p.lockTimeout)
		defer cancel()
		return cr.ReceiveContext(ctx, addr, tempsense.ReadLen)
	}
	return p.rx.Receive(addr, tempsense.ReadLen)
}

// Temperature returns the last completed reading for name. Unknown names and
// never-read sensors are both invalid.
func (p *Pool) Temperature(name string) types.Temperature {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e, ok := p.sensors[name]; ok {
		return e.last
	}
	return types.Invalid[float32]()
}

// Address returns the bus address registered for name.
func (p *Pool) Address(name string) (uint8, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.sensors[name]
	if !ok {
		return 0, false
	}
	return e.addr, true
}

// Names returns the registered names, sorted.
func (p *Pool) Names() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.sensors))
	for name := range p.sensors {
		out = append(out, name)
	}
	p.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Snapshot copies every current reading.
func (p *Pool) Snapshot() map[string]types.Temperature {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]types.Temperature, len(p.sensors))
	for name, e := range p.sensors {
		out[name] = e.last
	}
	return out
}
