package i2cbus

import (
	"log/slog"
	"sync"

	"tempmon-go/errcode"
	"tempmon-go/x/logx"
)

// Manager tracks which bus numbers have a live *Bus.
type Manager struct {
	mu      sync.Mutex
	open    map[int]*Bus
	factory Factory
	log     *slog.Logger
}

type Option func(*Manager)

// WithLogger sets the logger handed to every bus opened by the manager.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func NewManager(f Factory, opts ...Option) *Manager {
	m := &Manager{
		open:    make(map[int]*Bus),
		factory: f,
		log:     logx.L(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open claims bus n and initialises its transport. Registration and transport
// init happen under one lock, so concurrent Opens of n see exactly one winner.
func (m *Manager) Open(n int) (*Bus, error) {
	if n < 0 {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "open"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.open[n]; busy {
		return nil, &errcode.E{C: errcode.BusInUse, Op: "open"}
	}
	if m.factory == nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "open", Msg: "no transport factory"}
	}
	tr, err := m.factory.Init(n)
	if err != nil {
		if errcode.Of(err) != errcode.Error {
			return nil, err
		}
		return nil, errcode.Wrap(errcode.Transport, "open", err)
	}

	b := newBus(m, n, tr)
	m.open[n] = b
	m.log.Debug("i2c bus opened", "bus", n)
	return b, nil
}

// IsOpen reports whether bus n currently has a live handle.
func (m *Manager) IsOpen(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.open[n]
	return ok
}

// release is called by Bus.Close.
func (m *Manager) release(b *Bus) {
	m.mu.Lock()
	if cur, ok := m.open[b.n]; ok && cur == b {
		delete(m.open, b.n)
	}
	m.mu.Unlock()
	m.log.Debug("i2c bus closed", "bus", b.n)
}
