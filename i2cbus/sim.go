package i2cbus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tempmon-go/drivers/tempsense"
	"tempmon-go/errcode"
)

// ErrNack is returned by Sim for addresses with no attached device.
var ErrNack = errors.New("i2c: nack")

// Sim is an in-memory bus for host runs and tests. Devices are canned
// replies keyed by address. Sim implements Prober.
type Sim struct {
	mu      sync.Mutex
	replies map[uint16][]byte
	fails   map[uint16]error
	writes  map[uint16][][]byte
	txCount int

	// Delay stretches every transfer, which makes overlap observable.
	Delay time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func NewSim() *Sim {
	return &Sim{
		replies: make(map[uint16][]byte),
		fails:   make(map[uint16]error),
		writes:  make(map[uint16][][]byte),
	}
}

// SetReply attaches a device at addr that answers reads with reply.
func (s *Sim) SetReply(addr uint8, reply ...byte) {
	s.mu.Lock()
	s.replies[uint16(addr)] = append([]byte(nil), reply...)
	delete(s.fails, uint16(addr))
	s.mu.Unlock()
}

// SetTemperature attaches a temperature sensor reporting c at addr.
func (s *Sim) SetTemperature(addr uint8, c float32) {
	b0, b1 := tempsense.Encode(c)
	s.SetReply(addr, b0, b1)
}

// Fail makes every transfer to addr return err. A nil err clears the fault.
func (s *Sim) Fail(addr uint8, err error) {
	s.mu.Lock()
	if err == nil {
		delete(s.fails, uint16(addr))
	} else {
		s.fails[uint16(addr)] = err
	}
	s.mu.Unlock()
}

// Detach removes the device at addr.
func (s *Sim) Detach(addr uint8) {
	s.mu.Lock()
	delete(s.replies, uint16(addr))
	delete(s.fails, uint16(addr))
	s.mu.Unlock()
}

// Writes returns a copy of every buffer written to addr.
func (s *Sim) Writes(addr uint8) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.writes[uint16(addr)]...)
}

// TxCount returns the number of Tx calls seen.
func (s *Sim) TxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

// MaxInFlight returns the highest number of overlapping transfers observed.
func (s *Sim) MaxInFlight() int { return int(s.maxInFlight.Load()) }

func (s *Sim) enter() {
	n := s.inFlight.Add(1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
}

func (s *Sim) leave() { s.inFlight.Add(-1) }

func (s *Sim) Tx(addr uint16, w, r []byte) error {
	s.enter()
	defer s.leave()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	if err := s.fails[addr]; err != nil {
		return err
	}
	reply, ok := s.replies[addr]
	if !ok {
		return ErrNack
	}
	if len(w) > 0 {
		s.writes[addr] = append(s.writes[addr], append([]byte(nil), w...))
	}
	if len(r) > 0 {
		n := copy(r, reply)
		clear(r[n:])
	}
	return nil
}

func (s *Sim) Start(addr uint16) error {
	s.enter()
	defer s.leave()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails[addr] != nil {
		return errcode.Timeout
	}
	if _, ok := s.replies[addr]; !ok {
		return errcode.Timeout
	}
	return nil
}

func (s *Sim) Stop() error { return nil }

// SimFactory serves the given simulated buses by number.
func SimFactory(buses map[int]*Sim) Factory {
	return FactoryFunc(func(n int) (Transport, error) {
		s, ok := buses[n]
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownBus, Op: "init"}
		}
		return s, nil
	})
}
