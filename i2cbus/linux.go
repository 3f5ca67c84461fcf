//go:build linux

package i2cbus

import (
	"strconv"
	"sync"

	"golang.org/x/exp/io/i2c"

	"tempmon-go/x/strx"
)

// LinuxFactory opens /dev/i2c-N character devices.
type LinuxFactory struct {
	// DevPrefix defaults to "/dev/i2c-".
	DevPrefix string
}

func (f LinuxFactory) Init(n int) (Transport, error) {
	prefix := strx.Coalesce(f.DevPrefix, "/dev/i2c-")
	return &linuxBus{
		opener: &i2c.Devfs{Dev: prefix + strconv.Itoa(n)},
		devs:   make(map[uint16]*i2c.Device),
	}, nil
}

// linuxBus keeps one kernel handle per slave address, opened on first use.
// The kernel has no bare start condition, so it does not implement Prober.
type linuxBus struct {
	mu     sync.Mutex
	opener *i2c.Devfs
	devs   map[uint16]*i2c.Device
}

func (l *linuxBus) dev(addr uint16) (*i2c.Device, error) {
	if d, ok := l.devs[addr]; ok {
		return d, nil
	}
	d, err := i2c.Open(l.opener, int(addr))
	if err != nil {
		return nil, err
	}
	l.devs[addr] = d
	return d, nil
}

func (l *linuxBus) Tx(addr uint16, w, r []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := l.dev(addr)
	if err != nil {
		return err
	}
	if len(w) > 0 {
		if err := d.Write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := d.Read(r); err != nil {
			return err
		}
	}
	return nil
}

func (l *linuxBus) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for a, d := range l.devs {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
		delete(l.devs, a)
	}
	return first
}
