package i2cbus

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"tempmon-go/errcode"
	"tempmon-go/x/conv"
)

// Bus is the exclusive handle to one opened bus number.
type Bus struct {
	n   int
	tr  Transport
	m   *Manager
	log *slog.Logger

	// sem is a one-slot semaphore; holding the slot means owning the wire.
	sem    chan struct{}
	closed atomic.Bool
}

func newBus(m *Manager, n int, tr Transport) *Bus {
	return &Bus{
		n:   n,
		tr:  tr,
		m:   m,
		log: m.log.With("bus", n),
		sem: make(chan struct{}, 1),
	}
}

// Number returns the bus number this handle owns.
func (b *Bus) Number() int { return b.n }

// acquire takes the bus lock. A context that is never done waits forever;
// otherwise the wait ends with errcode.Timeout when ctx does. The returned
// release must be called exactly once.
func (b *Bus) acquire(ctx context.Context, op string) (release func(), err error) {
	if b.closed.Load() {
		return nil, &errcode.E{C: errcode.Closed, Op: op}
	}
	if ctx.Done() == nil {
		b.sem <- struct{}{}
	} else {
		select {
		case b.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, errcode.Wrap(errcode.Timeout, op, ctx.Err())
		}
	}
	// Close may have won the race while we waited.
	if b.closed.Load() {
		<-b.sem
		return nil, &errcode.E{C: errcode.Closed, Op: op}
	}
	return func() { <-b.sem }, nil
}

// Send writes buf to the device at addr.
func (b *Bus) Send(addr uint8, buf []byte) error {
	return b.SendContext(context.Background(), addr, buf)
}

// SendContext is Send with a bounded wait for the bus lock. ctx does not
// cancel the transfer once it has started.
func (b *Bus) SendContext(ctx context.Context, addr uint8, buf []byte) error {
	const op = "send"
	if !validAddr(addr) {
		return &errcode.E{C: errcode.InvalidAddress, Op: op, Msg: conv.Hex8(addr)}
	}
	if len(buf) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "empty buffer"}
	}

	release, err := b.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()

	if err := b.tr.Tx(uint16(addr), buf, nil); err != nil {
		return &errcode.E{C: errcode.Transport, Op: op, Msg: conv.Hex8(addr), Err: err}
	}
	return nil
}

// Receive reads exactly n bytes from the device at addr.
func (b *Bus) Receive(addr uint8, n int) ([]byte, error) {
	return b.ReceiveContext(context.Background(), addr, n)
}

// ReceiveContext is Receive with a bounded wait for the bus lock.
func (b *Bus) ReceiveContext(ctx context.Context, addr uint8, n int) ([]byte, error) {
	const op = "receive"
	if !validAddr(addr) {
		return nil, &errcode.E{C: errcode.InvalidAddress, Op: op, Msg: conv.Hex8(addr)}
	}
	if n <= 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "count must be positive"}
	}
	buf := make([]byte, n)

	release, err := b.acquire(ctx, op)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := b.tr.Tx(uint16(addr), nil, buf); err != nil {
		return nil, &errcode.E{C: errcode.Transport, Op: op, Msg: conv.Hex8(addr), Err: err}
	}
	return buf, nil
}

// Close releases the bus number back to the manager. It waits for any
// in-flight transfer and is safe to call more than once.
func (b *Bus) Close() error {
	release, err := b.acquire(context.Background(), "close")
	if err != nil {
		if errcode.Of(err) == errcode.Closed {
			return nil
		}
		return err
	}
	if !b.closed.CompareAndSwap(false, true) {
		release()
		return nil
	}
	var cerr error
	if c, ok := b.tr.(io.Closer); ok {
		cerr = c.Close()
	}
	b.m.release(b)
	release()
	return cerr
}
