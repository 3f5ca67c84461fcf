package i2cbus

import (
	"context"

	"tempmon-go/x/conv"
)

// Scan probes every address in [MinAddr, MaxAddr] and calls report for each
// one that acknowledges. The bus lock is held for the whole sweep. A nil
// report logs each hit instead.
func (b *Bus) Scan(report func(addr uint8)) error {
	return b.ScanContext(context.Background(), report)
}

// ScanContext is Scan with a bounded wait for the bus lock. The sweep itself
// is not interruptible.
func (b *Bus) ScanContext(ctx context.Context, report func(addr uint8)) error {
	release, err := b.acquire(ctx, "scan")
	if err != nil {
		return err
	}
	defer release()

	if report == nil {
		report = func(addr uint8) {
			b.log.Info("found device", "addr", conv.Hex8(addr))
		}
	}

	p, hasProber := b.tr.(Prober)
	probe := [1]byte{}
	for a := uint16(MinAddr); a <= MaxAddr; a++ {
		var present bool
		if hasProber {
			present = p.Start(a) == nil
			_ = p.Stop()
		} else {
			present = b.tr.Tx(a, probe[:], nil) == nil
		}
		if present {
			report(uint8(a))
		}
	}
	return nil
}
