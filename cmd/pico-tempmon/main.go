//go:build rp2040

// Firmware for the RP2040 board: polls the sensors on i2c0, prints the
// reading block on USB serial and runs the diagnostic console on uart0.
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"tempmon-go/bus"
	"tempmon-go/errcode"
	"tempmon-go/i2cbus"
	"tempmon-go/services/config"
	"tempmon-go/services/console"
	"tempmon-go/services/heartbeat"
	"tempmon-go/services/temperature"
	"tempmon-go/x/logx"
)

// usbOut sends the console block to USB CDC via println.
type usbOut struct{}

func (usbOut) Write(b []byte) (int, error) {
	print(string(b))
	return len(b), nil
}

// uartIn adapts the uartx receive path to io.Reader.
type uartIn struct {
	ctx context.Context
	u   *uartx.UART
}

func (r uartIn) Read(p []byte) (int, error) { return r.u.RecvSomeContext(r.ctx, p) }

func rp2Factory(n int) (i2cbus.Transport, error) {
	var hw *machine.I2C
	var sda, scl machine.Pin
	switch n {
	case 0:
		hw, sda, scl = machine.I2C0, machine.I2C0_SDA_PIN, machine.I2C0_SCL_PIN
	case 1:
		hw, sda, scl = machine.I2C1, machine.I2C1_SDA_PIN, machine.I2C1_SCL_PIN
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "init"}
	}
	if err := hw.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       sda,
		SCL:       scl,
	}); err != nil {
		return nil, err
	}
	return hw, nil
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico")
	cfg := config.Default("pico")
	logx.Setup(logx.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	m := i2cbus.NewManager(i2cbus.FactoryFunc(rp2Factory))
	i2c, err := m.Open(cfg.Bus)
	if err != nil {
		println("[main] i2c open failed:", err.Error())
		return
	}
	println("[main] i2c", cfg.Bus, "open")

	pool := temperature.NewPool(i2c, temperature.WithLockTimeout(cfg.LockTimeout))
	svc := temperature.NewService(pool,
		temperature.WithConsole(usbOut{}),
		temperature.WithInterval(cfg.PollInterval),
		temperature.WithBusNumber(cfg.Bus),
	)

	b := bus.NewBus(4)
	if err := config.NewConfigService().Publish(ctx, b.NewConnection("config")); err != nil {
		println("[main] config:", err.Error())
		return
	}

	_ = heartbeat.New(pool, 10*cfg.PollInterval).Start(ctx, b.NewConnection("heartbeat"))

	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	con := console.New(pool, i2c, b.NewConnection("console"), uartx.UART0)
	go func() {
		if err := con.Serve(ctx, uartIn{ctx: ctx, u: uartx.UART0}); err != nil {
			println("[console] stopped:", err.Error())
		}
	}()

	println("[main] polling")
	svc.Run(ctx, b.NewConnection("temperature"))
}
