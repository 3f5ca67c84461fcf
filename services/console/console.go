// Package console is a line-oriented diagnostic shell for the monitor. It
// runs over stdin on a host and over a UART on the board.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"tempmon-go/bus"
	"tempmon-go/services/report"
	"tempmon-go/services/temperature"
	"tempmon-go/types"
	"tempmon-go/x/conv"
	"tempmon-go/x/mathx"
)

// Registry is the pool surface the console drives.
type Registry interface {
	RegisterSensor(name string, addr uint8) bool
	UnregisterSensor(name string) bool
	Temperature(name string) types.Temperature
	Address(name string) (uint8, bool)
	Names() []string
}

// Scanner sweeps the bus; *i2cbus.Bus satisfies it.
type Scanner interface {
	Scan(report func(addr uint8)) error
}

var (
	ErrUsage   = errors.New("usage")
	ErrUnknown = errors.New("unknown command")
)

const helpText = `commands:
  list                     registered sensors and readings
  temp <name>              last reading of one sensor
  poll                     run a poll cycle now
  scan                     list devices answering on the bus
  register <name> <addr>   add a sensor (addr: 0x48 or 72)
  unregister <name>        remove a sensor
  help                     this text
`

type Console struct {
	reg         Registry
	scan        Scanner
	conn        *bus.Connection
	out         io.Writer
	pollTimeout time.Duration
}

// New builds a console. conn is used to request poll cycles from a running
// temperature.Service; scan may be nil when no bus handle is shared.
func New(reg Registry, scan Scanner, conn *bus.Connection, out io.Writer) *Console {
	return &Console{reg: reg, scan: scan, conn: conn, out: out, pollTimeout: 2 * time.Second}
}

func (c *Console) println(s string) { _, _ = io.WriteString(c.out, s+"\n") }

// Serve reads commands from r until EOF or ctx ends. Command errors are
// printed and do not stop the loop.
func (c *Console) Serve(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for {
		_, _ = io.WriteString(c.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.Exec(ctx, sc.Text()); err != nil {
			c.println("error: " + err.Error())
		}
	}
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "?":
		_, _ = io.WriteString(c.out, helpText)
		return nil
	case "list", "ls":
		return c.list()
	case "temp":
		if len(args) != 1 {
			return usage("temp <name>")
		}
		c.println(report.Line(args[0], c.reg.Temperature(args[0])))
		return nil
	case "poll":
		return c.poll(ctx)
	case "scan":
		return c.scanBus()
	case "register", "add":
		if len(args) != 2 {
			return usage("register <name> <addr>")
		}
		addr, err := parseAddr(args[1])
		if err != nil {
			return err
		}
		if !c.reg.RegisterSensor(args[0], addr) {
			return errors.New("sensor already registered: " + args[0])
		}
		c.println("registered " + args[0] + " at " + conv.Hex8(addr))
		return nil
	case "unregister", "rm":
		if len(args) != 1 {
			return usage("unregister <name>")
		}
		if !c.reg.UnregisterSensor(args[0]) {
			return errors.New("no such sensor: " + args[0])
		}
		c.println("unregistered " + args[0])
		return nil
	default:
		return errors.Join(ErrUnknown, errors.New(strconv.Quote(cmd)))
	}
}

func usage(s string) error { return errors.Join(ErrUsage, errors.New(s)) }

func parseAddr(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || !mathx.Between(v, 0x01, 0x7F) {
		return 0, errors.New("address must be in 0x01..0x7F: " + s)
	}
	return uint8(v), nil
}

func (c *Console) list() error {
	names := c.reg.Names()
	if len(names) == 0 {
		c.println("no sensors registered")
		return nil
	}
	for _, n := range names {
		addr, _ := c.reg.Address(n)
		c.println(conv.Hex8(addr) + "  " + report.Line(n, c.reg.Temperature(n)))
	}
	return nil
}

func (c *Console) poll(ctx context.Context) error {
	if c.conn == nil {
		return errors.New("poll: not connected")
	}
	rctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()
	reply, err := c.conn.RequestWait(rctx, c.conn.NewMessage(temperature.TopicPollNow, nil, false))
	if err != nil {
		return err
	}
	snap, ok := reply.Payload.(map[string]types.Temperature)
	if !ok {
		return errors.New("poll: unexpected reply")
	}
	names := make([]string, 0, len(snap))
	for n := range snap {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c.println(report.Line(n, snap[n]))
	}
	return nil
}

func (c *Console) scanBus() error {
	if c.scan == nil {
		return errors.New("scan: no bus")
	}
	found := 0
	err := c.scan.Scan(func(addr uint8) {
		found++
		c.println("Found device at addr " + conv.Hex8(addr))
	})
	if err != nil {
		return err
	}
	c.println(strconv.Itoa(found) + " device(s)")
	return nil
}
