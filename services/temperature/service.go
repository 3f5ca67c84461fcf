package temperature

import (
	"context"
	"io"
	"log/slog"
	"time"

	"tempmon-go/bus"
	"tempmon-go/services/config"
	"tempmon-go/services/report"
	"tempmon-go/types"
	"tempmon-go/x/conv"
	"tempmon-go/x/logx"
	"tempmon-go/x/timex"
)

const topicPrefix = "temperature"

// Topics served by the service.
var (
	// TopicPollNow takes a request; the reply is a Snapshot taken after a
	// fresh poll cycle.
	TopicPollNow = bus.T(topicPrefix, "poll")

	// TopicState carries the service's types.ServiceState (retained).
	TopicState = bus.T(topicPrefix, "state")
)

// TopicValue is where the reading for name is published (retained).
func TopicValue(name string) bus.Topic { return bus.T(topicPrefix, "value", name) }

// TopicInfo carries the types.TemperatureInfo for name (retained).
func TopicInfo(name string) bus.Topic { return bus.T(topicPrefix, "info", name) }

// Service drives a Pool: it polls on a ticker, publishes every reading and
// follows sensor bindings published on the config topics.
type Service struct {
	pool     *Pool
	busNum   int
	interval time.Duration
	console  io.Writer
	log      *slog.Logger

	published map[string]bool
}

type ServiceOption func(*Service)

// WithConsole prints the reading block after every cycle.
func WithConsole(w io.Writer) ServiceOption { return func(s *Service) { s.console = w } }

// WithInterval sets the initial poll interval; config/poll overrides it.
func WithInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBusNumber tags published info with the bus number.
func WithBusNumber(n int) ServiceOption { return func(s *Service) { s.busNum = n } }

func NewService(pool *Pool, opts ...ServiceOption) *Service {
	s := &Service{
		pool:      pool,
		interval:  config.DefaultPollInterval,
		log:       logx.L(),
		published: make(map[string]bool),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Pool returns the pool driven by the service.
func (s *Service) Pool() *Pool { return s.pool }

// ApplyBindings makes the pool match bindings: new names are registered,
// missing ones unregistered, moved ones re-registered at the new address.
func (s *Service) ApplyBindings(bindings []types.SensorBinding) {
	want := make(map[string]uint8, len(bindings))
	for _, b := range bindings {
		want[b.Name] = b.Address
	}
	for _, name := range s.pool.Names() {
		addr, _ := s.pool.Address(name)
		if a, ok := want[name]; !ok || a != addr {
			s.pool.UnregisterSensor(name)
		}
	}
	for _, b := range bindings {
		if s.pool.RegisterSensor(b.Name, b.Address) {
			s.log.Info("sensor registered", "sensor", b.Name, "addr", conv.Hex8(b.Address))
		}
	}
}

// Cycle polls once and publishes the results. Not safe to call while Run is
// active; send a TopicPollNow request instead.
func (s *Service) Cycle(conn *bus.Connection) map[string]types.Temperature {
	s.pool.PollSensors()
	snap := s.pool.Snapshot()
	now := timex.NowMs()

	if conn != nil {
		for name, t := range snap {
			if !s.published[name] {
				addr, _ := s.pool.Address(name)
				conn.Publish(conn.NewMessage(TopicInfo(name), types.TemperatureInfo{
					Sensor: name,
					Addr:   addr,
					Bus:    s.busNum,
				}, true))
				s.published[name] = true
			}
			conn.Publish(conn.NewMessage(TopicValue(name), types.TemperatureValue{
				Name:    name,
				Celsius: t.Value,
				Valid:   t.Valid,
				TS:      now,
			}, true))
		}
		for name := range s.published {
			if _, ok := snap[name]; !ok {
				conn.Publish(conn.NewMessage(TopicValue(name), nil, true))
				conn.Publish(conn.NewMessage(TopicInfo(name), nil, true))
				delete(s.published, name)
			}
		}
	}
	if s.console != nil {
		_ = report.WriteConsole(s.console, s.pool, s.pool.Names())
	}
	return snap
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	sensorsSub := conn.Subscribe(config.TopicSensors)
	defer conn.Unsubscribe(sensorsSub)
	pollCfgSub := conn.Subscribe(config.TopicPoll)
	defer conn.Unsubscribe(pollCfgSub)
	pollNowSub := conn.Subscribe(TopicPollNow)
	defer conn.Unsubscribe(pollNowSub)

	// Retained config is already queued; take it before the first cycle.
	drain(sensorsSub, s.onSensors)
	drain(pollCfgSub, func(m *bus.Message) { s.onPollConfig(m) })

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	s.setState(conn, "ready", "polling")
	s.Cycle(conn)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("temperature service stopping")
			s.setState(conn, "stopped", "ctx_done")
			return
		case <-tick.C:
			s.Cycle(conn)
		case msg := <-sensorsSub.Channel():
			s.onSensors(msg)
		case msg := <-pollCfgSub.Channel():
			if s.onPollConfig(msg) {
				tick.Reset(s.interval)
			}
		case msg := <-pollNowSub.Channel():
			snap := s.Cycle(conn)
			conn.Reply(msg, snap, false)
		}
	}
}

func (s *Service) setState(conn *bus.Connection, level, status string) {
	conn.Publish(conn.NewMessage(TopicState, types.ServiceState{
		Level:  level,
		Status: status,
		TS:     timex.NowMs(),
	}, true))
}

func drain(sub *bus.Subscription, fn func(*bus.Message)) {
	for {
		select {
		case msg := <-sub.Channel():
			fn(msg)
		default:
			return
		}
	}
}

func (s *Service) onSensors(msg *bus.Message) {
	if b, ok := msg.Payload.([]types.SensorBinding); ok {
		s.ApplyBindings(b)
	}
}

func (s *Service) onPollConfig(msg *bus.Message) bool {
	ps, ok := msg.Payload.(config.PollSettings)
	if !ok || ps.IntervalMS <= 0 {
		return false
	}
	d := time.Duration(ps.IntervalMS) * time.Millisecond
	if d == s.interval {
		return false
	}
	s.interval = d
	s.log.Info("poll interval set", "interval", d)
	return true
}
