// Package heartbeat publishes a periodic liveness record summarising the
// sensor pool.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tempmon-go/bus"
	"tempmon-go/types"
	"tempmon-go/x/logx"
	"tempmon-go/x/timex"
)

var (
	// Topic carries the latest types.Heartbeat (retained).
	Topic = bus.T("heartbeat")

	// TopicConfig takes an interval as time.Duration.
	TopicConfig = bus.T("config", "heartbeat")
)

// Source is the pool view the heartbeat reads.
type Source interface {
	Snapshot() map[string]types.Temperature
}

type Service struct {
	src      Source
	interval time.Duration
	boot     string
	start    time.Time
	log      *slog.Logger
}

func New(src Source, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Service{
		src:      src,
		interval: interval,
		boot:     uuid.NewString(),
		start:    time.Now(),
		log:      logx.L(),
	}
}

// Beat builds the current record.
func (s *Service) Beat() types.Heartbeat {
	snap := s.src.Snapshot()
	valid := 0
	for _, t := range snap {
		if t.Valid {
			valid++
		}
	}
	return types.Heartbeat{
		Boot:     s.boot,
		UptimeMS: timex.SinceMs(s.start),
		Sensors:  len(snap),
		Valid:    valid,
		Link:     types.LinkOf(valid, len(snap)),
		TS:       timex.NowMs(),
	}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(TopicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			s.log.Info("heartbeat service stopping", "boot", s.boot)
			return
		case <-tick.C:
			hb := s.Beat()
			conn.Publish(conn.NewMessage(Topic, hb, true))
			s.log.Debug("heartbeat", "uptime_ms", hb.UptimeMS, "valid", hb.Valid, "sensors", hb.Sensors, "link", hb.Link)
		case msg := <-cfgSub.Channel():
			if d, ok := msg.Payload.(time.Duration); ok && d > 0 && d != s.interval {
				s.interval = d
				tick.Reset(d)
				s.log.Info("heartbeat interval set", "interval", d)
			}
		}
	}
}

// Start runs the heartbeat until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
