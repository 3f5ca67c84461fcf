package types

// ---- Service state (retained) ----

type ServiceState struct {
	Level  string `json:"level"`  // "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// Link is the bus link as last observed by a poll cycle.
type Link string

const (
	LinkUp       Link = "up"       // every sensor answered
	LinkDegraded Link = "degraded" // some sensors answered
	LinkDown     Link = "down"     // none answered
)

// Heartbeat is published periodically while the monitor runs.
type Heartbeat struct {
	Boot     string `json:"boot"` // changes on every restart
	UptimeMS int64  `json:"uptime_ms"`
	Sensors  int    `json:"sensors"`
	Valid    int    `json:"valid"`
	Link     Link   `json:"link"`
	TS       int64  `json:"ts_ms"`
}

// LinkOf classifies a poll result by how many sensors answered.
func LinkOf(valid, total int) Link {
	switch {
	case total > 0 && valid == total:
		return LinkUp
	case valid > 0:
		return LinkDegraded
	default:
		return LinkDown
	}
}
