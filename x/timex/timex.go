package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// SinceMs returns the milliseconds elapsed since start.
func SinceMs(start time.Time) int64 { return time.Since(start).Milliseconds() }
