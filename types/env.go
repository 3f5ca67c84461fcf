package types

// ------------------------
// Temperature telemetry
// ------------------------

// TemperatureInfo describes where a sensor lives (retained).
type TemperatureInfo struct {
	Sensor string `json:"sensor"`
	Addr   uint8  `json:"addr"`
	Bus    int    `json:"bus"`
}

// TemperatureValue is published after every completed poll of one sensor.
type TemperatureValue struct {
	Name string `json:"name"`
	// Meaningless when Valid is false.
	Celsius float32 `json:"celsius"`
	Valid   bool    `json:"valid"`
	TS      int64   `json:"ts_ms"`
}
