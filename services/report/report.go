// Package report renders sensor readings for people and for the web UI.
package report

import (
	"io"

	"tempmon-go/types"
	"tempmon-go/x/conv"
)

// Source answers temperature queries by sensor name.
type Source interface {
	Temperature(name string) types.Temperature
}

// NoConnection is shown on the console for invalid readings.
const NoConnection = "no connection"

// IndexFields maps the JSON keys of the index document to sensor names.
var IndexFields = []struct {
	Key    string
	Sensor string
}{
	{"pu", types.SensorPowerUnit},
	{"m", types.SensorModem},
	{"cb", types.SensorCrossBoard},
	{"uc", types.SensorUpconverter},
}

// Format returns the reading with two decimals, or "" when invalid.
func Format(t types.Temperature) string {
	if !t.Valid {
		return ""
	}
	return conv.Fixed2(t.Value)
}

// Line renders one console line, e.g. "Modem sensor: 25.00 C".
func Line(name string, t types.Temperature) string {
	if !t.Valid {
		return name + " sensor: " + NoConnection
	}
	return name + " sensor: " + conv.Fixed2(t.Value) + " C"
}

// WriteConsole writes one line per name followed by a blank line.
func WriteConsole(w io.Writer, src Source, names []string) error {
	for _, n := range names {
		if _, err := io.WriteString(w, Line(n, src.Temperature(n))+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Index builds the index document: every IndexFields key mapped to the
// formatted reading.
func Index(src Source) map[string]string {
	out := make(map[string]string, len(IndexFields))
	for _, f := range IndexFields {
		out[f.Key] = Format(src.Temperature(f.Sensor))
	}
	return out
}
