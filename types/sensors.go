package types

// ------------------------
// Fixed sensor bindings
// ------------------------

// Logical sensor names used by the reporting boundary.
const (
	SensorPowerUnit   = "Power Unit"
	SensorModem       = "Modem"
	SensorCrossBoard  = "Cross Board"
	SensorUpconverter = "Upconverter"
)

// SensorBinding ties a logical name to a 7-bit bus address.
type SensorBinding struct {
	Name    string `yaml:"name" json:"name"`
	Address uint8  `yaml:"address" json:"address"`
}

// DefaultSensors are the bindings registered at process start.
var DefaultSensors = []SensorBinding{
	{Name: SensorPowerUnit, Address: 0x4A},
	{Name: SensorModem, Address: 0x4E},
	{Name: SensorCrossBoard, Address: 0x49},
	{Name: SensorUpconverter, Address: 0x4D},
}
