package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw YAML for that device
// -----------------------------------------------------------------------------

const cfgHost = `
bus: 1
poll_interval: 1s
http_addr: ":8080"
log:
  level: info
  format: text
sensors:
  - {name: "Power Unit",  address: 0x4A}
  - {name: "Modem",       address: 0x4E}
  - {name: "Cross Board", address: 0x49}
  - {name: "Upconverter", address: 0x4D}
`

const cfgPico = `
bus: 0
poll_interval: 1s
sensors:
  - {name: "Power Unit",  address: 0x4A}
  - {name: "Modem",       address: 0x4E}
  - {name: "Cross Board", address: 0x49}
  - {name: "Upconverter", address: 0x4D}
`

var embeddedConfigs = map[string][]byte{
	"host": []byte(cfgHost),
	"pico": []byte(cfgPico),
}

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}
