package config

// Embedded configuration, keyed by device ID (the value placed in ctx under
// CtxDeviceKey).

const cfgPC = `{
  "timer": {
    "backend": "auto"
  },
  "heartbeat": {
    "interval_ms": 1000
  }
}`

const cfgZynq = `{
  "timer": {
    "backend": "ttc",
    "ttc": {"channel": "ttc0_timer1"}
  },
  "heartbeat": {
    "hz": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pc":   []byte(cfgPC),
	"zynq": []byte(cfgZynq),
}
