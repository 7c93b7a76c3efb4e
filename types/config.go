package types

// Timer configuration supplied on topic "config/timer".

type TimerConfig struct {
	Backend string     `json:"backend"` // "auto", "hpet", "pit", "ttc"
	HPET    HPETParams `json:"hpet,omitempty"`
	PIT     PITParams  `json:"pit,omitempty"`
	TTC     TTCParams  `json:"ttc,omitempty"`
}

type HPETParams struct {
	Base      uint64 `json:"base,omitempty"`   // 0 => firmware tables
	Length    uint64 `json:"length,omitempty"` // 0 => one page
	MSIVector uint32 `json:"msi_vector,omitempty"`
}

type PITParams struct {
	TSCHz uint64 `json:"tsc_hz,omitempty"` // 0 => calibrate at init
}

type TTCParams struct {
	Channel string `json:"channel"` // e.g. "ttc0_timer1"
}

// Heartbeat configuration supplied on topic "config/heartbeat".

type HeartbeatConfig struct {
	IntervalMs uint64 `json:"interval_ms,omitempty"`
	Hz         uint64 `json:"hz,omitempty"` // used when interval_ms is 0
}
