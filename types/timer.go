package types

// ---- Timer service state (retained) ----

type TimerState struct {
	Level   string `json:"level"`  // "idle", "ready", "error", "stopped"
	Status  string `json:"status"` // short machine code
	Backend string `json:"backend,omitempty"`
	Error   string `json:"error,omitempty"`
	TS      int64  `json:"ts_ms"`
}

// ---- Timer service controls ----

type SetTimeout struct {
	Ns   uint64      `json:"ns"`
	Type TimeoutType `json:"type"`
}

type TimerReply struct {
	OK     bool   `json:"ok"`
	TimeNs uint64 `json:"time_ns,omitempty"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type TimerResources struct {
	Backend string       `json:"backend"`
	IRQs    []IRQ        `json:"irqs"`
	Pmems   []PmemRegion `json:"pmems"`
}

// ---- Timer service events ----

type TimerFired struct {
	Seq    uint64 `json:"seq"`
	TimeNs uint64 `json:"time_ns"`
}

type Beat struct {
	Seq    uint64 `json:"seq"`
	TimeNs uint64 `json:"time_ns"`
}
