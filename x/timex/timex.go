package timex

import (
	"time"

	"ltimer-go/x/freq"
)

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// hz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(hz freq.Hz) uint64 {
	if hz == 0 {
		hz = 1
	}
	return freq.NsPerSecond / hz
}
