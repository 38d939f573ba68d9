package scheduler

import "time"

// Clock returns monotonic milliseconds. The counter may wrap.
type Clock func() uint32

// SystemClock counts milliseconds since t0 using the monotonic reading
// carried by time.Time
func SystemClock(t0 time.Time) Clock {
	return func() uint32 {
		return uint32(time.Since(t0).Milliseconds())
	}
}
