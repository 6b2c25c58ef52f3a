package rate

import (
	"context"
	"time"
)

const bytesPerMB = 1024 * 1024

// Pair holds two related counter values captured at the same instant,
// e.g. disk read/write bytes or network recv/sent bytes.
type Pair struct {
	A uint64
	B uint64
}

// Rate derives a MB/s throughput from two readings of a monotonically
// increasing byte counter. Non-positive elapsed time yields 0 instead of a
// division by zero, and a negative delta (counter wrapped or was reset)
// clamps to 0 so a negative throughput is never reported.
func Rate(before, after uint64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}

	if after < before {
		return 0
	}

	return float64(after-before) / bytesPerMB / secs
}

// SamplePair performs two time-separated reads of a counter pair and returns
// the per-second rate of each counter. The first read completes before the
// interval wait begins, and the second read only starts after it elapses.
func SamplePair(ctx context.Context, interval time.Duration, read func() (Pair, error)) (a, b float64, err error) {
	first, err := read()
	if err != nil {
		return 0, 0, err
	}

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case <-time.After(interval):
	}

	second, err := read()
	if err != nil {
		return 0, 0, err
	}

	return Rate(first.A, second.A, interval), Rate(first.B, second.B, interval), nil
}
