package sensor

import (
	"context"

	"codeberg.org/mutker/pimon/internal/rate"
)

// Source is the probe set consumed by the stats collector. Probes never
// propagate failures; ok reports whether a value was actually read, and the
// caller substitutes the documented default when it is false.
type Source interface {
	CPUFraction(ctx context.Context) (float64, bool)
	MemoryFraction(ctx context.Context) (float64, bool)
	DiskUsageFraction(ctx context.Context) (float64, bool)
	Uptime(ctx context.Context) (string, bool)
	LoadAverage(ctx context.Context) (string, bool)
	Temperature(ctx context.Context) (float64, bool)
	FanRPM(ctx context.Context) (int, bool)
	CPUFrequency(ctx context.Context) (float64, bool)
	GPUFrequency(ctx context.Context) (int, bool)

	// Counter reads used for throughput sampling. Pair A/B carry
	// read/write bytes for disk and recv/sent bytes for network.
	DiskCounters(ctx context.Context) (rate.Pair, error)
	NetCounters(ctx context.Context) (rate.Pair, error)
}

// ChannelReader reads a single PMIC ADC channel. ok=false means no reading
// could be obtained, which callers must keep distinct from a zero reading.
type ChannelReader interface {
	ReadChannel(ctx context.Context, channel int, unit string) (float64, bool)
}

// Runner executes an external command and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}
