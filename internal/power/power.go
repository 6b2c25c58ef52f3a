package power

import (
	"context"
	"math"
	"sync"

	"codeberg.org/mutker/pimon/internal/sensor"
)

// Rail describes one board power supply line and the PMIC ADC channels that
// sense it.
type Rail struct {
	Name           string
	CurrentChannel int
	VoltageChannel int
}

// DefaultRails is the fixed rail table of the board. Output order follows
// table order.
func DefaultRails() []Rail {
	return []Rail{
		{"3V7_WL_SW", 0, 8},
		{"3V3_SYS", 1, 9},
		{"1V8_SYS", 2, 10},
		{"DDR_VDD2", 3, 11},
		{"DDR_VDDQ", 4, 12},
		{"1V1_SYS", 5, 13},
		{"0V8_SW", 6, 14},
		{"VDD_CORE", 7, 15},
		{"0V8_AON", 16, 19},
		{"3V3_DAC", 17, 20},
		{"3V3_ADC", 18, 21},
		{"HDMI", 22, 23},
	}
}

// Reading is one rail's result. A rail appears only when both its channel
// reads succeeded; a zero current is a valid reading, not an absent one.
type Reading struct {
	Rail    string  `json:"rail"`
	Voltage float64 `json:"voltage"`
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
}

// Snapshot carries the per-rail readings in rail table order and the total
// power over the rails that could be read.
type Snapshot struct {
	TotalPower float64   `json:"total_power"`
	Readings   []Reading `json:"readings"`
}

// Aggregator sweeps every rail's current and voltage channels. Snapshots are
// always taken fresh; the per-rail probe sweep is not cached.
type Aggregator struct {
	reader sensor.ChannelReader
	rails  []Rail
}

func NewAggregator(reader sensor.ChannelReader, rails []Rail) *Aggregator {
	return &Aggregator{reader: reader, rails: rails}
}

// Snapshot reads all channels concurrently and assembles the rail readings.
// Individual channel failures drop the affected rail; an all-failed sweep is
// a valid empty snapshot.
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	type railProbe struct {
		current   float64
		voltage   float64
		currentOK bool
		voltageOK bool
	}

	probes := make([]railProbe, len(a.rails))

	var wg sync.WaitGroup
	for i, rail := range a.rails {
		wg.Add(2)
		go func(i, channel int) {
			defer wg.Done()
			probes[i].current, probes[i].currentOK = a.reader.ReadChannel(ctx, channel, "A")
		}(i, rail.CurrentChannel)
		go func(i, channel int) {
			defer wg.Done()
			probes[i].voltage, probes[i].voltageOK = a.reader.ReadChannel(ctx, channel, "V")
		}(i, rail.VoltageChannel)
	}
	wg.Wait()

	readings := make([]Reading, 0, len(a.rails))
	total := 0.0
	for i, rail := range a.rails {
		probe := probes[i]
		if !probe.currentOK || !probe.voltageOK {
			continue
		}

		power := probe.voltage * probe.current
		readings = append(readings, Reading{
			Rail:    rail.Name,
			Voltage: round3(probe.voltage),
			Current: round3(probe.current),
			Power:   round3(power),
		})
		total += power
	}

	return Snapshot{
		TotalPower: round3(total),
		Readings:   readings,
	}
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
