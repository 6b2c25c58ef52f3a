package power_test

import (
	"context"
	"sync"
	"testing"

	"codeberg.org/mutker/pimon/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves canned channel readings; channels absent from the map
// report no reading.
type fakeReader struct {
	mu     sync.Mutex
	values map[int]float64
	calls  int
}

func (r *fakeReader) ReadChannel(_ context.Context, channel int, _ string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	v, ok := r.values[channel]
	return v, ok
}

func allChannels(value float64) map[int]float64 {
	values := make(map[int]float64)
	for _, rail := range power.DefaultRails() {
		values[rail.CurrentChannel] = value
		values[rail.VoltageChannel] = value
	}
	return values
}

func TestSnapshotAllRails(t *testing.T) {
	reader := &fakeReader{values: allChannels(1.0)}
	a := power.NewAggregator(reader, power.DefaultRails())

	snap := a.Snapshot(context.Background())

	require.Len(t, snap.Readings, 12)
	assert.Equal(t, 12.0, snap.TotalPower)
	assert.Equal(t, 24, reader.calls, "every current and voltage channel is read once")

	// Output order follows the rail table order
	for i, rail := range power.DefaultRails() {
		assert.Equal(t, rail.Name, snap.Readings[i].Rail)
		assert.Equal(t, 1.0, snap.Readings[i].Power)
	}
}

func TestSnapshotOmitsUnreadableRail(t *testing.T) {
	values := allChannels(1.0)
	delete(values, 7) // VDD_CORE current channel

	reader := &fakeReader{values: values}
	a := power.NewAggregator(reader, power.DefaultRails())

	snap := a.Snapshot(context.Background())

	require.Len(t, snap.Readings, 11)
	for _, reading := range snap.Readings {
		assert.NotEqual(t, "VDD_CORE", reading.Rail, "a rail missing one channel read is omitted, not zero-filled")
	}
	assert.Equal(t, 11.0, snap.TotalPower, "total power excludes the omitted rail")
}

func TestSnapshotZeroCurrentIsIncluded(t *testing.T) {
	values := allChannels(1.0)
	values[6] = 0 // 0V8_SW draws nothing

	reader := &fakeReader{values: values}
	a := power.NewAggregator(reader, power.DefaultRails())

	snap := a.Snapshot(context.Background())

	require.Len(t, snap.Readings, 12)
	assert.Equal(t, 11.0, snap.TotalPower)
	assert.Equal(t, 0.0, snap.Readings[6].Power)
}

func TestSnapshotAllChannelsFail(t *testing.T) {
	reader := &fakeReader{values: map[int]float64{}}
	a := power.NewAggregator(reader, power.DefaultRails())

	snap := a.Snapshot(context.Background())

	assert.Zero(t, snap.TotalPower)
	assert.Empty(t, snap.Readings)
	assert.NotNil(t, snap.Readings, "readings serialize as an empty list, not null")
}

func TestSnapshotRounding(t *testing.T) {
	reader := &fakeReader{values: map[int]float64{7: 5.42295314, 15: 0.84228515}}
	a := power.NewAggregator(reader, []power.Rail{{Name: "VDD_CORE", CurrentChannel: 7, VoltageChannel: 15}})

	snap := a.Snapshot(context.Background())

	require.Len(t, snap.Readings, 1)
	assert.Equal(t, 5.423, snap.Readings[0].Current)
	assert.Equal(t, 0.842, snap.Readings[0].Voltage)
	assert.Equal(t, 4.568, snap.Readings[0].Power) // 5.42295314 * 0.84228515
}
