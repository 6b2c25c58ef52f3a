package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/pimon/internal/errors"
	"codeberg.org/mutker/pimon/internal/logger"
	"codeberg.org/mutker/pimon/internal/metrics"
	"codeberg.org/mutker/pimon/internal/rate"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

const (
	cpuThermalZone = "cpu_thermal"
	pwmFanName     = "pwmfan"
	hzPerMHz       = 1000000
	khzPerMHz      = 1000
)

// Config holds the host paths and binaries the sensors read from. Zero
// values fall back to the standard Raspberry Pi locations; tests point the
// sysfs paths at fixture trees.
type Config struct {
	VcgencmdPath string
	HwmonPath    string
	ThermalPath  string
	CPUFreqPath  string
}

// Sensors implements Source and ChannelReader against the local host
type Sensors struct {
	cfg    Config
	runner Runner
}

func New(cfg Config, runner Runner) *Sensors {
	if cfg.VcgencmdPath == "" {
		cfg.VcgencmdPath = "vcgencmd"
	}
	if cfg.HwmonPath == "" {
		cfg.HwmonPath = "/sys/class/hwmon"
	}
	if cfg.ThermalPath == "" {
		cfg.ThermalPath = "/sys/class/thermal"
	}
	if cfg.CPUFreqPath == "" {
		cfg.CPUFreqPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"
	}

	return &Sensors{cfg: cfg, runner: runner}
}

func (s *Sensors) CPUFraction(ctx context.Context) (float64, bool) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(percents) == 0 {
		s.unavailable("cpu", err)
		return 0, false
	}

	return percents[0] / 100, true
}

func (s *Sensors) MemoryFraction(ctx context.Context) (float64, bool) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		s.unavailable("memory", err)
		return 0, false
	}

	return vm.UsedPercent / 100, true
}

func (s *Sensors) DiskUsageFraction(ctx context.Context) (float64, bool) {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		s.unavailable("disk_usage", err)
		return 0, false
	}

	return usage.UsedPercent / 100, true
}

func (s *Sensors) Uptime(ctx context.Context) (string, bool) {
	boot, err := host.BootTimeWithContext(ctx)
	if err != nil {
		s.unavailable("uptime", err)
		return "", false
	}

	return FormatUptime(time.Since(time.Unix(int64(boot), 0))), true
}

func (s *Sensors) LoadAverage(ctx context.Context) (string, bool) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		s.unavailable("load_avg", err)
		return "", false
	}

	return FormatLoad(avg.Load1, avg.Load5, avg.Load15), true
}

// Temperature reads the cpu_thermal zone's first reading in Celsius
func (s *Sensors) Temperature(ctx context.Context) (float64, bool) {
	entries, err := os.ReadDir(s.cfg.ThermalPath)
	if err != nil {
		s.unavailable("temp", err)
		return 0, false
	}

	for _, entry := range entries {
		zoneType, err := os.ReadFile(filepath.Join(s.cfg.ThermalPath, entry.Name(), "type"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(zoneType)) != cpuThermalZone {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(s.cfg.ThermalPath, entry.Name(), "temp"))
		if err != nil {
			s.unavailable("temp", err)
			return 0, false
		}

		milli, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil {
			s.unavailable("temp", err)
			return 0, false
		}

		return milli / 1000, true
	}

	s.unavailable("temp", errors.WithData(errors.ErrProbeUnavailable, "no cpu_thermal zone"))

	return 0, false
}

// FanRPM scans the hwmon tree for the first entry whose name file contains
// "pwmfan" and reads its fan1_input sibling. Entries without a name file are
// skipped; iteration order is OS-defined.
func (s *Sensors) FanRPM(ctx context.Context) (int, bool) {
	entries, err := os.ReadDir(s.cfg.HwmonPath)
	if err != nil {
		s.unavailable("fan_rpm", err)
		return 0, false
	}

	for _, entry := range entries {
		name, err := os.ReadFile(filepath.Join(s.cfg.HwmonPath, entry.Name(), "name"))
		if err != nil {
			continue
		}
		if !strings.Contains(string(name), pwmFanName) {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(s.cfg.HwmonPath, entry.Name(), "fan1_input"))
		if err != nil {
			s.unavailable("fan_rpm", err)
			return 0, false
		}

		rpm, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			s.unavailable("fan_rpm", err)
			return 0, false
		}

		return rpm, true
	}

	return 0, false
}

func (s *Sensors) CPUFrequency(ctx context.Context) (float64, bool) {
	raw, err := os.ReadFile(s.cfg.CPUFreqPath)
	if err != nil {
		s.unavailable("cpu_freq", err)
		return 0, false
	}

	khz, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		s.unavailable("cpu_freq", err)
		return 0, false
	}

	return khz / khzPerMHz, true
}

func (s *Sensors) GPUFrequency(ctx context.Context) (int, bool) {
	out, err := s.runner.Run(ctx, s.cfg.VcgencmdPath, "measure_clock", "core")
	if err != nil {
		s.unavailable("gpu_freq", err)
		return 0, false
	}

	hz, err := ParseClock(out)
	if err != nil {
		s.unavailable("gpu_freq", err)
		return 0, false
	}

	return int(hz / hzPerMHz), true
}

func (s *Sensors) DiskCounters(ctx context.Context) (rate.Pair, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return rate.Pair{}, errors.Wrap(errors.ErrProbeUnavailable, err)
	}

	var pair rate.Pair
	for name, st := range counters {
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		pair.A += st.ReadBytes
		pair.B += st.WriteBytes
	}

	return pair, nil
}

func (s *Sensors) NetCounters(ctx context.Context) (rate.Pair, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return rate.Pair{}, errors.Wrap(errors.ErrProbeUnavailable, err)
	}
	if len(counters) == 0 {
		return rate.Pair{}, errors.New(errors.ErrProbeUnavailable)
	}

	return rate.Pair{A: counters[0].BytesRecv, B: counters[0].BytesSent}, nil
}

// ReadChannel reads one PMIC ADC channel via vcgencmd. ok=false means no
// reading, which is distinct from a zero reading.
func (s *Sensors) ReadChannel(ctx context.Context, channel int, unit string) (float64, bool) {
	out, err := s.runner.Run(ctx, s.cfg.VcgencmdPath, "pmic_read_adc", fmt.Sprintf("CH%d", channel))
	if err != nil {
		s.unavailable("pmic", err)
		return 0, false
	}

	value, err := ParseADCValue(out, channel, unit)
	if err != nil {
		s.unavailable("pmic", err)
		return 0, false
	}

	return value, true
}

func (s *Sensors) unavailable(probe string, err error) {
	metrics.ProbeFailures.WithLabelValues(probe).Inc()
	logger.Warn().Str("probe", probe).Err(err).Msg("probe unavailable, using default")
}
