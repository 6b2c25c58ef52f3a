package sensor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/pimon/internal/errors"
)

// ParseClock extracts the Hz value from vcgencmd measure_clock output,
// e.g. "frequency(1)=500000000".
func ParseClock(output string) (int64, error) {
	s := strings.TrimSpace(output)

	eq := strings.LastIndex(s, "=")
	if eq < 0 {
		return 0, errors.WithData(errors.ErrParseFailed, s)
	}

	hz, err := strconv.ParseInt(strings.TrimSpace(s[eq+1:]), 10, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrParseFailed, err)
	}

	return hz, nil
}

// ParseADCValue scans vcgencmd pmic_read_adc output line by line for the
// entry carrying both the requested unit symbol and the channel index in
// parentheses, e.g. "VDD_CORE_A current(7)=5.42295314A", and extracts the
// numeric value after the "=".
func ParseADCValue(output string, channel int, unit string) (float64, error) {
	marker := fmt.Sprintf("(%d)", channel)

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, unit) || !strings.Contains(line, marker) {
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			return 0, errors.WithData(errors.ErrParseFailed, line)
		}

		token := strings.TrimSpace(strings.ReplaceAll(line[eq+1:], unit, ""))
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, errors.Wrap(errors.ErrParseFailed, err)
		}

		return value, nil
	}

	return 0, errors.WithData(errors.ErrParseFailed,
		fmt.Sprintf("no %s reading for channel %d", unit, channel))
}

// FormatUptime renders an uptime as "{days}d {hours}h {minutes}m"
func FormatUptime(uptime time.Duration) string {
	total := int64(uptime.Seconds())
	minutes := (total / 60) % 60
	hours := (total / 3600) % 24
	days := total / 86400

	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

// FormatLoad renders the three load averages to 2 decimals, comma-joined
func FormatLoad(load1, load5, load15 float64) string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", load1, load5, load15)
}
