package stats

import "math"

// Snapshot is the combined result of one sampling cycle. Fractions are in
// [0,1], frequencies in MHz, throughput in MB/s. It is assembled once per
// refresh and served read-only until superseded.
type Snapshot struct {
	CPU              float64 `json:"cpu"`
	MemoryPercent    float64 `json:"memory_percent"`
	Temperature      float64 `json:"temp"`
	UptimeHuman      string  `json:"uptime_human"`
	LoadAvg          string  `json:"load_avg"`
	FanRPM           int     `json:"fan_rpm"`
	CPUFreq          float64 `json:"cpu_freq"`
	DiskUsagePercent float64 `json:"disk_usage_percent"`
	GPUFreq          int     `json:"gpu_freq"`
	DiskReadMBs      float64 `json:"disk_read_mb_s"`
	DiskWriteMBs     float64 `json:"disk_write_mb_s"`
	NetRecvMBs       float64 `json:"net_recv_mb_s"`
	NetSentMBs       float64 `json:"net_sent_mb_s"`
}

// Defaults returns the snapshot served when every probe fails
func Defaults() Snapshot {
	return Snapshot{
		UptimeHuman: "Unknown",
		LoadAvg:     "0.00, 0.00, 0.00",
	}
}

func round(value float64, places int) float64 {
	factor := math.Pow10(places)
	return math.Round(value*factor) / factor
}
