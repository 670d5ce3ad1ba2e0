package service

import (
	"runtime"
	"time"

	"kaban/config"
	"kaban/logger"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/atomic"
)

var (
	startTime    = time.Now()
	requestCount atomic.Uint64
)

// CountRequest increments the served-request counter reported by GetStatus.
func CountRequest() {
	requestCount.Inc()
}

// Status is a point-in-time snapshot of host and process health.
type Status struct {
	T        time.Time `json:"-"`
	Version  string    `json:"version"`
	Cpu      float64   `json:"cpu"`
	CpuCores int       `json:"cpuCores"`
	Mem      struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Uptime   uint64    `json:"uptime"`
	Loads    []float64 `json:"loads"`
	AppStats struct {
		Goroutines int    `json:"goroutines"`
		Mem        uint64 `json:"mem"`
		Uptime     uint64 `json:"uptime"`
		Requests   uint64 `json:"requests"`
	} `json:"appStats"`
}

// ServerService reports process and host status for the admin endpoints.
type ServerService struct{}

func (s *ServerService) GetStatus() *Status {
	status := &Status{
		T:       time.Now(),
		Version: config.GetVersion(),
	}

	if percents, err := cpu.Percent(0, false); err != nil {
		logger.Warning("get cpu percent failed:", err)
	} else if len(percents) > 0 {
		status.Cpu = percents[0]
	}
	if cores, err := cpu.Counts(false); err != nil {
		logger.Warning("get cpu cores failed:", err)
	} else {
		status.CpuCores = cores
	}

	if memInfo, err := mem.VirtualMemory(); err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	if uptime, err := host.Uptime(); err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = uptime
	}

	if avgState, err := load.Avg(); err != nil {
		logger.Warning("get load avg failed:", err)
	} else {
		status.Loads = []float64{avgState.Load1, avgState.Load5, avgState.Load15}
	}

	var rtm runtime.MemStats
	runtime.ReadMemStats(&rtm)
	status.AppStats.Goroutines = runtime.NumGoroutine()
	status.AppStats.Mem = rtm.Sys
	status.AppStats.Uptime = uint64(time.Since(startTime).Seconds())
	status.AppStats.Requests = requestCount.Load()

	return status
}

// GetLogs returns up to count buffered log lines at or below level.
func (s *ServerService) GetLogs(count int, level string) []string {
	return logger.GetLogs(count, level)
}
