package metrics

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats 系统统计信息，用于健康面板
type SystemStats struct {
	Timestamp time.Time    `json:"timestamp"`
	CPU       CPUStats     `json:"cpu"`
	Memory    MemoryStats  `json:"memory"`
	Runtime   RuntimeStats `json:"runtime"`
	Host      HostStats    `json:"host"`
}

// CPUStats CPU统计信息
type CPUStats struct {
	UsagePercent float64 `json:"usage_percent"`
	Count        int     `json:"count"`
}

// MemoryStats 内存统计信息
type MemoryStats struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	UsagePercent float64 `json:"usage_percent"`
}

// RuntimeStats Go运行时统计信息
type RuntimeStats struct {
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`
}

// HostStats 主机信息
type HostStats struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Uptime   uint64 `json:"uptime"`
}

// CollectSystemStats 采集一次系统快照，采集失败的项留零值
func CollectSystemStats() *SystemStats {
	stats := &SystemStats{Timestamp: time.Now()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPU.UsagePercent = percents[0]
	}
	if count, err := cpu.Counts(true); err == nil {
		stats.CPU.Count = count
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.Memory.Total = vm.Total
		stats.Memory.Used = vm.Used
		stats.Memory.UsagePercent = vm.UsedPercent
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats.Runtime.Goroutines = runtime.NumGoroutine()
	stats.Runtime.HeapAlloc = ms.HeapAlloc
	stats.Runtime.NumGC = ms.NumGC

	if info, err := host.Info(); err == nil {
		stats.Host.Hostname = info.Hostname
		stats.Host.OS = info.OS
		stats.Host.Uptime = info.Uptime
	}

	return stats
}
