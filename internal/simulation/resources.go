package simulation

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MemoryUsage is a point-in-time reading of heap and process memory.
type MemoryUsage struct {
	HeapAllocBytes      uint64  `json:"heap_alloc_bytes"`
	HeapObjects         uint64  `json:"heap_objects"`
	TotalAllocBytes     uint64  `json:"total_alloc_bytes"`
	NumGC               uint32  `json:"num_gc"`
	RSSBytes            uint64  `json:"rss_bytes"`
	VMSBytes            uint64  `json:"vms_bytes"`
	SystemMemoryPercent float64 `json:"system_memory_percent"`
	Goroutines          int     `json:"goroutines"`
}

// resourceMonitor samples memory for the current process.
type resourceMonitor struct {
	process *process.Process
}

func newResourceMonitor() *resourceMonitor {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		proc = nil
	}
	return &resourceMonitor{process: proc}
}

// sample reads the Go heap and, where the platform allows, the process
// RSS. gopsutil failures leave the process fields at zero.
func (rm *resourceMonitor) sample() MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	usage := MemoryUsage{
		HeapAllocBytes:  ms.HeapAlloc,
		HeapObjects:     ms.HeapObjects,
		TotalAllocBytes: ms.TotalAlloc,
		NumGC:           ms.NumGC,
		Goroutines:      runtime.NumGoroutine(),
	}

	if rm.process != nil {
		if memInfo, err := rm.process.MemoryInfo(); err == nil {
			usage.RSSBytes = memInfo.RSS
			usage.VMSBytes = memInfo.VMS
		}
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemoryPercent = vmStat.UsedPercent
	}
	return usage
}
