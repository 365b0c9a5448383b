package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a point-in-time resource sample for the performance report.
type Usage struct {
	CPUs          int
	HostMemTotal  uint64
	HostMemUsed   float64 // percent
	ProcessRSS    uint64
	ProcessCPU    float64 // percent since process start
	HeapAlloc     uint64
	NumGoroutines int
}

// Sample collects host and process usage. Fields that cannot be read on the
// current platform stay zero.
func Sample() Usage {
	u := Usage{NumGoroutines: runtime.NumGoroutine()}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	u.HeapAlloc = ms.HeapAlloc

	if n, err := cpu.Counts(true); err == nil {
		u.CPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		u.HostMemTotal = vm.Total
		u.HostMemUsed = vm.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			u.ProcessRSS = mi.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			u.ProcessCPU = pct
		}
	}
	return u
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
