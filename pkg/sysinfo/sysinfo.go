// Package sysinfo collects a best-effort host summary for report headers
// and history records.
package sysinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Info contains a host summary. Fields are zero-valued when the underlying
// probe fails; collection never returns an error.
type Info struct {
	Hostname        string  `json:"hostname"`
	OS              string  `json:"os"`
	Platform        string  `json:"platform"`
	PlatformVersion string  `json:"platform_version"`
	KernelVersion   string  `json:"kernel_version"`
	Arch            string  `json:"arch"`
	CPUModel        string  `json:"cpu_model"`
	CPUCores        int     `json:"cpu_cores"`
	MemoryTotalGB   float64 `json:"memory_total_gb"`
}

// Collect probes the host. Individual probe failures leave the matching
// fields zero-valued.
func Collect() *Info {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
		info.Platform = hi.Platform
		info.PlatformVersion = hi.PlatformVersion
		info.KernelVersion = hi.KernelVersion
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
		info.CPUCores = runtime.NumCPU()
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotalGB = float64(vm.Total) / 1024 / 1024 / 1024
	}

	return info
}
