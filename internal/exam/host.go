package exam

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
)

// fallbackMemoryGB is assumed when the memory probe fails.
const fallbackMemoryGB = 4

// Host describes the resources auto mode plans against.
type Host struct {
	Cores    int
	MemoryGB float64
}

// ProbeHost reads the core count and total memory of the machine.
func ProbeHost() Host {
	h := Host{Cores: runtime.NumCPU(), MemoryGB: fallbackMemoryGB}
	if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
		h.MemoryGB = float64(vm.Total) / (1 << 30)
	}
	return h
}

// plan picks the backend and worker count. Explicit modes are honoured;
// auto mode stays serial for a single version or when too few templates
// need pool sampling to pay for parallel overhead.
func plan(o Options, slots []Slot) (Mode, int) {
	if o.Versions <= 1 {
		return ModeSerial, 1
	}
	h := o.Probe()
	cores := max(h.Cores, 1)
	threadWorkers := min(2*cores, o.Versions, o.MaxThreadWorkers)
	processWorkers := min(cores, o.Versions, o.MaxProcessWorkers)

	switch o.Mode {
	case ModeSerial:
		return ModeSerial, 1
	case ModeThreads:
		return ModeThreads, threadWorkers
	case ModeProcesses:
		return ModeProcesses, processWorkers
	}

	total, heavy := 0, 0
	for _, s := range slots {
		for _, t := range s.Members {
			total++
			if t.Combinatorial() {
				heavy++
			}
		}
	}
	if float64(heavy) < max(1, o.ComplexRatio*float64(total)) {
		return ModeSerial, 1
	}
	switch {
	case cores >= 4 && h.MemoryGB >= 8:
		return ModeProcesses, processWorkers
	case cores >= 2 && h.MemoryGB >= 4:
		return ModeThreads, threadWorkers
	}
	return ModeSerial, 1
}
