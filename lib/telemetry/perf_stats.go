package telemetry

import (
	"github.com/shirou/gopsutil/v4/process"
)

// ReportProcessMemory reports the resident set size in megabytes of the
// process with the given pid, children are not included.
func ReportProcessMemory(tel API, id string, pid int) {
	if pid <= 0 {
		return
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		tel.ReportWarning(id, err, pid)
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		tel.ReportWarning(id, err, pid)
		return
	}
	tel.ReportCount(id, int64(mem.RSS/1_000_000))
}
