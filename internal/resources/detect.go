// Package resources detects the CPU and memory budget available to this
// process, preferring cgroup v2 limits over the raw host values so the
// auto-tune formula in internal/config scales to the container a
// deployment actually runs in rather than the underlying host.
package resources

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// DetectedResources is the result of one detection pass.
type DetectedResources struct {
	CPUCores      int
	MemoryBytes   int64
	CPUSource     string // "cgroup_v2" or "os_fallback"
	MemSource     string // "cgroup_v2" or "os_fallback"
	CgroupLimited bool
}

const (
	cgroupCPUMaxPath = "/sys/fs/cgroup/cpu.max"
	cgroupMemMaxPath = "/sys/fs/cgroup/memory.max"
)

// Detect inspects cgroup v2 limits first, falling back to runtime.NumCPU
// and a conservative memory estimate when cgroup files are absent or
// report "max" (unlimited).
func Detect() DetectedResources {
	cpuCores, cpuSource, cpuLimited := detectCPU()
	memBytes, memSource, memLimited := detectMemory()

	return DetectedResources{
		CPUCores:      cpuCores,
		MemoryBytes:   memBytes,
		CPUSource:     cpuSource,
		MemSource:     memSource,
		CgroupLimited: cpuLimited || memLimited,
	}
}

func detectCPU() (cores int, source string, limited bool) {
	if quota, period, ok := readCPUMax(cgroupCPUMaxPath); ok && period > 0 {
		n := int(quota / period)
		if n < 1 {
			n = 1
		}
		return n, "cgroup_v2", true
	}
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n, "os_fallback", false
}

// readCPUMax parses the two whitespace-separated integers in cpu.max,
// e.g. "200000 100000" meaning 2.0 cores. The file reading "max <period>"
// means no cgroup limit is set.
func readCPUMax(path string) (quota, period int64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, 0, false
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != 2 {
		return 0, 0, false
	}
	if fields[0] == "max" {
		return 0, 0, false
	}
	q, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	p, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return q, p, true
}

func detectMemory() (bytes int64, source string, limited bool) {
	if v, ok := readMemMax(cgroupMemMaxPath); ok {
		return v, "cgroup_v2", true
	}
	// Conservative OS fallback: Go has no portable stdlib call for
	// total system memory, so report a fixed 2 GiB floor, under which
	// the auto-tune formula caps the browser slots at two.
	return 2 << 30, "os_fallback", false
}

func readMemMax(path string) (int64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	s := strings.TrimSpace(string(data))
	if s == "" || s == "max" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
