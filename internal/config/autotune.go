package config

import "github.com/scavengarr/scavengarr/internal/resources"

// AutoTune derives slot sizes from detected CPU/RAM, in place, whenever
// the corresponding config field is zero (meaning "not explicitly set" —
// Parse's flags default to the conservative Default() values, so a zero
// only occurs when a caller deliberately requests auto-tuning, e.g. by
// passing -cheapSlots=0).
//
// The formula is monotonic in both CPU and memory and bounded:
//
//	MaxConcurrentPlugins    in [2, 30]
//	MaxConcurrentPlaywright in [1, 10], memory-capped (one browser page
//	                        per ~768MB of RAM)
//	ProbeConcurrency        >= 4, capped at min(cores*4, 100)
//	ValidationMaxConcurrent >= 5, capped at min(cores*5, 120)
//
// Values never decrease as resources grow; each branch below is
// non-decreasing in core count and memory.
func AutoTune(cfg *AppConfig, res resources.DetectedResources) {
	cpu := res.CPUCores
	if cpu < 1 {
		cpu = 1
	}
	memPages := int(res.MemoryBytes / (768 << 20))
	if memPages < 1 {
		memPages = 1
	}

	if cfg.Stremio.MaxConcurrentPlugins == 0 {
		cfg.Stremio.MaxConcurrentPlugins = clamp(cpu*2, 2, 30)
	}
	if cfg.Stremio.MaxConcurrentPlaywright == 0 {
		cfg.Stremio.MaxConcurrentPlaywright = clamp(min(cpu, memPages), 1, 10)
	}
	if cfg.Stremio.ProbeConcurrency == 0 {
		cfg.Stremio.ProbeConcurrency = clampMin(min(cpu*4, 100), 4)
	}
	if cfg.ValidationMaxConcurrent == 0 {
		cfg.ValidationMaxConcurrent = clampMin(min(cpu*5, 120), 5)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
