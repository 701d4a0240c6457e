package stream

import (
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`(?i)([\d.]+)\s*(kb|mb|gb|tb)`)

var sizeMultipliers = map[string]int64{
	"kb": 1 << 10,
	"mb": 1 << 20,
	"gb": 1 << 30,
	"tb": 1 << 40,
}

// ParseSizeBytes parses a "1.5 GB" style string into bytes. The
// original string form is always retained separately for display.
func ParseSizeBytes(raw string) (int64, bool) {
	m := sizePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	multiplier, ok := sizeMultipliers[strings.ToLower(m[2])]
	if !ok {
		return 0, false
	}
	return int64(value * float64(multiplier)), true
}
