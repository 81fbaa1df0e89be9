// Package bytesize provides human-readable formatting and parsing of byte
// counts, used for indexing summaries and progress output.
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize represents a size in bytes.
//
// Supported input formats:
//   - Plain numbers: 1024, 1073741824
//   - Binary units (x1024): Ki/KiB, Mi/MiB, Gi/GiB, Ti/TiB
//   - Decimal units (x1000): K/KB, M/MB, G/GB, T/TB
type ByteSize uint64

// Common byte size constants.
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var pattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

var unitMultipliers = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"t": TB, "tb": TB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
	"ti": TiB, "tib": TiB,
}

// Parse parses a human-readable byte size string like "1Gi", "500MB" or
// "1024" into a ByteSize value.
func Parse(s string) (ByteSize, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	multiplier, ok := unitMultipliers[strings.ToLower(matches[2])]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", matches[2])
	}

	if strings.Contains(matches[1], ".") {
		num, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size number: %q", matches[1])
		}
		return ByteSize(num * float64(multiplier)), nil
	}

	num, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %q", matches[1])
	}
	return ByteSize(num) * multiplier, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize can be used
// directly in config structs decoded with mapstructure.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String returns a human-readable representation of the byte size.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2f TiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%d B", uint64(b))
	}
}

// Format renders an int64 byte count, the common type returned by file
// indexing, as a human-readable string.
func Format(n int64) string {
	if n < 0 {
		return fmt.Sprintf("%d B", n)
	}
	return ByteSize(n).String()
}

// Int64 returns the ByteSize as an int64. May overflow for very large values.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
