package blockstream

import (
	"context"
	"runtime"
	"runtime/debug"

	"github.com/gabapcia/btcwatch/internal/pkg/logger"
)

// WarnRatio is the share of the ceiling at which CheckMemoryPressure warns.
const WarnRatio = 0.8

const bytesPerMB = 1024 * 1024

// heapInUse reports live heap bytes. Tests replace it.
var heapInUse = func() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// Pressure is a snapshot of heap usage against a ceiling.
type Pressure struct {
	CurrentMB float64
	LimitMB   int
	Ratio     float64 // CurrentMB / LimitMB, zero without a ceiling
	OverLimit bool
}

// CurrentMemoryMB returns the live heap in megabytes.
func CurrentMemoryMB() float64 {
	return float64(heapInUse()) / bytesPerMB
}

// CheckMemoryPressure compares the live heap with limitMB and logs a warning
// from WarnRatio of the ceiling upwards. It only observes; reclaiming memory
// is up to the caller. A limitMB of zero or less means no ceiling.
func CheckMemoryPressure(ctx context.Context, limitMB int) Pressure {
	p := Pressure{
		CurrentMB: CurrentMemoryMB(),
		LimitMB:   limitMB,
	}
	if limitMB <= 0 {
		return p
	}

	p.Ratio = p.CurrentMB / float64(limitMB)
	p.OverLimit = p.CurrentMB > float64(limitMB)

	if p.Ratio >= WarnRatio {
		logger.Warn(ctx, "memory usage close to ceiling",
			"memory.current_mb", p.CurrentMB,
			"memory.limit_mb", limitMB,
			"memory.ratio", p.Ratio,
		)
	}

	return p
}

// HintReclaim asks the runtime to collect garbage and return freed memory to
// the operating system now.
func HintReclaim() {
	debug.FreeOSMemory()
}
