package blockstream

import (
	"testing"

	"github.com/gabapcia/btcwatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func init() {
	logger.Init("error")
}

// withHeap pins the heap reading for the duration of the test.
func withHeap(t *testing.T, mb float64) {
	t.Helper()

	original := heapInUse
	heapInUse = func() uint64 { return uint64(mb * bytesPerMB) }
	t.Cleanup(func() { heapInUse = original })
}

func TestCheckMemoryPressure(t *testing.T) {
	t.Run("reports usage below the ceiling", func(t *testing.T) {
		withHeap(t, 100)

		p := CheckMemoryPressure(t.Context(), 512)

		assert.False(t, p.OverLimit)
		assert.InDelta(t, 100, p.CurrentMB, 0.001)
		assert.InDelta(t, 100.0/512, p.Ratio, 0.0001)
		assert.Equal(t, 512, p.LimitMB)
	})

	t.Run("flags usage above the ceiling", func(t *testing.T) {
		withHeap(t, 600)

		p := CheckMemoryPressure(t.Context(), 512)

		assert.True(t, p.OverLimit)
		assert.Greater(t, p.Ratio, 1.0)
	})

	t.Run("is never over without a ceiling", func(t *testing.T) {
		withHeap(t, 1<<20)

		for _, limit := range []int{0, -1, -512} {
			p := CheckMemoryPressure(t.Context(), limit)
			assert.False(t, p.OverLimit)
			assert.Zero(t, p.Ratio)
		}
	})

	t.Run("warning range does not count as over", func(t *testing.T) {
		withHeap(t, 450)

		p := CheckMemoryPressure(t.Context(), 512)

		assert.False(t, p.OverLimit)
		assert.GreaterOrEqual(t, p.Ratio, WarnRatio)
	})

	t.Run("reads the real heap by default", func(t *testing.T) {
		assert.Greater(t, CurrentMemoryMB(), 0.0)
		assert.NotPanics(t, HintReclaim)
	})
}
