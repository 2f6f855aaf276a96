package util

import "runtime"

// RuntimeStats is a point-in-time view of the process, reported by the
// health endpoint.
type RuntimeStats struct {
	HeapAllocMB uint64
	NumGC       uint32
	Goroutines  int
}

func ReadRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		HeapAllocMB: m.Alloc / 1024 / 1024,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}
}
