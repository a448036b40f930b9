package health

import (
	"context"
	"fmt"
	"runtime"
)

// ProcessMemoryCheckerConfig configures the process memory health checker.
type ProcessMemoryCheckerConfig struct {
	// WarningThreshold is the fraction of MaxAlloc that triggers degraded
	// status. Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the fraction of MaxAlloc that triggers
	// unhealthy status. Value should be between 0 and 1. Default: 0.95
	// (95%)
	CriticalThreshold float64

	// MaxAlloc is the allocation budget, in bytes, that store.Memory and
	// the other in-process backends are expected to stay under. If zero,
	// the checker falls back to the runtime's reported Sys bytes.
	// Default: 0 (auto-detect)
	MaxAlloc uint64
}

// ProcessMemoryChecker reports whether the process's heap is staying
// within budget. store.Memory, memoize's single-flight coordinator, and
// the wrapper packages' metrics all hold state on-heap; a process that
// grows past its memory budget is usually an eviction policy or TTL
// configured too loosely rather than genuine load, so this checker is
// meant to be registered alongside breaker.HealthChecker and
// bucket.HealthChecker, not in place of them.
type ProcessMemoryChecker struct {
	config ProcessMemoryCheckerConfig
}

// NewProcessMemoryChecker creates a new process memory health checker.
func NewProcessMemoryChecker(config ProcessMemoryCheckerConfig) *ProcessMemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return &ProcessMemoryChecker{config: config}
}

// Name returns the name of this checker.
func (m *ProcessMemoryChecker) Name() string {
	return "process_memory"
}

// Check performs the memory health check.
func (m *ProcessMemoryChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	if maxAlloc == 0 {
		return Healthy("memory stats unavailable").WithDetails(map[string]any{
			"alloc":       stats.Alloc,
			"total_alloc": stats.TotalAlloc,
			"sys":         stats.Sys,
			"num_gc":      stats.NumGC,
		})
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)

	details := map[string]any{
		"alloc_bytes":    stats.Alloc,
		"alloc_mb":       float64(stats.Alloc) / (1024 * 1024),
		"max_alloc":      maxAlloc,
		"usage_percent":  usageRatio * 100,
		"heap_alloc":     stats.HeapAlloc,
		"heap_sys":       stats.HeapSys,
		"heap_idle":      stats.HeapIdle,
		"heap_in_use":    stats.HeapInuse,
		"heap_released":  stats.HeapReleased,
		"heap_objects":   stats.HeapObjects,
		"stack_in_use":   stats.StackInuse,
		"stack_sys":      stats.StackSys,
		"gc_pause_total": stats.PauseTotalNs,
		"num_gc":         stats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	if usageRatio >= m.config.CriticalThreshold {
		return Unhealthy(
			fmt.Sprintf("process memory usage critical: %.1f%%", usageRatio*100),
			ErrCheckFailed,
		).WithDetails(details)
	}

	if usageRatio >= m.config.WarningThreshold {
		return Degraded(
			fmt.Sprintf("process memory usage high: %.1f%%", usageRatio*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("process memory usage normal: %.1f%%", usageRatio*100),
	).WithDetails(details)
}

// ForceGC triggers a garbage collection. Useful for tests that want to
// observe ReadMemStats right after a collection.
func (m *ProcessMemoryChecker) ForceGC() {
	runtime.GC()
}
