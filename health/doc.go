// Package health provides health checking primitives for flowcraft's
// wrapper components.
//
// It implements a generic health checking framework for monitoring
// breaker, bucket, and process state, aggregating results from multiple
// checkers, and exposing health status via HTTP endpoints compatible
// with Kubernetes probes.
//
// # Ecosystem Position
//
// health integrates with service mesh and orchestration systems:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     Health Check Architecture                   │
//	├─────────────────────────────────────────────────────────────────┤
//	│                                                                 │
//	│   Kubernetes          health              Wrappers               │
//	│   ┌─────────┐      ┌───────────┐        ┌───────────┐          │
//	│   │Liveness │─────▶│  HTTP     │        │  Process  │          │
//	│   │ Probe   │      │ Handlers  │        │  Memory   │          │
//	│   ├─────────┤      │           │        ├───────────┤          │
//	│   │Readiness│─────▶│ /healthz  │◀───────│  Circuit  │          │
//	│   │ Probe   │      │ /readyz   │        │  Breaker  │          │
//	│   └─────────┘      │ /health   │        ├───────────┤          │
//	│                    │           │        │   Token   │          │
//	│   Load Balancer    │ ┌───────┐ │        │  Bucket   │          │
//	│   ┌─────────┐      │ │Aggreg-│◀┼────────┴───────────┘          │
//	│   │ Health  │─────▶│ │ ator  │ │                                │
//	│   │ Checks  │      │ └───────┘ │                                │
//	│   └─────────┘      └───────────┘                                │
//	│                                                                 │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Status Types
//
// The [Status] type represents component health:
//
//   - [StatusHealthy]: Component is functioning normally
//   - [StatusDegraded]: Component is functioning but with issues
//   - [StatusUnhealthy]: Component is not functioning properly
//
// # Core Components
//
//   - [Checker]: Interface for health checks (Name() + Check())
//   - [CheckerFunc]: Adapter for function-based checkers
//   - [Result]: Health check outcome with status, message, details, duration
//   - [Aggregator]: Combines multiple checkers into composite health
//   - [ProcessMemoryChecker]: Built-in checker for process memory thresholds
//
// # Quick Start
//
//	// Create checkers
//	memCheck := health.NewProcessMemoryChecker(health.ProcessMemoryCheckerConfig{
//	    WarningThreshold:  0.80,
//	    CriticalThreshold: 0.95,
//	})
//
//	// breaker.HealthChecker and bucket.HealthChecker adapt this package's
//	// Checker interface to their own state (breaker/health.go, bucket/health.go)
//	cbCheck := myBreaker.HealthChecker("orders-api")
//	bucketCheck := myBucket.HealthChecker("orders-rate")
//
//	// Create aggregator
//	agg := health.NewAggregator()
//	agg.Register("process_memory", memCheck)
//	agg.Register("orders-api", cbCheck)
//	agg.Register("orders-rate", bucketCheck)
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides Kubernetes-compatible HTTP handlers:
//
//   - [LivenessHandler]: Simple /healthz endpoint - always returns 200 if running
//   - [ReadinessHandler]: Runs all checks, returns 503 if any unhealthy
//   - [DetailedHandler]: Returns JSON with full check details
//   - [SingleCheckHandler]: Check a specific component by name
//   - [RegisterHandlers]: Convenience function to register all handlers
//
// Example registration:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, aggregator)
//	// Registers: /healthz, /readyz, /health
//
// # Aggregation Behavior
//
// The [Aggregator] computes overall status using worst-case logic:
//
//   - If ANY check is Unhealthy → overall Unhealthy
//   - If ANY check is Degraded (and none Unhealthy) → overall Degraded
//   - If ALL checks are Healthy → overall Healthy
//
// Checks can run in parallel (default) or sequentially via [AggregatorConfig].
//
// # Thread Safety
//
// All exported types are safe for concurrent use:
//
//   - [Aggregator]: sync.RWMutex protects registration and check execution
//   - [ProcessMemoryChecker]: Stateless, concurrent-safe
//   - [CheckerFunc]: Delegates to user function, ensure your function is safe
//   - [Result]: Immutable after creation
//
// # Error Handling
//
// Sentinel errors (use errors.Is for checking):
//
//   - [ErrCheckFailed]: Generic health check failure
//   - [ErrCheckTimeout]: Check exceeded timeout
//   - [ErrCheckerNotFound]: Named checker not registered
//   - [ErrNoCheckers]: No checkers registered in aggregator
//
// # Integration with flowcraft
//
//   - breaker.CircuitBreaker.HealthChecker: surfaces Open/HalfOpen/Closed as
//     unhealthy/degraded/healthy
//   - bucket.Bucket.HealthChecker: surfaces sustained rejection as unhealthy,
//     an exhausted bucket as degraded
//   - telemetry: health results are a natural companion to the OTel metrics
//     telemetry records, though this package does not depend on it
package health
