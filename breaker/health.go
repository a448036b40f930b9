package breaker

import (
	"context"

	"github.com/flowcraft/flowcraft/health"
)

// HealthChecker returns a health.Checker reflecting the breaker's
// current state: Open is unhealthy, HalfOpen is degraded, Closed is
// healthy.
func (cb *CircuitBreaker) HealthChecker(name string) health.Checker {
	return health.NewCheckerFunc(name, func(ctx context.Context) health.Result {
		snap := cb.Snapshot()
		details := map[string]any{
			"state":    snap.State.String(),
			"failures": snap.Failures,
		}
		switch snap.State {
		case Open:
			return health.Unhealthy("circuit open", nil).WithDetails(details)
		case HalfOpen:
			return health.Degraded("circuit probing recovery").WithDetails(details)
		default:
			return health.Healthy("circuit closed").WithDetails(details)
		}
	})
}
