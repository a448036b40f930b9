package bucket

import (
	"context"

	"github.com/flowcraft/flowcraft/health"
)

// HealthChecker returns a health.Checker reporting degraded status when
// the bucket is empty and unhealthy status when rejections dominate
// requests, letting an aggregator surface sustained throttling as an
// operational signal.
func (b *Bucket) HealthChecker(name string) health.Checker {
	return health.NewCheckerFunc(name, func(ctx context.Context) health.Result {
		snap := b.Snapshot()
		if snap.Stats.TotalRequests > 0 && snap.Stats.Rejected*2 > snap.Stats.TotalRequests {
			return health.Unhealthy("more than half of requests rejected", nil).
				WithDetails(map[string]any{
					"tokens":         snap.Tokens,
					"capacity":       snap.Capacity,
					"total_requests": snap.Stats.TotalRequests,
					"rejected":       snap.Stats.Rejected,
				})
		}
		if snap.Tokens < 1 {
			return health.Degraded("bucket exhausted").WithDetails(map[string]any{
				"tokens":   snap.Tokens,
				"capacity": snap.Capacity,
			})
		}
		return health.Healthy("tokens available").WithDetails(map[string]any{
			"tokens":   snap.Tokens,
			"capacity": snap.Capacity,
		})
	})
}
