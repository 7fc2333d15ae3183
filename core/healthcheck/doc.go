// Package healthcheck provides liveness and readiness handlers for the
// router.
//
//	r.Get("/health/live", healthcheck.Handler[*router.Context](log))
//	r.Get("/health/ready", healthcheck.Handler[*router.Context](log, redis.Healthcheck(rdb)))
package healthcheck
