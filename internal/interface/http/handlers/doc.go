// Package handlers contains reusable HTTP building blocks for the Sync Hub API.
//
// # Health Checks
//
// CompositeHealthChecker runs named checks in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1")
//	checker.AddCheck("postgres", handlers.NewPingCheck(conn))
//	checker.AddCheck("redis", handlers.NewPingCheck(cache))
//
//	status := checker.Check(ctx)
//
// # Middleware
//
// SecurityHeadersMiddleware, NoCacheMiddleware and RequestSizeLimitMiddleware
// are plain net/http middlewares and compose with Chain or a chi router.
// IPRateLimiter keeps a golang.org/x/time/rate bucket per client address.
package handlers
