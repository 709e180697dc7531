// Package middleware holds the Echo middleware shared by every route:
// request ids, request-scoped loggers, New Relic tracing, rate limiting,
// recovery and the global error handler.
package middleware
