// Package observability provides structured logging and Prometheus metrics
// for the advisory gateway.
//
// This package implements:
//   - Request-scoped logging with the chi request ID attached (zap-based)
//   - Prometheus collectors for advisory requests, latency and vision fallbacks
package observability
