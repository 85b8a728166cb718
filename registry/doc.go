// Package registry implements the service lifecycle registry: named service
// instances with declared dependencies, safe initialization ordering,
// periodic health monitoring, dependency graph diagnostics and coordinated
// shutdown.
//
// The registry never panics or returns a blanket error for partial failure.
// InitializeAll reports per-service outcomes in two lists so independent
// subsystems can come up even when one dependency chain is broken, and
// HealthStatus isolates each service's check so one unhealthy service cannot
// block diagnostics for the rest.
package registry
