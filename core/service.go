package core

import "context"

// HealthResult captures the outcome of a single health check. Details is an
// opaque payload owned by the service implementation; it is never mutated
// after creation and is superseded by the next check for the same service.
type HealthResult struct {
	Healthy bool           `json:"healthy"`
	Details map[string]any `json:"details,omitempty"`
}

// Service is the lifecycle contract every registered component implements.
//
// Start brings the service into a usable state and is invoked exactly once
// per successful initialization pass, after all declared dependencies have
// started. HealthCheck reports liveness and is invoked by the registry's
// periodic monitors and by on-demand status queries; it must be safe to call
// concurrently with normal operation.
//
// Keeping Start and HealthCheck distinct avoids conflating "is initialized"
// with "is currently healthy".
type Service interface {
	Start(ctx context.Context) error
	HealthCheck(ctx context.Context) (HealthResult, error)
}

// ServiceFuncs adapts plain functions to the Service interface. Useful for
// tests and for wrapping components that predate the lifecycle contract.
type ServiceFuncs struct {
	StartFunc       func(ctx context.Context) error
	HealthCheckFunc func(ctx context.Context) (HealthResult, error)
}

// Start invokes StartFunc when set and succeeds otherwise.
func (s ServiceFuncs) Start(ctx context.Context) error {
	if s.StartFunc == nil {
		return nil
	}
	return s.StartFunc(ctx)
}

// HealthCheck invokes HealthCheckFunc when set and reports healthy otherwise.
func (s ServiceFuncs) HealthCheck(ctx context.Context) (HealthResult, error) {
	if s.HealthCheckFunc == nil {
		return HealthResult{Healthy: true}, nil
	}
	return s.HealthCheckFunc(ctx)
}
