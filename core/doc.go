// Package core defines the shared contracts of the orchestration core: the
// Service lifecycle interface consumed by the registry, the HealthResult
// value produced by health checks, and the collaborator interfaces (data
// store transaction runner) the execution primitives depend on.
//
// Implementations live in sibling packages (store, batch, registry); core
// stays free of dependencies so any package can import it without cycles.
package core
