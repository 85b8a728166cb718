// Package store provides the data-store collaborator consumed by the
// execution primitives and batch handlers: curriculum records (units,
// lessons, expectations, resources) behind a transactional API.
//
// The InMemory implementation stages writes per transaction and publishes
// them atomically on commit, which gives tests and single-process
// deployments the same all-or-nothing contract a database-backed
// implementation would provide. Data is volatile and lost on restart.
package store
