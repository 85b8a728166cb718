// Package artifact provides the object-storage collaborator: generated
// teaching materials (rendered newsletters, exported plans) stored as raw
// bytes scoped by owner.
//
// The Store interface keeps the core decoupled from any concrete backend;
// InMemory is the default volatile implementation. Durable backends (S3,
// GCS, database) implement the same interface outside this core.
package artifact
