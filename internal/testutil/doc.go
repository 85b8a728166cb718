// Package testutil contains helper builders and doubles used across tests to
// reduce boilerplate when constructing services, collaborators and batch
// payloads. These helpers are intentionally minimal and are not intended for
// production usage.
package testutil
