package core

import "context"

// TransactionRunner is the minimal contract of the data-store collaborator:
// execute fn inside a single atomic unit of work. Either every effect staged
// inside fn becomes visible, or none do. The tx handle is opaque at this
// level; concrete stores pass their own transaction type and handlers
// type-assert it.
//
// Retried attempts must be idempotent or safely re-entrant; that is a caller
// obligation the runner cannot enforce.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(tx any) error) error
}
