// Package batch implements the per-actor batch queue: heterogeneous units of
// curriculum work submitted on behalf of an actor, validated up front and
// drained with bounded concurrency, per-operation retry budgets and
// duplicate detection.
//
// Operation payloads form a closed set of tagged variants (unit, lesson,
// expectation, resource); processing dispatches through a handler table
// keyed by kind, so adding a variant is a compile-time visible change to the
// table rather than a scattered type switch.
package batch
