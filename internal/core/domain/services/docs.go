// Package services provides the stateless domain services of the order workflow.
//
// The package includes:
//   - TransitionValidator: decides whether an actor may move an order or its delivery
//     along an edge, given the post-patch order context
//   - OrderProjector: derives role-specific labels, buyer delivery tracking and
//     per-stage delay buckets from an order without mutating it
//
// Both are pure functions of their inputs and are safe for concurrent use.
package services
