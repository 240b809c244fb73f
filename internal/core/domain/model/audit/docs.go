// Package audit models the append-only history of an order: one Event per committed
// transition, attribute update, manual override or denied attempt.
//
// Events are never updated or deleted. Replay walks a trail and verifies that every
// committed move follows an edge of the order or delivery graph, or is an explicit
// manual override.
package audit
