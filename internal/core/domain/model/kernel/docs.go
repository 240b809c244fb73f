// Package kernel provides the shared domain primitives of the order workflow engine.
//
// The package includes:
//   - UUID: a value object for identifiers of orders, buyers and manufacturers
//   - Role: the closed set of actor roles (buyer, manufacturer, admin, system)
//   - Actor: the role and identifier of whoever triggers a workflow action
//
// Identity is never resolved here. Callers pass an Actor explicitly into every
// workflow operation.
package kernel
