// Package commands contains the business operations that modify orders.
// Every actor action is expressed as a command whose constructor validates its
// attributes and which is applied by the workflow orchestrator
// (ApplyTransitionCommandHandler) inside a unit of work.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// Savepointer isolates part of a transaction so that its failure does not abort
	// the rest.
	Savepointer interface {
		Savepoint(ctx context.Context, name string, fn func() error) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// AuditRepoFactory provides access to the audit log within a transaction.
	AuditRepoFactory interface {
		AuditLogRepository() ports.AuditLogRepository
	}

	// AuditUoW is what the audit log writer needs: a transaction and the audit log.
	AuditUoW interface {
		TxManager
		Savepointer
		AuditRepoFactory
	}

	// UoW manages transactions across orders and their audit trail.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, id)
	//   // ... mutate, Update, append audit in a savepoint
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		Savepointer
		OrderRepoFactory
		AuditRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)
