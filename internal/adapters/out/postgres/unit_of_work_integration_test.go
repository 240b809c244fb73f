package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/suite"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM unit of work against a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(pg.DB)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.AuditLogRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Require().Error(uow.Commit(ctx), "Should error when committing without active transaction")
	suite.Require().Error(uow.Rollback(ctx), "Should error when rolling back without active transaction")
	suite.Require().Error(uow.Savepoint(ctx, "audit_append", func() error { return nil }))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitPersistsOrderAndAudit() {
	// Given
	ctx := context.Background()
	o := newOrder(suite.T())
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	// When
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	err := uow.Savepoint(ctx, "audit_append", func() error {
		return uow.AuditLogRepository().Append(ctx, audit.NewCreatedEvent(o, buyerOf(suite.T(), o), time.Now()))
	})
	suite.Require().NoError(err)
	suite.Require().NoError(uow.Commit(ctx))

	// Then
	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Draft, stored.State())
	events, err := suite.factory.Create().AuditLogRepository().ListByOrder(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Len(events, 1)
	suite.Equal([]kernel.UUID{o.ID()}, uow.(*postgres_adapter.GormUnitOfWork).TrackedIDs())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsChanges() {
	ctx := context.Background()
	o := newOrder(suite.T())
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().Error(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_FailedSavepointKeepsTransactionUsable() {
	// Given
	ctx := context.Background()
	o := newOrder(suite.T())
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	// When the audit insert violates a constraint inside the savepoint
	orphan := audit.NewCreatedEvent(newOrder(suite.T()), kernel.SystemActor(), time.Now())
	err := uow.Savepoint(ctx, "audit_append", func() error {
		return uow.AuditLogRepository().Append(ctx, orphan)
	})
	suite.Require().Error(err)

	// Then the order write still commits
	suite.Require().NoError(uow.Commit(ctx))
	_, err = suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SavepointReturnsCallbackError() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()
	boom := errors.New("boom")

	err := uow.Savepoint(ctx, "audit_append", func() error { return boom })

	suite.Require().ErrorIs(err, boom)
	suite.Require().Error(uow.Savepoint(ctx, "bad name;", func() error { return nil }))
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "Hoodie run", 500, "s3://designs/hoodie.pdf", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func buyerOf(t *testing.T, o *order.Order) kernel.Actor {
	t.Helper()
	id := o.BuyerID()
	a, err := kernel.NewActor(kernel.RoleBuyer, &id)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
