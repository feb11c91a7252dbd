package postgres_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	postgres_adapter "labdesk/internal/adapters/out/postgres"
	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/ports"
	"labdesk/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

// UnitOfWorkIntegrationTestSuite tests the GORM Unit of Work against a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	logs      *bytes.Buffer
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.logs = &bytes.Buffer{}
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, zerolog.New(suite.logs).Level(zerolog.DebugLevel))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, collectors").Error)
	suite.logs.Reset()
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitsOrderAndCollectorTogether() {
	ctx := context.Background()
	o := suite.homeOrder()
	c := suite.collector()
	suite.seed(o, c)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	loadedOrder, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	loadedCollector, err := uow.CollectorRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(loadedCollector.TakeAssignment())
	suite.Require().NoError(loadedOrder.AssignCollector(c.ID(), baseTime))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loadedOrder))
	suite.Require().NoError(uow.CollectorRepository().Update(ctx, loadedCollector))
	suite.Require().NoError(uow.Commit(ctx))

	gormUoW, ok := uow.(*postgres_adapter.GormUnitOfWork)
	suite.Require().True(ok)
	suite.Equal([]kernel.UUID{o.ID(), c.ID()}, gormUoW.TrackedIDs())
	suite.Contains(suite.logs.String(), "unit of work committed")
	suite.Contains(suite.logs.String(), o.ID().String())
	suite.Contains(suite.logs.String(), c.ID().String())

	storedCollector, err := suite.factory.Create().CollectorRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(1, storedCollector.CurrentAssignments())

	storedOrder, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.CollectionAssigned, storedOrder.HomeCollection().Status())
	suite.Equal(int64(2), storedOrder.Version())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsEverything() {
	ctx := context.Background()
	o := suite.homeOrder()
	c := suite.collector()
	suite.seed(o, c)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	loadedOrder, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	loadedCollector, err := uow.CollectorRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loadedCollector.TakeAssignment())
	suite.Require().NoError(loadedOrder.AssignCollector(c.ID(), baseTime))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loadedOrder))
	suite.Require().NoError(uow.CollectorRepository().Update(ctx, loadedCollector))
	suite.Require().NoError(uow.Rollback(ctx))
	suite.NotContains(suite.logs.String(), "unit of work committed")

	storedCollector, err := suite.factory.Create().CollectorRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(0, storedCollector.CurrentAssignments())
	suite.Equal(int64(1), storedCollector.Version())

	storedOrder, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.CollectionScheduled, storedOrder.HomeCollection().Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_LosingWriterGetsVersionConflict() {
	ctx := context.Background()
	o := suite.homeOrder()
	suite.seed(o)

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	a, err := first.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	// second reader sees version 1 as well, outside any transaction
	b, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(a.Cancel("duplicate", baseTime))
	suite.Require().NoError(first.OrderRepository().Update(ctx, a))
	suite.Require().NoError(first.Commit(ctx))

	suite.Require().NoError(b.AssignCollector(kernel.NewUUID(), baseTime))
	err = suite.factory.Create().OrderRepository().Update(ctx, b)
	suite.Require().ErrorIs(err, errs.ErrVersionConflict)

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Cancelled, stored.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) seed(o *order.Order, collectors ...*collector.Collector) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	for _, c := range collectors {
		suite.Require().NoError(uow.CollectorRepository().Add(ctx, c))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) homeOrder() *order.Order {
	item, err := order.NewTestItem("CAT-CBC", "Complete Blood Count", "CBC")
	suite.Require().NoError(err)
	hc, err := order.NewHomeCollectionDetail(baseTime.Add(time.Hour), "12 Park Street")
	suite.Require().NoError(err)
	o, err := order.NewOrder(order.Intake{
		ID:             kernel.NewUUID(),
		Number:         "ORD-2026-0001",
		PatientRef:     "PAT-1",
		Source:         order.HomeCollection,
		Priority:       kernel.Normal,
		Tests:          []*order.TestItem{item},
		HomeCollection: hc,
		CreatedAt:      baseTime,
	})
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) collector() *collector.Collector {
	c, err := collector.NewCollector(kernel.NewUUID(), "Ravi", "9800000000")
	suite.Require().NoError(err)
	return c
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
