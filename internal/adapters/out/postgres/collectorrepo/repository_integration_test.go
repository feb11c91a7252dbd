package collectorrepo_test

import (
	"context"
	"testing"
	"time"

	"labdesk/internal/adapters/out/postgres/collectorrepo"
	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type CollectorRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *collectorrepo.GormCollectorRepository
	tracker    *MockAggregateTracker
}

func (suite *CollectorRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&collectorrepo.CollectorDTO{}))
}

func (suite *CollectorRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE collectors").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = collectorrepo.NewGormCollectorRepository(suite.db, suite.tracker)
}

func (suite *CollectorRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CollectorRepositoryIntegrationTestSuite) TestAdd_ValidCollector_Success() {
	ctx := context.Background()
	c := suite.newCollector("Ravi")
	suite.tracker.On("TrackAggregate", c.ID(), c).Once()

	suite.Require().NoError(suite.repository.Add(ctx, c))

	loaded, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal("Ravi", loaded.Name())
	suite.True(loaded.IsAvailable())
	suite.Equal(0, loaded.CurrentAssignments())
	suite.Equal(int64(1), loaded.Version())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CollectorRepositoryIntegrationTestSuite) TestGet_NonExistentCollector_ReturnsNotFoundError() {
	loaded, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Nil(loaded)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *CollectorRepositoryIntegrationTestSuite) TestUpdate_CountersAndVersion() {
	ctx := context.Background()
	c := suite.newCollector("Ravi")
	suite.tracker.On("TrackAggregate", c.ID(), mock.Anything).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, c))

	suite.Require().NoError(c.TakeAssignment())
	suite.Require().NoError(suite.repository.Update(ctx, c))
	suite.Equal(int64(2), c.Version())

	loaded, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(1, loaded.CurrentAssignments())
	suite.Equal(int64(2), loaded.Version())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CollectorRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsVersionConflict() {
	ctx := context.Background()
	c := suite.newCollector("Ravi")
	suite.tracker.On("TrackAggregate", c.ID(), mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, c))

	stale, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)

	c.SetAvailability(false)
	suite.Require().NoError(suite.repository.Update(ctx, c))

	suite.Require().NoError(stale.TakeAssignment())
	err = suite.repository.Update(ctx, stale)

	var conflict *errs.VersionConflictError
	suite.Require().ErrorAs(err, &conflict)
	suite.Equal("collector", conflict.Aggregate)
	suite.Equal(int64(2), conflict.Actual)

	loaded, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(0, loaded.CurrentAssignments())
	suite.False(loaded.IsAvailable())
}

func (suite *CollectorRepositoryIntegrationTestSuite) TestListAvailable_LeastLoadedFirst() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	busy := suite.newCollector("Anil")
	suite.Require().NoError(busy.TakeAssignment())
	suite.Require().NoError(busy.TakeAssignment())
	idle := suite.newCollector("Zoya")
	offDuty := suite.newCollector("Meera")
	offDuty.SetAvailability(false)
	for _, c := range []*collector.Collector{busy, idle, offDuty} {
		suite.Require().NoError(suite.repository.Add(ctx, c))
	}

	available, err := suite.repository.ListAvailable(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(available, 2)
	suite.Equal(idle.ID(), available[0].ID())
	suite.Equal(busy.ID(), available[1].ID())

	all, err := suite.repository.GetAll(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	suite.Equal("Anil", all[0].Name())
	suite.Equal("Zoya", all[2].Name())
}

func (suite *CollectorRepositoryIntegrationTestSuite) newCollector(name string) *collector.Collector {
	c, err := collector.NewCollector(kernel.NewUUID(), name, "9800000000")
	suite.Require().NoError(err)
	return c
}

func TestCollectorRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(CollectorRepositoryIntegrationTestSuite))
}
