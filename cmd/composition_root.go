package cmd

import (
	"errors"
	"time"

	httpapi "labdesk/internal/adapters/in/http"
	kafkaout "labdesk/internal/adapters/out/kafka"
	"labdesk/internal/adapters/out/memory"
	"labdesk/internal/adapters/out/postgres"
	redisout "labdesk/internal/adapters/out/redis"
	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/ports"
	"labdesk/internal/jobs"
	"labdesk/internal/pkg/metrics"
	"labdesk/internal/pkg/resilience"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters into use cases. With a gorm connection it runs on
// PostgreSQL; without one it runs on the in-memory store.
type CompositionRoot struct {
	config   Config
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	uows     ports.UnitOfWorkFactory
	numbers  ports.OrderNumberGenerator
	notifier ports.ReportNotifier
	registry *commands.OrderRegistry
	closers  []func() error
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger zerolog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		config:  config,
		logger:  logger,
		metrics: metrics.New(),
	}

	if gormDB != nil {
		c.uows = postgres.NewGormUnitOfWorkFactory(gormDB, logger)
	} else {
		logger.Warn().Msg("no database configured, orders are kept in memory")
		c.uows = memory.NewUnitOfWorkFactory(memory.NewStore())
	}

	if config.RedisAddr != "" {
		client := redisout.NewClient(config.RedisAddr, config.RedisPassword, config.RedisDB)
		c.numbers = redisout.NewOrderNumberGenerator(client, config.OrderNumberPrefix, logger)
		c.closers = append(c.closers, client.Close)
	} else {
		c.numbers = memory.NewOrderNumberGenerator()
	}

	if brokers := config.Brokers(); len(brokers) > 0 {
		writer := kafkaout.NewWriter(kafkaout.Config{
			Brokers:      brokers,
			Topic:        config.KafkaReportReadyTopic,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: 1,
		})
		breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("report-notifier"), c.metrics, logger)
		notifier := kafkaout.NewReportNotifier(writer, breaker, time.Now)
		c.notifier = notifier
		c.closers = append(c.closers, notifier.Close)
	} else {
		c.notifier = memory.NewReportNotifier(logger)
	}

	c.registry = commands.NewOrderRegistry(c.uowFactory(), time.Now, c.metrics, logger)
	return c
}

func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

// Close releases the redis client and flushes the kafka writer.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	return errors.Join(errList...)
}

func (c *CompositionRoot) uowFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uows.Create()
	})
}

func (c *CompositionRoot) collectorUoWFactory() commands.CollectorUoWFactory {
	return FuncCollectorUoWFactory(func() commands.CollectorUoW {
		return c.uows.Create()
	})
}

// Queries read outside any transaction.
func (c *CompositionRoot) orderReader() queries.OrderReader {
	return c.uows.Create().OrderRepository()
}

func (c *CompositionRoot) collectorReader() queries.CollectorReader {
	return c.uows.Create().CollectorRepository()
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.registry, c.numbers)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.registry)
}

func (c *CompositionRoot) CreateMarkCompletedCommandHandler() commands.MarkCompletedCommandHandler {
	return commands.NewMarkCompletedCommandHandler(c.registry, c.notifier, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		c.registry,
		c.CreateCancelOrderCommandHandler(),
		c.CreateMarkCompletedCommandHandler(),
	)
}

func (c *CompositionRoot) CreateAutoAssignCollectorsCommandHandler() commands.AutoAssignCollectorsCommandHandler {
	return commands.NewAutoAssignCollectorsCommandHandler(c.registry, c.uowFactory(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCreateCollectorCommandHandler() commands.CreateCollectorCommandHandler {
	return commands.NewCreateCollectorCommandHandler(c.collectorUoWFactory())
}

func (c *CompositionRoot) CreateSetCollectorAvailabilityCommandHandler() commands.SetCollectorAvailabilityCommandHandler {
	return commands.NewSetCollectorAvailabilityCommandHandler(c.collectorUoWFactory())
}

func (c *CompositionRoot) CreateGetLabWorklistQueryHandler() queries.GetLabWorklistQueryHandler {
	return queries.NewGetLabWorklistQueryHandler(c.orderReader())
}

// HTTPHandlers bundles every use case the API dispatches to.
func (c *CompositionRoot) HTTPHandlers() httpapi.Handlers {
	return httpapi.Handlers{
		CreateOrder:              c.CreateCreateOrderCommandHandler(),
		CancelOrder:              c.CreateCancelOrderCommandHandler(),
		MarkCompleted:            c.CreateMarkCompletedCommandHandler(),
		UpdateOrderStatus:        c.CreateUpdateOrderStatusCommandHandler(),
		AssignCollector:          commands.NewAssignCollectorCommandHandler(c.registry),
		ReassignCollector:        commands.NewReassignCollectorCommandHandler(c.registry),
		ReleaseCollector:         commands.NewReleaseCollectorCommandHandler(c.registry),
		AdvanceCollection:        commands.NewAdvanceCollectionCommandHandler(c.registry),
		AutoAssign:               c.CreateAutoAssignCollectorsCommandHandler(),
		Lab:                      commands.NewLabCommandHandler(c.registry),
		Reports:                  commands.NewReportCommandHandler(c.registry),
		CreateCollector:          c.CreateCreateCollectorCommandHandler(),
		SetCollectorAvailability: c.CreateSetCollectorAvailabilityCommandHandler(),
		GetOrder:                 queries.NewGetOrderQueryHandler(c.orderReader()),
		GetActiveOrders:          queries.NewGetActiveOrdersQueryHandler(c.orderReader()),
		GetLabWorklist:           c.CreateGetLabWorklistQueryHandler(),
		GetStatusSummary:         queries.NewGetOrderStatusSummaryQueryHandler(c.orderReader()),
		GetAllCollectors:         queries.NewGetAllCollectorsQueryHandler(c.collectorReader()),
	}
}

// JobManager returns the background jobs. The assignment job is included only when
// AUTO_ASSIGN_ENABLED is set.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	scheduled := []jobs.Job{
		jobs.NewLabQueueMetricsJob(c.CreateGetLabWorklistQueryHandler(), c.metrics, c.config.LabQueueMetricsSchedule, c.logger),
	}
	if c.config.AutoAssignEnabled {
		scheduled = append(scheduled, jobs.NewCollectionAssignmentJob(
			c.CreateAutoAssignCollectorsCommandHandler(),
			c.config.AutoAssignSchedule,
			c.config.AutoAssignLimit,
			c.logger,
		))
	}
	return jobs.NewJobManager(scheduled...)
}

type FuncCollectorUoWFactory func() commands.CollectorUoW

func (f FuncCollectorUoWFactory) Create() commands.CollectorUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
