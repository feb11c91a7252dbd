package commands_test

import (
	"context"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	return m.Called(ctx, aggregate).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	return m.Called(ctx, aggregate).Error(0)
}

// Get accepts either an *order.Order or a func() *order.Order as first return value,
// so retries can be served a freshly restored aggregate each time.
func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	switch v := args.Get(0).(type) {
	case func() *order.Order:
		return v(), args.Error(1)
	case *order.Order:
		return v, args.Error(1)
	default:
		return nil, args.Error(1)
	}
}

func (m *MockOrderRepository) ListByStatuses(ctx context.Context, statuses ...order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListScheduledHomeCollections(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.Status]int64), args.Error(1)
}

type MockCollectorRepository struct{ mock.Mock }

func (m *MockCollectorRepository) Add(ctx context.Context, aggregate *collector.Collector) error {
	return m.Called(ctx, aggregate).Error(0)
}

func (m *MockCollectorRepository) Update(ctx context.Context, aggregate *collector.Collector) error {
	return m.Called(ctx, aggregate).Error(0)
}

func (m *MockCollectorRepository) Get(ctx context.Context, id kernel.UUID) (*collector.Collector, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collector.Collector), args.Error(1)
}

func (m *MockCollectorRepository) GetAll(ctx context.Context) ([]*collector.Collector, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collector.Collector), args.Error(1)
}

func (m *MockCollectorRepository) ListAvailable(ctx context.Context) ([]*collector.Collector, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collector.Collector), args.Error(1)
}

type MockUoW struct {
	mock.Mock
	orders     *MockOrderRepository
	collectors *MockCollectorRepository
}

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.orders
}

func (m *MockUoW) CollectorRepository() ports.CollectorRepository {
	return m.collectors
}

type mockUoWFactory struct{ uow *MockUoW }

func (f mockUoWFactory) Create() commands.UoW {
	return f.uow
}

// newMockUoW returns a unit of work whose transaction calls always succeed.
func newMockUoW() *MockUoW {
	uow := &MockUoW{orders: &MockOrderRepository{}, collectors: &MockCollectorRepository{}}
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	return uow
}
