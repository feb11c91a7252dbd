package queries_test

import (
	"context"
	"testing"
	"time"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderReader) ListByStatuses(ctx context.Context, statuses ...order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderReader) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.Status]int64), args.Error(1)
}

type MockCollectorReader struct{ mock.Mock }

func (m *MockCollectorReader) GetAll(ctx context.Context) ([]*collector.Collector, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*collector.Collector), args.Error(1)
}

func newWalkInOrder(t *testing.T, number string, priority kernel.Priority, codes ...string) *order.Order {
	t.Helper()
	tests := make([]*order.TestItem, 0, len(codes))
	for _, code := range codes {
		item, err := order.NewTestItem("CAT-"+code, code, code)
		require.NoError(t, err)
		tests = append(tests, item)
	}
	o, err := order.NewOrder(order.Intake{
		ID:         kernel.NewUUID(),
		Number:     number,
		PatientRef: "PAT-1",
		Source:     order.WalkIn,
		Priority:   priority,
		Tests:      tests,
		CreatedAt:  baseTime,
	})
	require.NoError(t, err)
	return o
}
