package blockproc

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockstream"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// NodeMock is a mock of Node.
type NodeMock struct {
	mock.Mock
}

func (_m *NodeMock) Ping(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *NodeMock) GetBlockCount(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *NodeMock) GetBlockHash(ctx context.Context, height int64) (string, error) {
	ret := _m.Called(ctx, height)
	return ret.String(0), ret.Error(1)
}

func (_m *NodeMock) GetBlock(ctx context.Context, hash string) (*blockstream.Block, error) {
	ret := _m.Called(ctx, hash)

	var block *blockstream.Block
	if v := ret.Get(0); v != nil {
		block = v.(*blockstream.Block)
	}

	return block, ret.Error(1)
}

func NewNodeMock(t testingT) *NodeMock {
	m := &NodeMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// NotifierMock is a mock of Notifier.
type NotifierMock struct {
	mock.Mock
}

func (_m *NotifierMock) NotifyTransaction(ctx context.Context, n Notification) error {
	return _m.Called(ctx, n).Error(0)
}

func (_m *NotifierMock) NotifySystemEvent(ctx context.Context, level Level, message string, metadata map[string]any) error {
	return _m.Called(ctx, level, message, metadata).Error(0)
}

func (_m *NotifierMock) NotifyMetrics(ctx context.Context, m Metrics) error {
	return _m.Called(ctx, m).Error(0)
}

func NewNotifierMock(t testingT) *NotifierMock {
	m := &NotifierMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// PriceSourceMock is a mock of PriceSource.
type PriceSourceMock struct {
	mock.Mock
}

func (_m *PriceSourceMock) Price(ctx context.Context) (decimal.Decimal, bool) {
	ret := _m.Called(ctx)
	return ret.Get(0).(decimal.Decimal), ret.Bool(1)
}

func NewPriceSourceMock(t testingT) *PriceSourceMock {
	m := &PriceSourceMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
