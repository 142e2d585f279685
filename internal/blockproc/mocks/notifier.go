package mocks

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockproc"

	"github.com/stretchr/testify/mock"
)

// Notifier is a mock of blockproc.Notifier.
type Notifier struct {
	mock.Mock
}

// Notifier_Expecter offers typed expectations.
type Notifier_Expecter struct {
	mock *mock.Mock
}

func (_m *Notifier) EXPECT() *Notifier_Expecter {
	return &Notifier_Expecter{mock: &_m.Mock}
}

// NotifyTransaction provides a mock function with given fields: ctx, n
func (_m *Notifier) NotifyTransaction(ctx context.Context, n blockproc.Notification) error {
	return _m.Called(ctx, n).Error(0)
}

// NotifySystemEvent provides a mock function with given fields: ctx, level, message, metadata
func (_m *Notifier) NotifySystemEvent(ctx context.Context, level blockproc.Level, message string, metadata map[string]any) error {
	return _m.Called(ctx, level, message, metadata).Error(0)
}

// NotifyMetrics provides a mock function with given fields: ctx, m
func (_m *Notifier) NotifyMetrics(ctx context.Context, m blockproc.Metrics) error {
	return _m.Called(ctx, m).Error(0)
}

// Notifier_NotifyTransaction_Call wraps a NotifyTransaction expectation.
type Notifier_NotifyTransaction_Call struct {
	*mock.Call
}

func (_e *Notifier_Expecter) NotifyTransaction(ctx any, n any) *Notifier_NotifyTransaction_Call {
	return &Notifier_NotifyTransaction_Call{Call: _e.mock.On("NotifyTransaction", ctx, n)}
}

func (_c *Notifier_NotifyTransaction_Call) Return(err error) *Notifier_NotifyTransaction_Call {
	_c.Call.Return(err)
	return _c
}

// Notifier_NotifySystemEvent_Call wraps a NotifySystemEvent expectation.
type Notifier_NotifySystemEvent_Call struct {
	*mock.Call
}

func (_e *Notifier_Expecter) NotifySystemEvent(ctx any, level any, message any, metadata any) *Notifier_NotifySystemEvent_Call {
	return &Notifier_NotifySystemEvent_Call{Call: _e.mock.On("NotifySystemEvent", ctx, level, message, metadata)}
}

func (_c *Notifier_NotifySystemEvent_Call) Return(err error) *Notifier_NotifySystemEvent_Call {
	_c.Call.Return(err)
	return _c
}

// Notifier_NotifyMetrics_Call wraps a NotifyMetrics expectation.
type Notifier_NotifyMetrics_Call struct {
	*mock.Call
}

func (_e *Notifier_Expecter) NotifyMetrics(ctx any, m any) *Notifier_NotifyMetrics_Call {
	return &Notifier_NotifyMetrics_Call{Call: _e.mock.On("NotifyMetrics", ctx, m)}
}

func (_c *Notifier_NotifyMetrics_Call) Return(err error) *Notifier_NotifyMetrics_Call {
	_c.Call.Return(err)
	return _c
}

// NewNotifier creates a new instance of Notifier. It also registers a cleanup
// function to assert the mock's expectations.
func NewNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *Notifier {
	m := &Notifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
