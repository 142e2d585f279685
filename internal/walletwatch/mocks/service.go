// Package mocks holds testify mocks for the walletwatch package.
package mocks

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/walletwatch"

	"github.com/stretchr/testify/mock"
)

// Service is a mock of walletwatch.Service.
type Service struct {
	mock.Mock
}

// Service_Expecter offers typed expectations.
type Service_Expecter struct {
	mock *mock.Mock
}

func (_m *Service) EXPECT() *Service_Expecter {
	return &Service_Expecter{mock: &_m.Mock}
}

// Detect provides a mock function with given fields: ctx, tx
func (_m *Service) Detect(ctx context.Context, tx blockstream.Transaction) walletwatch.Result {
	ret := _m.Called(ctx, tx)

	if rf, ok := ret.Get(0).(func(context.Context, blockstream.Transaction) walletwatch.Result); ok {
		return rf(ctx, tx)
	}

	return ret.Get(0).(walletwatch.Result)
}

// Replace provides a mock function with given fields: watchList
func (_m *Service) Replace(watchList walletwatch.WatchList) {
	_m.Called(watchList)
}

// Len provides a mock function with no fields
func (_m *Service) Len() int {
	ret := _m.Called()
	return ret.Int(0)
}

// Service_Detect_Call wraps a Detect expectation.
type Service_Detect_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Detect(ctx any, tx any) *Service_Detect_Call {
	return &Service_Detect_Call{Call: _e.mock.On("Detect", ctx, tx)}
}

func (_c *Service_Detect_Call) Return(result walletwatch.Result) *Service_Detect_Call {
	_c.Call.Return(result)
	return _c
}

func (_c *Service_Detect_Call) RunAndReturn(run func(context.Context, blockstream.Transaction) walletwatch.Result) *Service_Detect_Call {
	_c.Call.Return(run)
	return _c
}

// Service_Replace_Call wraps a Replace expectation.
type Service_Replace_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Replace(watchList any) *Service_Replace_Call {
	return &Service_Replace_Call{Call: _e.mock.On("Replace", watchList)}
}

func (_c *Service_Replace_Call) Return() *Service_Replace_Call {
	_c.Call.Return()
	return _c
}

// Service_Len_Call wraps a Len expectation.
type Service_Len_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Len() *Service_Len_Call {
	return &Service_Len_Call{Call: _e.mock.On("Len")}
}

func (_c *Service_Len_Call) Return(n int) *Service_Len_Call {
	_c.Call.Return(n)
	return _c
}

// NewService creates a Service mock whose expectations are asserted on test cleanup.
func NewService(t interface {
	mock.TestingT
	Cleanup(func())
}) *Service {
	m := &Service{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
