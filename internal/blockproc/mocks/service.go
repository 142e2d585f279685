// Package mocks holds testify mocks for the blockproc package.
package mocks

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockproc"

	"github.com/stretchr/testify/mock"
)

// Service is a mock of blockproc.Service.
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

// Start provides a mock function with given fields: ctx
func (_m *Service) Start(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

// Close provides a mock function with no fields
func (_m *Service) Close() {
	_m.Called()
}

// Status provides a mock function with no fields
func (_m *Service) Status() blockproc.Status {
	return _m.Called().Get(0).(blockproc.Status)
}

// Poll provides a mock function with given fields: ctx
func (_m *Service) Poll(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

// ProcessBlock provides a mock function with given fields: ctx, height
func (_m *Service) ProcessBlock(ctx context.Context, height int64) error {
	return _m.Called(ctx, height).Error(0)
}

// Service_Start_Call wraps a Start expectation.
type Service_Start_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Start(ctx any) *Service_Start_Call {
	return &Service_Start_Call{Call: _e.mock.On("Start", ctx)}
}

func (_c *Service_Start_Call) Return(err error) *Service_Start_Call {
	_c.Call.Return(err)
	return _c
}

// Service_Close_Call wraps a Close expectation.
type Service_Close_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Close() *Service_Close_Call {
	return &Service_Close_Call{Call: _e.mock.On("Close")}
}

func (_c *Service_Close_Call) Return() *Service_Close_Call {
	_c.Call.Return()
	return _c
}

// Service_Status_Call wraps a Status expectation.
type Service_Status_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Status() *Service_Status_Call {
	return &Service_Status_Call{Call: _e.mock.On("Status")}
}

func (_c *Service_Status_Call) Return(status blockproc.Status) *Service_Status_Call {
	_c.Call.Return(status)
	return _c
}

// Service_Poll_Call wraps a Poll expectation.
type Service_Poll_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) Poll(ctx any) *Service_Poll_Call {
	return &Service_Poll_Call{Call: _e.mock.On("Poll", ctx)}
}

func (_c *Service_Poll_Call) Return(err error) *Service_Poll_Call {
	_c.Call.Return(err)
	return _c
}

// Service_ProcessBlock_Call wraps a ProcessBlock expectation.
type Service_ProcessBlock_Call struct {
	*mock.Call
}

func (_e *Service_Expecter) ProcessBlock(ctx any, height any) *Service_ProcessBlock_Call {
	return &Service_ProcessBlock_Call{Call: _e.mock.On("ProcessBlock", ctx, height)}
}

func (_c *Service_ProcessBlock_Call) Return(err error) *Service_ProcessBlock_Call {
	_c.Call.Return(err)
	return _c
}

// NewService creates a new instance of Service. It also registers a cleanup
// function to assert the mock's expectations.
func NewService(t interface {
	mock.TestingT
	Cleanup(func())
}) *Service {
	m := &Service{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
