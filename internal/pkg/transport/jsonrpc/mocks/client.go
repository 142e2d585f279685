// Package mocks holds testify mocks for the jsonrpc package.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// Client is a mock of jsonrpc.Client. Variadic params are flattened into the
// expected arguments, so an expectation reads On("Fetch", ctx, method, p1, p2).
type Client struct {
	mock.Mock
}

// Client_Expecter offers typed expectations.
type Client_Expecter struct {
	mock *mock.Mock
}

func (_m *Client) EXPECT() *Client_Expecter {
	return &Client_Expecter{mock: &_m.Mock}
}

// Fetch provides a mock function with given fields: ctx, method, params
func (_m *Client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	args := append([]any{ctx, method}, params...)
	ret := _m.Called(args...)

	if rf, ok := ret.Get(0).(func(context.Context, string, ...any) (json.RawMessage, error)); ok {
		return rf(ctx, method, params...)
	}

	var r0 json.RawMessage
	if v := ret.Get(0); v != nil {
		r0 = v.(json.RawMessage)
	}

	return r0, ret.Error(1)
}

// Client_Fetch_Call wraps a Fetch expectation.
type Client_Fetch_Call struct {
	*mock.Call
}

// Fetch registers an expectation for Fetch.
func (_e *Client_Expecter) Fetch(ctx any, method any, params ...any) *Client_Fetch_Call {
	return &Client_Fetch_Call{Call: _e.mock.On("Fetch", append([]any{ctx, method}, params...)...)}
}

func (_c *Client_Fetch_Call) Return(result json.RawMessage, err error) *Client_Fetch_Call {
	_c.Call.Return(result, err)
	return _c
}

func (_c *Client_Fetch_Call) Once() *Client_Fetch_Call {
	_c.Call.Once()
	return _c
}

// NewClient creates a Client mock whose expectations are asserted on test cleanup.
func NewClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *Client {
	m := &Client{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
