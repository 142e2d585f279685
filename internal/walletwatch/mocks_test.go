package walletwatch

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockstream"

	"github.com/stretchr/testify/mock"
)

// PrevoutResolverMock is a mock of PrevoutResolver.
type PrevoutResolverMock struct {
	mock.Mock
}

func (_m *PrevoutResolverMock) GetRawTransaction(ctx context.Context, txid string) (blockstream.Transaction, error) {
	ret := _m.Called(ctx, txid)
	return ret.Get(0).(blockstream.Transaction), ret.Error(1)
}

func NewPrevoutResolverMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *PrevoutResolverMock {
	m := &PrevoutResolverMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
