package wallet

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

type MockWallet struct {
	sync.Mutex
	mock.Mock
}

func NewMockWallet() *MockWallet {
	return &MockWallet{}
}

func (m *MockWallet) PublicKey() ed25519.PublicKey {
	m.Lock()
	defer m.Unlock()

	args := m.Called()
	if pub, ok := args.Get(0).(ed25519.PublicKey); ok {
		return pub
	}
	return nil
}

func (m *MockWallet) Connected() bool {
	m.Lock()
	defer m.Unlock()

	args := m.Called()
	return args.Bool(0)
}

func (m *MockWallet) Connect(ctx context.Context) error {
	m.Lock()
	defer m.Unlock()

	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWallet) SignTransaction(ctx context.Context, txn solana.Transaction) (solana.Transaction, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(ctx, txn)
	return args.Get(0).(solana.Transaction), args.Error(1)
}
