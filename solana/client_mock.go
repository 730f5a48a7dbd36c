package solana

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	sync.Mutex
	mock.Mock
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetLatestBlockhash(commitment Commitment) (Blockhash, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(commitment)
	return args.Get(0).(Blockhash), args.Error(1)
}

func (m *MockClient) GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(size)
	switch t := args.Get(0).(type) {
	case int:
		return uint64(t), args.Error(1)
	case int64:
		return uint64(t), args.Error(1)
	case uint64:
		return t, args.Error(1)
	default:
		panic("invalid size parameter")
	}
}

func (m *MockClient) SendRawTransaction(raw []byte, preflight Commitment) (Signature, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(raw, preflight)
	return args.Get(0).(Signature), args.Error(1)
}

func (m *MockClient) ConfirmTransaction(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(ctx, sig, commitment)
	return args.Get(0).(*SignatureStatus), args.Error(1)
}

func (m *MockClient) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(sigs)
	return args.Get(0).([]*SignatureStatus), args.Error(1)
}

func (m *MockClient) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(account, commitment)
	return args.Get(0).(AccountInfo), args.Error(1)
}

func (m *MockClient) GetProgramAccounts(program ed25519.PublicKey, commitment Commitment) ([]KeyedAccount, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(program, commitment)
	return args.Get(0).([]KeyedAccount), args.Error(1)
}

func (m *MockClient) GetBalance(account ed25519.PublicKey, commitment Commitment) (uint64, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(account, commitment)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) RequestAirdrop(account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(account, lamports, commitment)
	return args.Get(0).(Signature), args.Error(1)
}
