package wallet

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrRejected     = errors.New("wallet rejected request")
)

// Wallet holds the key that pays for and signs transactions.
type Wallet interface {
	// PublicKey returns the wallet's key, or nil if the wallet is not connected.
	PublicKey() ed25519.PublicKey

	Connected() bool

	// Connect establishes a session with the wallet, after which PublicKey
	// is available.
	Connect(ctx context.Context) error

	// SignTransaction returns a copy of txn carrying the wallet's signature.
	//
	// ErrRejected is returned if the user (or service) declined to sign.
	SignTransaction(ctx context.Context, txn solana.Transaction) (solana.Transaction, error)
}

func copyTransaction(txn solana.Transaction) solana.Transaction {
	sigs := make([]solana.Signature, len(txn.Signatures))
	copy(sigs, txn.Signatures)
	txn.Signatures = sigs
	return txn
}
