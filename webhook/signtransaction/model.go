package signtransaction

import (
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

// Request contains the body of a sign transaction request.
type Request struct {
	// SolanaTransaction is a base64-encoded Solana transaction
	SolanaTransaction []byte `json:"solana_transaction"`
}

// SuccessResponse represents a 200 OK response to a sign transaction request.
type SuccessResponse struct {
	// Signature is a base64-encoded signature over the transaction message.
	Signature []byte `json:"signature"`
}

// ForbiddenResponse represents a 403 Forbidden response to a sign transaction request.
type ForbiddenResponse struct {
	Message string `json:"message"`
}

func (r *SuccessResponse) GetSignature() (sig solana.Signature, err error) {
	if len(r.Signature) != solana.SignatureSize {
		return sig, errors.Errorf("signature has invalid length: %d", len(r.Signature))
	}

	copy(sig[:], r.Signature)
	return sig, nil
}
