package connect

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Request contains the body of a connect request.
type Request struct {
	// Origin identifies the application asking for the wallet's key.
	Origin string `json:"origin,omitempty"`
}

// SuccessResponse represents a 200 OK response to a connect request.
type SuccessResponse struct {
	// PublicKey is the base58-encoded public key of the wallet.
	PublicKey string `json:"public_key"`
}

func (r *SuccessResponse) GetPublicKey() (ed25519.PublicKey, error) {
	if len(r.PublicKey) == 0 {
		return nil, errors.New("public_key cannot have length of 0")
	}

	b, err := base58.Decode(r.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "public_key was not valid base58")
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.Errorf("public_key has invalid length: %d", len(b))
	}

	return b, nil
}

// ForbiddenResponse represents a 403 Forbidden response to a connect request,
// sent when the user declines the connection.
type ForbiddenResponse struct {
	Message string `json:"message"`
}
