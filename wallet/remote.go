package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-crowdfund/solana"
	"github.com/kinecosystem/agora-crowdfund/webhook/connect"
	"github.com/kinecosystem/agora-crowdfund/webhook/signtransaction"
)

const (
	connectPath = "/connect"
	signPath    = "/sign"

	// maxResponseSize bounds how much of a wallet service response is read.
	maxResponseSize = 64 * 1024
)

// Remote is a Wallet whose key is held by a wallet service. The service is
// asked for its public key on Connect, and for a signature on every
// SignTransaction.
type Remote struct {
	log    *logrus.Entry
	url    string
	origin string
	client *http.Client

	mu  sync.RWMutex
	pub ed25519.PublicKey
}

// NewRemote returns a Remote for the wallet service at url. If client is nil,
// http.DefaultClient is used.
func NewRemote(url, origin string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}

	return &Remote{
		log:    logrus.StandardLogger().WithField("type", "wallet/remote"),
		url:    strings.TrimSuffix(url, "/"),
		origin: origin,
		client: client,
	}
}

func (r *Remote) PublicKey() ed25519.PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pub
}

func (r *Remote) Connected() bool {
	return r.PublicKey() != nil
}

func (r *Remote) Connect(ctx context.Context) error {
	log := r.log.WithField("method", "Connect")

	var resp connect.SuccessResponse
	var forbidden connect.ForbiddenResponse
	status, err := r.post(ctx, connectPath, &connect.Request{Origin: r.origin}, &resp, &forbidden)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
	case http.StatusForbidden:
		log.WithField("message", forbidden.Message).Info("connection rejected by wallet")
		return ErrRejected
	default:
		return errors.Errorf("unexpected status code from wallet: %d", status)
	}

	pub, err := resp.GetPublicKey()
	if err != nil {
		return errors.Wrap(err, "invalid connect response")
	}

	r.mu.Lock()
	r.pub = pub
	r.mu.Unlock()

	log.WithField("public_key", base58.Encode(pub)).Debug("connected to wallet")
	return nil
}

func (r *Remote) SignTransaction(ctx context.Context, txn solana.Transaction) (solana.Transaction, error) {
	log := r.log.WithField("method", "SignTransaction")

	pub := r.PublicKey()
	if pub == nil {
		return txn, ErrNotConnected
	}

	var resp signtransaction.SuccessResponse
	var forbidden signtransaction.ForbiddenResponse
	req := &signtransaction.Request{SolanaTransaction: txn.Marshal()}
	status, err := r.post(ctx, signPath, req, &resp, &forbidden)
	if err != nil {
		return txn, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusForbidden:
		log.WithField("message", forbidden.Message).Info("transaction rejected by wallet")
		return txn, ErrRejected
	default:
		return txn, errors.Errorf("unexpected status code from wallet: %d", status)
	}

	sig, err := resp.GetSignature()
	if err != nil {
		return txn, errors.Wrap(err, "invalid sign response")
	}
	if !txn.VerifySignature(pub, sig) {
		return txn, errors.New("wallet returned an invalid signature")
	}

	signed := copyTransaction(txn)
	if err := signed.AddSignature(pub, sig); err != nil {
		return txn, err
	}

	return signed, nil
}

// post sends body to path, decoding a 200 response into success and a 403
// response into forbidden.
func (r *Remote) post(ctx context.Context, path string, body, success, forbidden interface{}) (int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+path, bytes.NewReader(b))
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "failed to call wallet")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to read wallet response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(respBody, success); err != nil {
			return resp.StatusCode, errors.Wrap(err, "failed to decode wallet response")
		}
	case http.StatusForbidden:
		// The message is informational, a rejection stands without it.
		if err := json.Unmarshal(respBody, forbidden); err != nil {
			r.log.WithError(err).Debug("failed to decode forbidden response")
		}
	}

	return resp.StatusCode, nil
}
