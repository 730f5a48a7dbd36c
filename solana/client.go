package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
	"mfycheng.dev/retry"
	"mfycheng.dev/retry/backoff"

	"github.com/kinecosystem/agora-crowdfund/metrics"
)

const (
	// todo: we can retrieve these from the Syscall account
	//       but they're unlikely to change.
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is the rate at which signature statuses should be polled at.
	PollRate = (time.Second / slotsPerSec) / 2

	// confirmationPollLimit bounds ConfirmTransaction to roughly 64 slots,
	// which comfortably covers the time it takes to finalize.
	confirmationPollLimit = 4 * 32
)

var (
	rpcCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crowdfund",
		Name:      "solana_rpc",
		Help:      "Number of Solana RPCs made",
	}, []string{"rpc_method"})

	rpcErrorCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crowdfund",
		Name:      "solana_rpc_error",
		Help:      "Number of Solana RPC errors",
	}, []string{"rpc_method", "error_code"})
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

var (
	CommitmentProcessed = Commitment{Commitment: "processed"}
	CommitmentConfirmed = Commitment{Commitment: "confirmed"}
	CommitmentFinalized = Commitment{Commitment: "finalized"}
)

// ParseCommitment returns the Commitment with the provided name.
func ParseCommitment(s string) (Commitment, error) {
	switch s {
	case CommitmentProcessed.Commitment:
		return CommitmentProcessed, nil
	case CommitmentConfirmed.Commitment, "":
		return CommitmentConfirmed, nil
	case CommitmentFinalized.Commitment:
		return CommitmentFinalized, nil
	default:
		return Commitment{}, errors.Errorf("unknown commitment: %s", s)
	}
}

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

var (
	ErrNoAccountInfo       = errors.New("no account info")
	ErrSignatureNotFound   = errors.New("transaction not found")
	ErrConfirmationTimeout = errors.New("transaction not confirmed in time")
)

// AccountInfo contains the Solana account information.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// KeyedAccount is an account along with its address.
type KeyedAccount struct {
	Address ed25519.PublicKey
	Account AccountInfo
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations *int

	// ConfirmationStatus is the cluster's commitment level for the transaction,
	// if reported by the node.
	ConfirmationStatus string
}

// Satisfies reports whether the status has reached the requested commitment.
func (s *SignatureStatus) Satisfies(commitment Commitment) bool {
	if s == nil {
		return false
	}

	if s.ConfirmationStatus != "" {
		return Commitment{Commitment: s.ConfirmationStatus}.rank() >= commitment.rank()
	}

	switch commitment {
	case CommitmentProcessed:
		return true
	case CommitmentConfirmed:
		return s.Confirmations == nil || *s.Confirmations > 0
	default:
		return s.Confirmations == nil
	}
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/developing/clients/jsonrpc-api
type Client interface {
	GetLatestBlockhash(Commitment) (Blockhash, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	SendRawTransaction(raw []byte, preflight Commitment) (Signature, error)
	ConfirmTransaction(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error)
	GetSignatureStatuses([]Signature) ([]*SignatureStatus, error)
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetProgramAccounts(program ed25519.PublicKey, commitment Commitment) ([]KeyedAccount, error)
	GetBalance(ed25519.PublicKey, Commitment) (uint64, error)
	RequestAirdrop(ed25519.PublicKey, uint64, Commitment) (Signature, error)
}

var (
	errRateLimited             = errors.New("rate limited")
	errServiceError            = errors.New("service error")
	errConfirmationsNotReached = errors.New("confirmations not reached")
)

type rpcResponse struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value interface{} `json:"value"`
}

type rpcAccount struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
}

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	retrier retry.Retrier
}

func init() {
	registerMetrics()
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log:    logrus.StandardLogger().WithField("type", "solana/client"),
		client: jsonrpc.NewClientWithOpts(endpoint, opts),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		rpcCounterVec.WithLabelValues(method).Inc()

		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		rpcErr, ok := err.(*jsonrpc.RPCError)
		if !ok {
			rpcErrorCounterVec.WithLabelValues(method, "").Inc()
			return err
		}
		rpcErrorCounterVec.WithLabelValues(method, strconv.Itoa(rpcErr.Code)).Inc()
		if rpcErr.Code == 429 {
			return errRateLimited
		}
		if rpcErr.Code >= 500 {
			return errServiceError
		}

		return err
	})
	return err
}

func (c *client) GetLatestBlockhash(commitment Commitment) (hash Blockhash, err error) {
	type response struct {
		Value struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}

	// note: we have to wrap the commitment in an []interface{} otherwise the
	//       solana RPC node complains. Technically this is a violation of the
	//       JSON RPC v2.0 standard.
	var resp response
	if err := c.call(&resp, "getLatestBlockhash", []interface{}{commitment}); err != nil {
		return hash, errors.Wrapf(err, "failed to send request")
	}

	hashBytes, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded hash in response")
	}
	if len(hashBytes) != HashSize {
		return hash, errors.Errorf("invalid hash size in response: %d", len(hashBytes))
	}

	copy(hash[:], hashBytes)
	return hash, nil
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "failed to send request")
	}

	return lamports, nil
}

// SendRawTransaction submits an already signed, serialized transaction.
//
// If the node rejects the transaction during preflight, the returned error is
// a *TransactionError.
func (c *client) SendRawTransaction(raw []byte, preflight Commitment) (Signature, error) {
	config := struct {
		Encoding            string `json:"encoding"`
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		Encoding:            "base64",
		SkipPreflight:       false,
		PreflightCommitment: preflight.Commitment,
	}

	var sigStr string
	err := c.call(&sigStr, "sendTransaction", base64.StdEncoding.EncodeToString(raw), config)
	if err != nil {
		jsonRPCErr, ok := err.(*jsonrpc.RPCError)
		if !ok {
			return Signature{}, errors.Wrapf(err, "failed to send request")
		}

		txErr, parseErr := ParseRPCError(jsonRPCErr)
		if parseErr != nil || txErr == nil {
			return Signature{}, err
		}

		return Signature{}, txErr
	}

	sigBytes, err := base58.Decode(sigStr)
	if err != nil {
		return Signature{}, errors.Wrap(err, "invalid signature in response")
	}
	if len(sigBytes) != SignatureSize {
		return Signature{}, errors.Errorf("invalid signature size in response: %d", len(sigBytes))
	}

	var sig Signature
	copy(sig[:], sigBytes)
	return sig, nil
}

// ConfirmTransaction polls the status of sig until it reaches commitment, fails,
// or the context is done.
//
// A transaction that failed on chain is returned with a nil error; callers
// should inspect SignatureStatus.ErrorResult.
func (c *client) ConfirmTransaction(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error) {
	var s *SignatureStatus
	_, err := retry.Retry(
		func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			statuses, err := c.GetSignatureStatuses([]Signature{sig})
			if err != nil {
				return err
			}

			s = statuses[0]
			if s == nil {
				return ErrSignatureNotFound
			}
			if s.ErrorResult != nil {
				return nil
			}
			if s.Satisfies(commitment) {
				return nil
			}

			return errConfirmationsNotReached
		},
		retry.RetriableErrors(ErrSignatureNotFound, errConfirmationsNotReached),
		retry.Limit(confirmationPollLimit),
		retry.Backoff(backoff.Constant(PollRate), PollRate),
	)

	if err == ErrSignatureNotFound || err == errConfirmationsNotReached {
		c.log.WithFields(logrus.Fields{
			"signature":  sig.String(),
			"commitment": commitment.Commitment,
		}).Warn("transaction not confirmed before poll limit")
		return s, ErrConfirmationTimeout
	}

	return s, err
}

func (c *client) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	b58Sigs := make([]string, len(sigs))
	for i := range sigs {
		b58Sigs[i] = base58.Encode(sigs[i][:])
	}

	req := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: false,
	}

	type signatureStatus struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}

	type rpcResp struct {
		Context struct {
			Slot int `json:"slot"`
		} `json:"context"`
		Value []*signatureStatus `json:"value"`
	}

	var resp rpcResp
	if err := c.call(&resp, "getSignatureStatuses", b58Sigs, req); err != nil {
		return nil, err
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		statuses[i] = &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 {
			var txError interface{}
			decoder := json.NewDecoder(bytes.NewBuffer(v.Err))
			decoder.UseNumber()
			if err := decoder.Decode(&txError); err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}

			var err error
			statuses[i].ErrorResult, err = ParseTransactionError(txError)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
		}
	}

	return statuses, nil
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	type rpcResponse struct {
		Value *rpcAccount `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp rpcResponse
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account[:]), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	return resp.Value.toAccountInfo()
}

func (c *client) GetProgramAccounts(program ed25519.PublicKey, commitment Commitment) ([]KeyedAccount, error) {
	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp []struct {
		PubKey  string     `json:"pubkey"`
		Account rpcAccount `json:"account"`
	}
	if err := c.call(&resp, "getProgramAccounts", base58.Encode(program), rpcConfig); err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}

	accounts := make([]KeyedAccount, len(resp))
	for i := range resp {
		var err error
		accounts[i].Address, err = base58.Decode(resp[i].PubKey)
		if err != nil {
			return nil, errors.Wrap(err, "invalid base58 encoded account address")
		}

		accounts[i].Account, err = resp[i].Account.toAccountInfo()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid account %s", resp[i].PubKey)
		}
	}

	return accounts, nil
}

func (c *client) GetBalance(account ed25519.PublicKey, commitment Commitment) (uint64, error) {
	var resp rpcResponse
	if err := c.call(&resp, "getBalance", base58.Encode(account[:]), commitment); err != nil {
		return 0, errors.Wrapf(err, "failed to send request")
	}

	switch v := resp.Value.(type) {
	case float64:
		return uint64(v), nil
	case json.Number:
		balance, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "invalid balance in response")
		}
		return balance, nil
	}

	return 0, errors.Errorf("invalid value in response")
}

func (c *client) RequestAirdrop(account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	var sigStr string
	if err := c.call(&sigStr, "requestAirdrop", base58.Encode(account[:]), lamports, commitment); err != nil {
		return Signature{}, errors.Wrapf(err, "failed to send request")
	}

	sigBytes, err := base58.Decode(sigStr)
	if err != nil {
		return Signature{}, errors.Wrap(err, "invalid signature in response")
	}

	var sig Signature
	copy(sig[:], sigBytes)

	if sig == (Signature{}) {
		return Signature{}, errors.New("empty signature returned")
	}

	return sig, nil
}

func (a rpcAccount) toAccountInfo() (info AccountInfo, err error) {
	info.Owner, err = base58.Decode(a.Owner)
	if err != nil {
		return info, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(a.Data) > 0 {
		info.Data, err = base64.StdEncoding.DecodeString(a.Data[0])
		if err != nil {
			return info, errors.Wrap(err, "invalid base64 encoded data")
		}
	}

	info.Lamports = a.Lamports
	info.Executable = a.Executable
	return info, nil
}

func registerMetrics() {
	rpcCounterVec = metrics.RegisterCounterVec(rpcCounterVec)
	rpcErrorCounterVec = metrics.RegisterCounterVec(rpcErrorCounterVec)
}
