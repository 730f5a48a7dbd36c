package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-crowdfund/solana"
	"github.com/kinecosystem/agora-crowdfund/solana/system"
	"github.com/kinecosystem/agora-crowdfund/webhook/connect"
	"github.com/kinecosystem/agora-crowdfund/webhook/signtransaction"
)

type walletService struct {
	sync.Mutex
	key ed25519.PrivateKey

	rejectConnect bool
	rejectSign    bool
	badSignature  bool

	connects int
	signs    []solana.Transaction
}

func newWalletService(t *testing.T) (*walletService, *Remote) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s := &walletService{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("/connect", func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		s.connects++

		var req connect.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if s.rejectConnect {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(&connect.ForbiddenResponse{Message: "user declined"})
			return
		}

		_ = json.NewEncoder(w).Encode(&connect.SuccessResponse{
			PublicKey: base58.Encode(s.key.Public().(ed25519.PublicKey)),
		})
	})
	mux.HandleFunc("/sign", func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		var req signtransaction.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var txn solana.Transaction
		if err := txn.Unmarshal(req.SolanaTransaction); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.signs = append(s.signs, txn)

		if s.rejectSign {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(&signtransaction.ForbiddenResponse{Message: "user declined"})
			return
		}

		msg := txn.Message.Marshal()
		if s.badSignature {
			msg = append(msg, 0)
		}

		_ = json.NewEncoder(w).Encode(&signtransaction.SuccessResponse{
			Signature: ed25519.Sign(s.key, msg),
		})
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return s, NewRemote(server.URL+"/", "crowdfund-test", server.Client())
}

func (s *walletService) set(f func()) {
	s.Lock()
	defer s.Unlock()
	f()
}

func TestRemote_Connect(t *testing.T) {
	s, remote := newWalletService(t)

	assert.False(t, remote.Connected())
	assert.Nil(t, remote.PublicKey())

	require.NoError(t, remote.Connect(context.Background()))
	assert.True(t, remote.Connected())
	assert.Equal(t, s.key.Public(), remote.PublicKey())
	s.set(func() { assert.Equal(t, 1, s.connects) })
}

func TestRemote_ConnectRejected(t *testing.T) {
	s, remote := newWalletService(t)
	s.set(func() { s.rejectConnect = true })

	assert.Equal(t, ErrRejected, remote.Connect(context.Background()))
	assert.False(t, remote.Connected())
}

func TestRemote_ConnectUnavailable(t *testing.T) {
	_, remote := newWalletService(t)
	remote.url += "/broken"

	assert.Error(t, remote.Connect(context.Background()))
	assert.False(t, remote.Connected())
}

func TestRemote_ConnectCancelled(t *testing.T) {
	_, remote := newWalletService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, remote.Connect(ctx))
	assert.False(t, remote.Connected())
}

func TestRemote_SignTransaction(t *testing.T) {
	s, remote := newWalletService(t)

	to := generateKey(t)

	// A signature can't be requested before connecting.
	_, err := remote.SignTransaction(context.Background(), solana.NewTransaction(to))
	assert.Equal(t, ErrNotConnected, err)
	s.set(func() { assert.Empty(t, s.signs) })

	require.NoError(t, remote.Connect(context.Background()))

	txn := solana.NewTransaction(remote.PublicKey(), system.Transfer(remote.PublicKey(), to, 10))
	txn.SetBlockhash(solana.Blockhash{4, 5, 6})

	signed, err := remote.SignTransaction(context.Background(), txn)
	require.NoError(t, err)
	assert.True(t, signed.VerifySignature(remote.PublicKey(), signed.Signature()))
	assert.Equal(t, signed.Message, txn.Message)
	assert.Equal(t, solana.Signature{}, txn.Signature())

	s.set(func() {
		require.Len(t, s.signs, 1)
		assert.Equal(t, txn.Message, s.signs[0].Message)
	})
}

func TestRemote_SignTransactionRejected(t *testing.T) {
	s, remote := newWalletService(t)
	require.NoError(t, remote.Connect(context.Background()))

	txn := solana.NewTransaction(remote.PublicKey())

	s.set(func() { s.rejectSign = true })
	_, err := remote.SignTransaction(context.Background(), txn)
	assert.Equal(t, ErrRejected, err)

	s.set(func() {
		s.rejectSign = false
		s.badSignature = true
	})
	_, err = remote.SignTransaction(context.Background(), txn)
	assert.Error(t, err)
	assert.NotEqual(t, ErrRejected, err)
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}
