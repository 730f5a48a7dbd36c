package crowdfund

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-crowdfund/campaign"
	"github.com/kinecosystem/agora-crowdfund/solana"
	"github.com/kinecosystem/agora-crowdfund/solana/system"
	"github.com/kinecosystem/agora-crowdfund/wallet"
)

var (
	// ErrNotCampaign indicates an account is not a campaign of the program.
	ErrNotCampaign = errors.New("account is not a campaign")
)

// Created is the outcome of a confirmed campaign creation.
type Created struct {
	Address   ed25519.PublicKey
	Seed      string
	Signature solana.Signature
	Status    *solana.SignatureStatus
}

// Submitted is the outcome of a confirmed donate or withdraw transaction.
type Submitted struct {
	Signature solana.Signature
	Status    *solana.SignatureStatus
}

// Listing is a campaign found on chain.
type Listing struct {
	Address  ed25519.PublicKey
	Lamports uint64
	Record   campaign.Record
}

// Client submits crowdfunding transactions paid for and signed by a wallet.
type Client struct {
	log        *logrus.Entry
	sc         solana.Client
	wallet     wallet.Wallet
	program    ed25519.PublicKey
	commitment solana.Commitment
	seeds      SeedGenerator
}

// Option configures a Client.
type Option func(c *Client)

// WithCommitment sets the commitment used for reads, preflight and
// confirmation. The default is solana.CommitmentConfirmed.
func WithCommitment(commitment solana.Commitment) Option {
	return func(c *Client) {
		c.commitment = commitment
	}
}

// WithSeedGenerator replaces RandomSeed as the source of account seeds.
func WithSeedGenerator(g SeedGenerator) Option {
	return func(c *Client) {
		c.seeds = g
	}
}

// New returns a Client for the campaign program at program, paying and
// signing with w.
func New(sc solana.Client, w wallet.Wallet, program ed25519.PublicKey, opts ...Option) *Client {
	c := &Client{
		log:        logrus.StandardLogger().WithField("type", "crowdfund/client"),
		sc:         sc,
		wallet:     w,
		program:    program,
		commitment: solana.CommitmentConfirmed,
		seeds:      RandomSeed,
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// SetPayerAndBlockhashTransaction returns a transaction containing the
// instructions in order, paid for by the wallet, with a freshly fetched
// recent blockhash.
func (c *Client) SetPayerAndBlockhashTransaction(instructions ...solana.Instruction) (solana.Transaction, error) {
	payer := c.wallet.PublicKey()
	if payer == nil {
		return solana.Transaction{}, wallet.ErrNotConnected
	}

	bh, err := c.sc.GetLatestBlockhash(c.commitment)
	if err != nil {
		return solana.Transaction{}, err
	}

	txn := solana.NewTransaction(payer, instructions...)
	txn.SetBlockhash(bh)
	return txn, nil
}

// SignAndSendTransaction has the wallet sign txn, then submits it.
//
// Errors are logged and returned as is.
func (c *Client) SignAndSendTransaction(ctx context.Context, txn solana.Transaction) (solana.Signature, error) {
	log := c.log.WithField("method", "SignAndSendTransaction")

	signed, err := c.wallet.SignTransaction(ctx, txn)
	if err != nil {
		log.WithError(err).Warn("failed to sign transaction")
		return solana.Signature{}, err
	}

	sig, err := c.sc.SendRawTransaction(signed.Marshal(), c.commitment)
	if err != nil {
		entry := log.WithError(err)
		var txErr *solana.TransactionError
		if errors.As(err, &txErr) && len(txErr.Logs) > 0 {
			entry = entry.WithField("logs", txErr.Logs)
		}
		entry.Warn("failed to send transaction")
		return solana.Signature{}, err
	}

	log.WithField("signature", sig.String()).Debug("sent transaction")
	return sig, nil
}

// CreateCampaign creates a campaign record administered by the wallet, in an
// account derived from the wallet and a fresh seed.
//
// Failures to sign or send are returned as is. Other failures are wrapped,
// and a transaction that fails on chain is returned as a wrapped
// *solana.TransactionError.
func (c *Client) CreateCampaign(ctx context.Context, name, description, imageLink string) (created *Created, err error) {
	defer func() { recordOperation("create", err) }()

	log := c.log.WithField("method", "CreateCampaign")

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	admin := c.wallet.PublicKey()

	seed, err := c.seeds()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate seed")
	}

	address, err := solana.CreateWithSeed(admin, seed, c.program)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive campaign address")
	}

	record := campaign.NewRecord(admin, name, description, imageLink)
	data, err := campaign.CreateCampaignData(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize campaign")
	}
	space := uint64(record.Size())

	// Rent covers the full instruction data, which is one byte more than the
	// account holds.
	lamports, err := c.sc.GetMinimumBalanceForRentExemption(uint64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rent exemption balance")
	}

	log = log.WithFields(logrus.Fields{
		"address":  base58.Encode(address),
		"seed":     seed,
		"lamports": lamports,
		"space":    space,
	})

	txn, err := c.SetPayerAndBlockhashTransaction(
		system.CreateAccountWithSeed(admin, address, admin, seed, lamports, space, c.program),
		campaign.CreateCampaign(c.program, address, admin, data),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction")
	}

	sig, status, err := c.submit(ctx, log, txn)
	if err != nil {
		return nil, err
	}

	return &Created{
		Address:   address,
		Seed:      seed,
		Signature: sig,
		Status:    status,
	}, nil
}

// Donate moves lamports from the wallet to a campaign.
//
// The lamports are first placed in a new donation account owned by the
// program, which the program then drains into the campaign.
func (c *Client) Donate(ctx context.Context, campaignAddr ed25519.PublicKey, lamports uint64) (submitted *Submitted, err error) {
	defer func() { recordOperation("donate", err) }()

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	donor := c.wallet.PublicKey()

	seed, err := c.seeds()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate seed")
	}

	donation, err := solana.CreateWithSeed(donor, seed, c.program)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive donation address")
	}

	log := c.log.WithFields(logrus.Fields{
		"method":   "Donate",
		"campaign": base58.Encode(campaignAddr),
		"donation": base58.Encode(donation),
		"lamports": lamports,
	})

	txn, err := c.SetPayerAndBlockhashTransaction(
		system.CreateAccountWithSeed(donor, donation, donor, seed, lamports, 0, c.program),
		campaign.Donate(c.program, campaignAddr, donation, donor),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction")
	}

	sig, status, err := c.submit(ctx, log, txn)
	if err != nil {
		return nil, err
	}

	return &Submitted{Signature: sig, Status: status}, nil
}

// Withdraw moves lamports from a campaign administered by the wallet back
// to the wallet.
func (c *Client) Withdraw(ctx context.Context, campaignAddr ed25519.PublicKey, lamports uint64) (submitted *Submitted, err error) {
	defer func() { recordOperation("withdraw", err) }()

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	admin := c.wallet.PublicKey()

	log := c.log.WithFields(logrus.Fields{
		"method":   "Withdraw",
		"campaign": base58.Encode(campaignAddr),
		"lamports": lamports,
	})

	instruction, err := campaign.Withdraw(c.program, campaignAddr, admin, lamports)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build withdraw instruction")
	}

	txn, err := c.SetPayerAndBlockhashTransaction(instruction)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction")
	}

	sig, status, err := c.submit(ctx, log, txn)
	if err != nil {
		return nil, err
	}

	return &Submitted{Signature: sig, Status: status}, nil
}

// GetCampaign returns the campaign record stored at addr.
func (c *Client) GetCampaign(addr ed25519.PublicKey) (*campaign.Record, error) {
	info, err := c.sc.GetAccountInfo(addr, c.commitment)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get account %s", base58.Encode(addr))
	}

	if !bytes.Equal(info.Owner, c.program) {
		return nil, ErrNotCampaign
	}

	var r campaign.Record
	if err := r.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(ErrNotCampaign, "invalid campaign data: %v", err)
	}

	return &r, nil
}

// ListCampaigns returns every campaign owned by the program. Program accounts
// that don't hold a campaign record are skipped.
func (c *Client) ListCampaigns() ([]Listing, error) {
	accounts, err := c.sc.GetProgramAccounts(c.program, c.commitment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get program accounts")
	}

	listings := make([]Listing, 0, len(accounts))
	for _, a := range accounts {
		var r campaign.Record
		if err := r.Unmarshal(a.Account.Data); err != nil {
			c.log.WithError(err).WithField("address", base58.Encode(a.Address)).Debug("skipping non campaign account")
			continue
		}

		listings = append(listings, Listing{
			Address:  a.Address,
			Lamports: a.Account.Lamports,
			Record:   r,
		})
	}

	return listings, nil
}

func (c *Client) connect(ctx context.Context) error {
	if c.wallet.Connected() {
		return nil
	}

	if err := c.wallet.Connect(ctx); err != nil {
		return errors.Wrap(err, "failed to connect wallet")
	}
	if c.wallet.PublicKey() == nil {
		return errors.Wrap(wallet.ErrNotConnected, "wallet has no public key after connecting")
	}

	return nil
}

// submit signs, sends and confirms txn.
func (c *Client) submit(ctx context.Context, log *logrus.Entry, txn solana.Transaction) (solana.Signature, *solana.SignatureStatus, error) {
	sig, err := c.SignAndSendTransaction(ctx, txn)
	if err != nil {
		return sig, nil, err
	}

	log = log.WithField("signature", sig.String())

	start := time.Now()
	status, err := c.sc.ConfirmTransaction(ctx, sig, c.commitment)
	recordConfirmation(start, err)
	if err != nil {
		log.WithError(err).Warn("failed to confirm transaction")
		return sig, status, errors.Wrapf(err, "failed to confirm transaction %s", sig)
	}
	if status == nil {
		return sig, nil, errors.Errorf("no status for transaction %s", sig)
	}
	if status.ErrorResult != nil {
		log.WithError(status.ErrorResult).Warn("transaction failed")
		return sig, status, errors.Wrapf(status.ErrorResult, "transaction %s failed", sig)
	}

	log.WithField("slot", status.Slot).Info("transaction confirmed")
	return sig, status, nil
}
