package main

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kinecosystem/agora-crowdfund/app"
	"github.com/kinecosystem/agora-crowdfund/crowdfund"
	"github.com/kinecosystem/agora-crowdfund/solana"
	"github.com/kinecosystem/agora-crowdfund/wallet"
)

const walletOrigin = "crowdfund-cli"

// env holds what every subcommand needs, populated before any of them run.
type env struct {
	config app.Config
	sc     solana.Client
	wallet wallet.Wallet
	client *crowdfund.Client
}

func newRootCmd() *cobra.Command {
	var configPath string
	e := &env{}

	root := &cobra.Command{
		Use:           "crowdfund",
		Short:         "Create and fund crowdfunding campaigns on Solana",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.Load(configPath)
			if err != nil {
				return err
			}
			app.ConfigureLogger(config, os.Stderr)

			return e.init(cmd.Context(), config)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")

	root.AddCommand(
		newCreateCmd(e),
		newDonateCmd(e),
		newWithdrawCmd(e),
		newShowCmd(e),
		newListCmd(e),
		newAirdropCmd(e),
	)

	return root
}

func (e *env) init(ctx context.Context, config app.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	program, err := config.Program()
	if err != nil {
		return err
	}
	commitment, err := config.ParsedCommitment()
	if err != nil {
		return err
	}

	w, err := loadWallet(ctx, config)
	if err != nil {
		return err
	}

	e.config = config
	e.sc = solana.New(config.Endpoint())
	e.wallet = w
	e.client = crowdfund.New(e.sc, e.wallet, program, crowdfund.WithCommitment(commitment))
	return nil
}

// timeoutContext returns a context bounded by the configured timeout.
func (e *env) timeoutContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(ctx, e.config.Timeout)
}

// loadWallet returns a keypair wallet if one is configured, and the remote
// wallet service otherwise.
func loadWallet(ctx context.Context, config app.Config) (wallet.Wallet, error) {
	log := logrus.StandardLogger().WithField("type", "crowdfund/cli")

	if config.Keypair == "" {
		log.WithField("wallet_url", config.WalletURL).Debug("using remote wallet")
		return wallet.NewRemote(config.WalletURL, walletOrigin, &http.Client{Timeout: config.Timeout}), nil
	}

	b, err := app.LoadFile(ctx, config.Keypair)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load keypair")
	}

	kp, err := wallet.ParseKeypair(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse keypair at %s", config.Keypair)
	}

	log.WithField("public_key", encodeKey(kp.PublicKey())).Debug("using keypair wallet")
	return kp, nil
}
