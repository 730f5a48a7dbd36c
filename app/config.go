package app

import (
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/env"
	"github.com/kinecosystem/agora-crowdfund/solana"
)

const (
	DefaultWalletURL = "https://www.sollet.io"
	DefaultProgramID = "DtVe5Jab8MmDtAbyi3XzVsg9mc4NKwJ1AFybq5Xd8U2a"
)

// Config contains the configuration of the crowdfund client.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogType  string `mapstructure:"log_type"`

	// Cluster selects the RPC endpoint, unless RPCEndpoint is set.
	Cluster     string `mapstructure:"solana_cluster"`
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// WalletURL is the wallet service used when no Keypair is configured.
	WalletURL string `mapstructure:"wallet_url"`

	// Keypair is an optional URL of a keypair file paying for and signing
	// transactions.
	//
	// Currently only two supported URL schemes are supported: file, s3.
	// If no scheme is specified, file is used.
	Keypair string `mapstructure:"keypair"`

	ProgramID  string `mapstructure:"program_id"`
	Commitment string `mapstructure:"commitment"`

	// Timeout bounds each command, including confirmation.
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaultConfig = Config{
	LogLevel: "info",
	LogType:  "human",

	Cluster:   string(env.DefaultCluster),
	WalletURL: DefaultWalletURL,
	ProgramID: DefaultProgramID,

	Commitment: "confirmed",
	Timeout:    2 * time.Minute,
}

// Endpoint returns the JSON RPC endpoint to use.
func (c Config) Endpoint() string {
	if c.RPCEndpoint != "" {
		return c.RPCEndpoint
	}

	return env.Cluster(c.Cluster).RPCEndpoint()
}

func (c Config) Program() (ed25519.PublicKey, error) {
	k, err := solana.ParsePublicKey(c.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid program_id")
	}

	return k, nil
}

func (c Config) ParsedCommitment() (solana.Commitment, error) {
	return solana.ParseCommitment(c.Commitment)
}

func (c Config) validate() error {
	if !env.Cluster(c.Cluster).IsValid() {
		return errors.Errorf("invalid solana_cluster: %s", c.Cluster)
	}
	if _, err := c.Program(); err != nil {
		return err
	}
	if _, err := c.ParsedCommitment(); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive: %v", c.Timeout)
	}

	return nil
}
