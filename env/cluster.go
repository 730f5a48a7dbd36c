package env

import (
	"errors"
	"os"
)

// Cluster is the Solana cluster the application talks to.
type Cluster string

const (
	ClusterDevnet      Cluster = "devnet"
	ClusterTestnet     Cluster = "testnet"
	ClusterMainnetBeta Cluster = "mainnet-beta"

	// ClusterLocalnet is a solana-test-validator running on this host.
	ClusterLocalnet Cluster = "localnet"

	// DefaultCluster is used when SOLANA_CLUSTER is unset.
	DefaultCluster = ClusterDevnet
)

var (
	// ErrBadEnvironmentVariableSet occurs when the SOLANA_CLUSTER environment variable is set to an invalid value
	ErrBadEnvironmentVariableSet = errors.New("environment variable SOLANA_CLUSTER was not 'devnet', 'testnet', 'mainnet-beta', or 'localnet'")
)

// FromEnvVariable retrieves the cluster from the SOLANA_CLUSTER environment
// variable, defaulting to DefaultCluster when it is unset.
func FromEnvVariable() (Cluster, error) {
	v, ok := os.LookupEnv("SOLANA_CLUSTER")
	if !ok || v == "" {
		return DefaultCluster, nil
	}

	c := Cluster(v)
	if !c.IsValid() {
		return "", ErrBadEnvironmentVariableSet
	}
	return c, nil
}

// IsValid returns true if the Cluster is valid.
func (c Cluster) IsValid() bool {
	switch c {
	case ClusterDevnet, ClusterTestnet, ClusterMainnetBeta, ClusterLocalnet:
		return true
	default:
		return false
	}
}

// RPCEndpoint returns the public JSON RPC endpoint of the cluster.
func (c Cluster) RPCEndpoint() string {
	switch c {
	case ClusterMainnetBeta:
		return "https://api.mainnet-beta.solana.com"
	case ClusterTestnet:
		return "https://api.testnet.solana.com"
	case ClusterLocalnet:
		return "http://127.0.0.1:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}
