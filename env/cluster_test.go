package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvVariable(t *testing.T) {
	for _, tc := range []struct {
		value    string
		expected Cluster
		endpoint string
	}{
		{"devnet", ClusterDevnet, "https://api.devnet.solana.com"},
		{"testnet", ClusterTestnet, "https://api.testnet.solana.com"},
		{"mainnet-beta", ClusterMainnetBeta, "https://api.mainnet-beta.solana.com"},
		{"localnet", ClusterLocalnet, "http://127.0.0.1:8899"},
		{"", ClusterDevnet, "https://api.devnet.solana.com"},
	} {
		t.Setenv("SOLANA_CLUSTER", tc.value)

		c, err := FromEnvVariable()
		require.NoError(t, err)
		assert.Equal(t, tc.expected, c)
		assert.Equal(t, tc.endpoint, c.RPCEndpoint())
	}
}

func TestFromEnvVariable_Unset(t *testing.T) {
	t.Setenv("SOLANA_CLUSTER", "")
	require.NoError(t, os.Unsetenv("SOLANA_CLUSTER"))

	c, err := FromEnvVariable()
	require.NoError(t, err)
	assert.Equal(t, DefaultCluster, c)
}

func TestFromEnvVariable_Invalid(t *testing.T) {
	t.Setenv("SOLANA_CLUSTER", "mainnet")

	_, err := FromEnvVariable()
	assert.Equal(t, ErrBadEnvironmentVariableSet, err)
	assert.False(t, Cluster("mainnet").IsValid())
}
