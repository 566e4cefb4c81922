package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickpos/stablepay/internal/adapter/config"
)

func TestLoadNetworks(t *testing.T) {
	content := `
networks:
  - id: base
    chain_id: 8453
    rpc_endpoint: https://mainnet.base.org
    scan_blocks: 500
    tokens:
      - symbol: USDC
        contract: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
        decimals: 6
  - id: polygon
    chain_id: 137
    rpc_endpoint: https://polygon-rpc.com
    tokens:
      - symbol: USDT
        contract: "0xc2132d05d31c914a87c6611c10748aeb04b58e8f"
        decimals: 6
`
	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	networks, err := config.LoadNetworks(path)
	require.NoError(t, err)

	assert.Len(t, networks.All(), 2)

	base, ok := networks.Network("base")
	require.True(t, ok)
	assert.Equal(t, int64(8453), base.ChainID)
	assert.Equal(t, int64(500), base.ScanBlocks)

	usdc, ok := base.Token("usdc")
	require.True(t, ok)
	assert.Equal(t, 6, usdc.Decimals)

	assert.True(t, networks.Supported("polygon", "USDT"))
	assert.False(t, networks.Supported("polygon", "USDC"))
	assert.False(t, networks.Supported("solana", "USDC"))
	assert.True(t, networks.SupportedSymbol("USDT"))
}

func TestLoadNetworks_MissingFile(t *testing.T) {
	_, err := config.LoadNetworks(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
