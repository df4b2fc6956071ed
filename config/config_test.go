package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validYAML = `
config:
  chain_id: 1
  main_chain_id: 1
  ledger_address: "0a0b0c"
  initial_rebase_index: "1000000000000000000"
  rpc_addr: ":8080"
  listen_addr: ":9090"
  db:
    backend: "memory"
  peers:
    - chain_id: 2
      address: "0d0e0f"
      url: "http://peer2:9090"
      min_dst_gas: 200000
`

func TestLoadNodeConfig(t *testing.T) {
	path := writeFile(t, "node.yml", validYAML)

	cfg, err := LoadNodeConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint64(1), cfg.ChainID)
	require.Equal(t, uint64(1), cfg.MainChainID)
	require.Equal(t, []byte{0x0a, 0x0b, 0x0c}, cfg.LocalAddrBytes())
	require.Equal(t, new(uint256.Int).Mul(uint256.NewInt(1), uint256.NewInt(1e18)), cfg.InitialIndex())
	require.Len(t, cfg.Peers, 1)
	require.Equal(t, uint64(200000), cfg.Peers[0].MinDstGas)
}

func TestLoadNodeConfigRejectsBadIndex(t *testing.T) {
	path := writeFile(t, "node.yml", `
config:
  chain_id: 1
  ledger_address: "0a"
  initial_rebase_index: "0"
`)
	_, err := LoadNodeConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-zero")
}

func TestLoadNodeConfigRejectsBadAddress(t *testing.T) {
	path := writeFile(t, "node.yml", `
config:
  chain_id: 1
  ledger_address: "not hex"
`)
	_, err := LoadNodeConfig(path)
	require.Error(t, err)
}

func TestInitialIndexUnset(t *testing.T) {
	cfg := &NodeConfig{}
	require.Nil(t, cfg.InitialIndex())
}

func TestLoadTransportConfig(t *testing.T) {
	path := writeFile(t, "transport.ini", `
[transport]
max_payload_bytes = 5000
use_custom_adapter_params = true
min_dst_gas = 150000
`)
	cfg, err := LoadTransportConfig(path)
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.MaxPayloadBytes)
	require.True(t, cfg.UseCustomAdapterParams)
	require.Equal(t, uint64(150000), cfg.MinDstGas)
}
