package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/holiman/uint256"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadNodeConfig reads and parses the node.yml file
func LoadNodeConfig(path string) (*NodeConfig, error) {
	log.Printf("[config] LoadNodeConfig called with path: %s", path)
	file, err := os.Open(path)
	if err != nil {
		log.Printf("[config] Failed to open file: %v", err)
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		log.Printf("[config] Failed to decode YAML: %v", err)
		return nil, err
	}
	cfg := &cfgFile.Config
	if err := validateNodeConfig(cfg); err != nil {
		return nil, err
	}
	log.Printf("[config] Successfully loaded config: ChainID=%d, MainChainID=%d, Peers=%d", cfg.ChainID, cfg.MainChainID, len(cfg.Peers))
	return cfg, nil
}

func validateNodeConfig(cfg *NodeConfig) error {
	if cfg.ChainID == 0 {
		return fmt.Errorf("chain_id must be set")
	}
	if _, err := hex.DecodeString(cfg.LedgerAddress); err != nil || cfg.LedgerAddress == "" {
		return fmt.Errorf("ledger_address must be a non-empty hex string")
	}
	// the initial index is a deliberate deployment decision; there is no
	// implicit one-to-one default
	if cfg.InitialRebaseIndex != "" {
		index, err := uint256.FromDecimal(cfg.InitialRebaseIndex)
		if err != nil {
			return fmt.Errorf("initial_rebase_index is not a valid decimal: %w", err)
		}
		if index.IsZero() {
			return fmt.Errorf("initial_rebase_index must be non-zero")
		}
	}
	for _, peer := range cfg.Peers {
		if peer.ChainID == 0 {
			return fmt.Errorf("peer chain_id must be set")
		}
		if _, err := hex.DecodeString(peer.Address); err != nil || peer.Address == "" {
			return fmt.Errorf("peer %d address must be a non-empty hex string", peer.ChainID)
		}
	}
	return nil
}

// InitialIndex parses the configured initial rebase index, nil when unset
func (cfg *NodeConfig) InitialIndex() *uint256.Int {
	if cfg.InitialRebaseIndex == "" {
		return nil
	}
	index, err := uint256.FromDecimal(cfg.InitialRebaseIndex)
	if err != nil {
		return nil
	}
	return index
}

// LocalAddrBytes decodes the configured ledger address
func (cfg *NodeConfig) LocalAddrBytes() []byte {
	addr, _ := hex.DecodeString(cfg.LedgerAddress)
	return addr
}

// LoadTransportConfig reads transport tuning from an .ini file
func LoadTransportConfig(path string) (*TransportConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	transportSection := cfg.Section("transport")
	transportCfg := &TransportConfig{}
	err = transportSection.MapTo(transportCfg)
	if err != nil {
		return nil, err
	}
	return transportCfg, nil
}
