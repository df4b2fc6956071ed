package config

// DBConfig selects the storage backend. Path is the file or directory for
// embedded backends and the DSN for postgres.
type DBConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// PeerConfig describes one trusted remote ledger instance
type PeerConfig struct {
	ChainID      uint64 `yaml:"chain_id"`
	Address      string `yaml:"address"` // hex-encoded remote ledger address
	URL          string `yaml:"url"`     // delivery endpoint base URL
	PayloadLimit int    `yaml:"payload_limit"`
	MinDstGas    uint64 `yaml:"min_dst_gas"`
}

// NodeConfig holds the per-chain deployment configuration
type NodeConfig struct {
	ChainID            uint64       `yaml:"chain_id"`
	MainChainID        uint64       `yaml:"main_chain_id"`
	LedgerAddress      string       `yaml:"ledger_address"`       // hex-encoded local ledger address
	InitialRebaseIndex string       `yaml:"initial_rebase_index"` // decimal; required on first start
	RPCAddr            string       `yaml:"rpc_addr"`
	ListenAddr         string       `yaml:"listen_addr"`
	DB                 DBConfig     `yaml:"db"`
	Peers              []PeerConfig `yaml:"peers"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Config NodeConfig `yaml:"config"`
}

// TransportConfig carries the tunable transport policy defaults, loaded from
// an .ini file and overridable per peer in the yaml config
type TransportConfig struct {
	MaxPayloadBytes        int    `ini:"max_payload_bytes"`
	UseCustomAdapterParams bool   `ini:"use_custom_adapter_params"`
	MinDstGas              uint64 `ini:"min_dst_gas"`
}
