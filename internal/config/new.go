package config

// New-schema record shapes, serialized to the upgraded config.toml files.

const (
	DefaultBlockLimit   uint64 = 100
	DefaultPackageLimit uint64 = 30000
)

type (
	ControllerConfig struct {
		ConsensusPort  uint16 `toml:"consensus_port"`
		ControllerPort uint16 `toml:"controller_port"`
		ExecutorPort   uint16 `toml:"executor_port"`
		StoragePort    uint16 `toml:"storage_port"`
		KmsPort        uint16 `toml:"kms_port"`
		NetworkPort    uint16 `toml:"network_port"`

		KeyID        uint64 `toml:"key_id"`
		NodeAddress  string `toml:"node_address"`
		PackageLimit uint64 `toml:"package_limit"`
	}

	ConsensusRaftConfig struct {
		ControllerPort uint16 `toml:"controller_port"`
		GRPCListenPort uint16 `toml:"grpc_listen_port"`
		NetworkPort    uint16 `toml:"network_port"`
		NodeAddr       string `toml:"node_addr"`
	}

	GenesisBlock struct {
		Prevhash  string `toml:"prevhash"`
		Timestamp uint64 `toml:"timestamp"`
	}

	SystemConfig struct {
		Admin         string   `toml:"admin"`
		BlockInterval uint64   `toml:"block_interval"`
		BlockLimit    uint64   `toml:"block_limit"`
		ChainID       string   `toml:"chain_id"`
		Version       uint64   `toml:"version"`
		Validators    []string `toml:"validators"`
	}

	// NetworkPeerConfig carries a peer's network location and, once identity
	// resolution has run, the logical address its certificate must present.
	NetworkPeerConfig struct {
		Domain string `toml:"domain"`
		Host   string `toml:"host"`
		Port   uint16 `toml:"port"`
	}

	NetworkTLSConfig struct {
		CACert     string              `toml:"ca_cert"`
		Cert       string              `toml:"cert"`
		GRPCPort   uint16              `toml:"grpc_port"`
		ListenPort uint16              `toml:"listen_port"`
		Peers      []NetworkPeerConfig `toml:"peers"`
	}

	KmsConfig struct {
		KmsPort uint16 `toml:"kms_port"`
		DBKey   string `toml:"db_key"`
	}

	StorageConfig struct {
		KmsPort     uint16 `toml:"kms_port"`
		StoragePort uint16 `toml:"storage_port"`
	}

	ExecutorConfig struct {
		ExecutorPort uint16 `toml:"executor_port"`
	}

	// NodeConfig is one node's upgraded config.toml.
	NodeConfig struct {
		SystemConfig SystemConfig        `toml:"system_config"`
		GenesisBlock GenesisBlock        `toml:"genesis_block"`
		Controller   ControllerConfig    `toml:"controller"`
		Consensus    ConsensusRaftConfig `toml:"consensus_raft"`
		Storage      StorageConfig       `toml:"storage_rocksdb"`
		Executor     ExecutorConfig      `toml:"executor_evm"`
		Kms          KmsConfig           `toml:"kms_sm"`
		Network      NetworkTLSConfig    `toml:"network_tls"`
	}

	MetaNetworkConfig struct {
		Peers []NetworkPeerConfig `toml:"peers"`
	}

	MetaAdminConfig struct {
		AdminAddress string `toml:"admin_address"`
		KeyID        uint64 `toml:"key_id"`
	}

	MetaCurrentConfig struct {
		Addresses []string `toml:"addresses"`

		CACertPEM string `toml:"ca_cert_pem"`
		CAKeyPEM  string `toml:"ca_key_pem"`

		Count uint64 `toml:"count"`

		IPs      []string `toml:"ips"`
		P2PPorts []uint16 `toml:"p2p_ports"`
		RPCPorts []uint16 `toml:"rpc_ports"`

		// UseNum is always false after a migration: new nodes are addressed by
		// their logical address, not by their ordinal.
		UseNum bool `toml:"use_num"`

		TLSPeers MetaNetworkConfig `toml:"tls_peers"`
	}

	// MetaConfig is the chain-wide config.toml written next to the node dirs.
	MetaConfig struct {
		Network      MetaNetworkConfig `toml:"network_tls"`
		GenesisBlock GenesisBlock      `toml:"genesis_block"`
		SystemConfig SystemConfig      `toml:"system_config"`
		Admin        MetaAdminConfig   `toml:"admin_config"`
		Current      MetaCurrentConfig `toml:"current_config"`
	}
)
