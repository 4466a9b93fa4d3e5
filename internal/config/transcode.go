package config

// NewNodeConfig maps one old-schema node record onto the new schema. Pure data
// mapping: renames, constant defaults, and the carried-over peer list. The TLS
// fields (ca_cert, cert, peer domains) stay empty until identity resolution
// and certificate issuance fill them.
func NewNodeConfig(old *OldNode) *NodeConfig {
	peers := make([]NetworkPeerConfig, 0, len(old.Network.Peers))
	for _, p := range old.Network.Peers {
		peers = append(peers, NetworkPeerConfig{
			Host: p.IP,
			Port: p.Port,
		})
	}

	return &NodeConfig{
		SystemConfig: SystemConfig{
			Admin:         old.System.Admin,
			BlockInterval: old.System.BlockInterval,
			BlockLimit:    DefaultBlockLimit,
			ChainID:       old.System.ChainID,
			Version:       old.System.Version,
			Validators:    old.System.Validators,
		},
		GenesisBlock: GenesisBlock{
			Prevhash:  old.Genesis.Prevhash,
			Timestamp: old.Genesis.Timestamp,
		},
		Controller: ControllerConfig{
			ConsensusPort:  old.ConsensusPort,
			ControllerPort: old.ControllerPort,
			ExecutorPort:   old.ExecutorPort,
			StoragePort:    old.StoragePort,
			KmsPort:        old.KmsPort,
			NetworkPort:    old.NetworkPort,

			KeyID:        old.KeyID,
			NodeAddress:  old.NodeAddress,
			PackageLimit: DefaultPackageLimit,
		},
		Consensus: ConsensusRaftConfig{
			ControllerPort: old.ControllerPort,
			GRPCListenPort: old.ConsensusPort,
			NetworkPort:    old.NetworkPort,
			NodeAddr:       old.NodeAddress,
		},
		Storage: StorageConfig{
			KmsPort:     old.KmsPort,
			StoragePort: old.StoragePort,
		},
		Executor: ExecutorConfig{
			ExecutorPort: old.ExecutorPort,
		},
		Kms: KmsConfig{
			KmsPort: old.KmsPort,
			DBKey:   old.KmsPassword,
		},
		Network: NetworkTLSConfig{
			GRPCPort: old.NetworkPort,
			// listen for network peers' connections
			ListenPort: old.Network.Port,
			Peers:      peers,
		},
	}
}
