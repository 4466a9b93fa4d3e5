package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNodeConfig(t *testing.T) {
	t.Parallel()

	old := &OldNode{
		ControllerPort: 1,
		ConsensusPort:  2,
		ExecutorPort:   3,
		NetworkPort:    4,
		KmsPort:        5,
		StoragePort:    6,

		NodeAddress: "0xaa",
		Genesis:     OldGenesis{Timestamp: 42, Prevhash: "0x00"},
		System: OldSystemConfig{
			Version:       1,
			Admin:         "0xad",
			BlockInterval: 3,
			ChainID:       "test-chain",
			Validators:    []string{"0xaa", "0xbb"},
		},

		KmsPassword: "secret",
		KeyID:       7,

		Network: OldNetworkConfig{
			Port: 4000,
			Peers: []OldPeerConfig{
				{IP: "10.0.0.2", Port: 4001},
			},
		},
	}

	cfg := NewNodeConfig(old)

	// renames and carried fields
	require.Equal(t, uint16(1), cfg.Controller.ControllerPort)
	require.Equal(t, uint16(2), cfg.Controller.ConsensusPort)
	require.Equal(t, "0xaa", cfg.Controller.NodeAddress)
	require.Equal(t, uint64(7), cfg.Controller.KeyID)

	// the old consensus port becomes the raft grpc listen port
	require.Equal(t, uint16(2), cfg.Consensus.GRPCListenPort)
	require.Equal(t, uint16(1), cfg.Consensus.ControllerPort)
	require.Equal(t, "0xaa", cfg.Consensus.NodeAddr)

	// constant defaults
	require.Equal(t, DefaultPackageLimit, cfg.Controller.PackageLimit)
	require.Equal(t, DefaultBlockLimit, cfg.SystemConfig.BlockLimit)

	require.Equal(t, "secret", cfg.Kms.DBKey)
	require.Equal(t, uint16(5), cfg.Kms.KmsPort)

	// the old network grpc port and listen port split
	require.Equal(t, uint16(4), cfg.Network.GRPCPort)
	require.Equal(t, uint16(4000), cfg.Network.ListenPort)

	// peers carried over, TLS fields left for issuance
	require.Equal(t, []NetworkPeerConfig{{Host: "10.0.0.2", Port: 4001}}, cfg.Network.Peers)
	require.Empty(t, cfg.Network.CACert)
	require.Empty(t, cfg.Network.Cert)

	require.Equal(t, GenesisBlock{Prevhash: "0x00", Timestamp: 42}, cfg.GenesisBlock)
	require.Equal(t, []string{"0xaa", "0xbb"}, cfg.SystemConfig.Validators)
}
