package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escalopa/chain-migrate/internal/core"
	"github.com/escalopa/chain-migrate/test"
)

func TestLoadOldNode(t *testing.T) {
	t.Parallel()

	chainDir := test.NewChain(t, "test-chain", 3)

	node, err := LoadOldNode(filepath.Join(chainDir, "test-chain-0"))
	require.NoError(t, err)

	require.Equal(t, uint16(50000), node.NetworkPort)
	require.Equal(t, uint16(50001), node.ConsensusPort)
	require.Equal(t, uint16(50002), node.StoragePort)
	require.Equal(t, uint16(50003), node.KmsPort)
	require.Equal(t, uint16(50004), node.ExecutorPort)
	require.Equal(t, uint16(50005), node.ControllerPort)

	require.Equal(t, test.NodeAddress(0), node.NodeAddress)
	require.Equal(t, uint64(1), node.KeyID)
	require.Equal(t, "password-0", node.KmsPassword)

	require.Equal(t, test.AdminAddress, node.System.Admin)
	require.Equal(t, "test-chain", node.System.ChainID)
	require.Equal(t, uint64(1234567890), node.Genesis.Timestamp)

	require.Equal(t, test.NodePort(0), node.Network.Port)
	require.Equal(t, []core.Endpoint{
		{Host: test.NodeHost(1), Port: test.NodePort(1)},
		{Host: test.NodeHost(2), Port: test.NodePort(2)},
	}, node.DeclaredPeers())
}

func TestLoadOldNode_MissingFiles(t *testing.T) {
	t.Parallel()

	_, err := LoadOldNode(t.TempDir())
	require.Error(t, err)
	require.ErrorContains(t, err, "controller-config.toml")
}
