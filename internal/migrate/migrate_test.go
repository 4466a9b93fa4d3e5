package migrate

import (
	"context"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"github.com/escalopa/chain-migrate/internal/certs"
	"github.com/escalopa/chain-migrate/internal/config"
	"github.com/escalopa/chain-migrate/internal/core"
	"github.com/escalopa/chain-migrate/internal/store"
	"github.com/escalopa/chain-migrate/test"
)

const chainName = "test-chain"

func TestRun(t *testing.T) {
	t.Parallel()

	const nodeCount = 3

	chainDir := test.NewChain(t, chainName, nodeCount)
	outDir := t.TempDir()

	err := Run(context.Background(), Options{
		ChainDir:   chainDir,
		OutDir:     outDir,
		ChainName:  chainName,
		VerifyData: true,
	})
	require.NoError(t, err)

	meta := readMetaConfig(t, outDir)

	require.Equal(t, uint64(nodeCount), meta.Current.Count)
	require.Len(t, meta.Current.Addresses, nodeCount)
	require.Equal(t, test.AdminAddress, meta.Admin.AdminAddress)
	require.Equal(t, uint64(test.AdminKeyID), meta.Admin.KeyID)
	require.False(t, meta.Current.UseNum)

	// meta peers: the sample node first, then its declared peers
	require.Len(t, meta.Network.Peers, nodeCount)
	require.Equal(t, test.NodeAddress(0), meta.Network.Peers[0].Domain)
	require.Equal(t, test.NodeHost(0), meta.Network.Peers[0].Host)
	require.Equal(t, meta.Network, meta.Current.TLSPeers)

	caCert, err := certs.ParsePEMCert(meta.Current.CACertPEM)
	require.NoError(t, err)
	require.True(t, caCert.IsCA)

	roots := x509.NewCertPool()
	roots.AddCert(caCert)

	for i := 0; i < nodeCount; i++ {
		address := test.NodeAddress(i)
		newDir := filepath.Join(outDir, chainName+"-"+strings.TrimPrefix(address, "0x"))

		cfg := readNodeConfig(t, newDir)

		require.Equal(t, address, cfg.Controller.NodeAddress)
		require.Equal(t, meta.Current.CACertPEM, cfg.Network.CACert)

		// the node's leaf carries its logical address and chains to the run's CA
		leaf, err := certs.ParsePEMCert(cfg.Network.Cert)
		require.NoError(t, err)
		require.Equal(t, []string{address}, leaf.DNSNames)

		_, err = leaf.Verify(x509.VerifyOptions{Roots: roots})
		require.NoError(t, err)

		// every declared peer is bound to the logical address of the node that
		// owns that endpoint
		require.Len(t, cfg.Network.Peers, nodeCount-1)
		for _, p := range cfg.Network.Peers {
			require.NotEqual(t, address, p.Domain)

			owner := ownerOfEndpoint(t, core.Endpoint{Host: p.Host, Port: p.Port}, nodeCount)
			require.Equal(t, owner, p.Domain)
		}

		// aux files, data dirs and the key database came along
		for _, name := range auxFiles {
			require.FileExists(t, filepath.Join(newDir, name))
		}
		for _, name := range dataDirs {
			require.FileExists(t, filepath.Join(newDir, name, "placeholder"))
		}

		count, err := store.Verify(filepath.Join(newDir, keyDBName))
		require.NoError(t, err)
		require.Equal(t, i+1, count)
	}

	// the metadata dir carries a sample of the aux files and key database
	metaDir := filepath.Join(outDir, chainName)
	for _, name := range auxFiles {
		require.FileExists(t, filepath.Join(metaDir, name))
	}
	require.DirExists(t, filepath.Join(metaDir, keyDBName))
}

func TestRun_SelfReferencingPeer(t *testing.T) {
	t.Parallel()

	chainDir := test.NewChain(t, chainName, 3)

	// corrupt node 1's view: declare its own endpoint as a peer
	networkFile := filepath.Join(chainDir, chainName+"-1", "network-config.toml")
	data, err := os.ReadFile(networkFile)
	require.NoError(t, err)

	corrupted := string(data) + fmt.Sprintf("\n[[peers]]\nip = %q\nport = %d\n", test.NodeHost(1), test.NodePort(1))
	require.NoError(t, os.WriteFile(networkFile, []byte(corrupted), 0o644))

	outDir := t.TempDir()

	err = Run(context.Background(), Options{
		ChainDir:  chainDir,
		OutDir:    outDir,
		ChainName: chainName,
	})
	require.ErrorIs(t, err, core.ErrInconsistentTopology)

	// all-or-nothing: no node dir was written
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRun_MissingChainDir(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), Options{
		ChainDir:  filepath.Join(t.TempDir(), "does-not-exist"),
		OutDir:    t.TempDir(),
		ChainName: chainName,
	})
	require.Error(t, err)
}

func TestRun_EmptyChain(t *testing.T) {
	t.Parallel()

	chainDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(chainDir, chainName), 0o755))

	err := Run(context.Background(), Options{
		ChainDir:  chainDir,
		OutDir:    t.TempDir(),
		ChainName: chainName,
	})
	require.ErrorIs(t, err, core.ErrEmptyChain)
}

func readMetaConfig(t *testing.T, outDir string) *config.MetaConfig {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(outDir, chainName, "config.toml"))
	require.NoError(t, err)

	var meta config.MetaConfig
	require.NoError(t, toml.Unmarshal(data, &meta))

	return &meta
}

func readNodeConfig(t *testing.T, nodeDir string) *config.NodeConfig {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(nodeDir, "config.toml"))
	require.NoError(t, err)

	var cfg config.NodeConfig
	require.NoError(t, toml.Unmarshal(data, &cfg))

	return &cfg
}

func ownerOfEndpoint(t *testing.T, ep core.Endpoint, nodeCount int) string {
	t.Helper()

	for i := 0; i < nodeCount; i++ {
		if ep.Host == test.NodeHost(i) && ep.Port == test.NodePort(i) {
			return test.NodeAddress(i)
		}
	}

	t.Fatalf("no fixture node owns endpoint %s", ep)
	return ""
}
