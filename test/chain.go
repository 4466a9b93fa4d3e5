package test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

const (
	// AdminAddress is the fixture chain's admin identity.
	AdminAddress = "0xadadadadadadadadadadadadadadadadadadadad"

	// AdminKeyID is written to the admin's key_id file.
	AdminKeyID = 1

	basePort = 40000
)

// NodeAddress returns the fixture logical address of node i.
func NodeAddress(i int) string {
	return fmt.Sprintf("0x%040x", i+1)
}

// NodeHost returns the fixture host of node i.
func NodeHost(i int) string {
	return fmt.Sprintf("127.0.0.%d", i+1)
}

// NodePort returns the fixture network port of node i.
func NodePort(i int) uint16 {
	return uint16(basePort + i)
}

// NewChain writes an old-layout chain tree with n nodes under a temp dir and
// returns the dir. Each node dir carries the old-schema config files, the aux
// logging configs, a seeded key database and the data dirs.
func NewChain(t *testing.T, chainName string, n int) string {
	t.Helper()

	chainDir := t.TempDir()

	// Metadata dir with the admin's key id.
	adminDir := filepath.Join(chainDir, chainName, AdminAddress)
	require.NoError(t, os.MkdirAll(adminDir, 0o755))
	writeFile(t, adminDir, "key_id", fmt.Sprintf("%d", AdminKeyID))

	for i := 0; i < n; i++ {
		nodeDir := filepath.Join(chainDir, fmt.Sprintf("%s-%d", chainName, i))
		require.NoError(t, os.MkdirAll(nodeDir, 0o755))

		writeFile(t, nodeDir, "controller-config.toml", fmt.Sprintf(
			"network_port = %d\nconsensus_port = %d\nstorage_port = %d\nkms_port = %d\nexecutor_port = %d\n",
			50000, 50001, 50002, 50003, 50004,
		))
		writeFile(t, nodeDir, "consensus-config.toml", fmt.Sprintf("controller_port = %d\n", 50005+i))

		networkConfig := fmt.Sprintf("port = %d\n", NodePort(i))
		for j := 0; j < n; j++ {
			if j == i {
				continue // a node never declares its own endpoint
			}
			networkConfig += fmt.Sprintf("\n[[peers]]\nip = %q\nport = %d\n", NodeHost(j), NodePort(j))
		}
		writeFile(t, nodeDir, "network-config.toml", networkConfig)

		writeFile(t, nodeDir, "init_sys_config.toml", fmt.Sprintf(
			"version = 1\nadmin = %q\nblock_interval = 3\nchain_id = \"test-chain\"\nvalidators = [%q]\n",
			AdminAddress, NodeAddress(i),
		))
		writeFile(t, nodeDir, "genesis.toml", "timestamp = 1234567890\nprevhash = \"0x00\"\n")

		writeFile(t, nodeDir, "node_address", NodeAddress(i))
		writeFile(t, nodeDir, "key_id", fmt.Sprintf("%d", i+1))
		writeFile(t, nodeDir, "key_file", fmt.Sprintf("password-%d", i))

		for _, name := range []string{
			"controller-log4rs.yaml",
			"storage-log4rs.yaml",
			"executor-log4rs.yaml",
			"kms-log4rs.yaml",
		} {
			writeFile(t, nodeDir, name, "refresh_rate: 30 seconds\n")
		}

		SeedKeyDB(t, filepath.Join(nodeDir, "kms.db"), i+1)

		for _, name := range []string{"chain_data", "data", "logs"} {
			dataDir := filepath.Join(nodeDir, name)
			require.NoError(t, os.MkdirAll(dataDir, 0o755))
			writeFile(t, dataDir, "placeholder", name)
		}
	}

	return chainDir
}

// SeedKeyDB creates a key database at path holding keys keys.
func SeedKeyDB(t *testing.T, path string, keys int) {
	t.Helper()

	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	require.NoError(t, err)

	err = db.Update(func(txn *badger.Txn) error {
		for k := 0; k < keys; k++ {
			key := fmt.Sprintf("key-%d", k)
			if err := txn.Set([]byte(key), []byte("secret")); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, db.Close())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
