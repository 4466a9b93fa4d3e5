package migrate

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/catalystgo/logger/logger"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/escalopa/chain-migrate/internal/certs"
	"github.com/escalopa/chain-migrate/internal/config"
	"github.com/escalopa/chain-migrate/internal/core"
	"github.com/escalopa/chain-migrate/internal/identity"
	"github.com/escalopa/chain-migrate/internal/store"
)

type Options struct {
	ChainDir  string // old chain data dir
	OutDir    string // output dir for the upgraded chain
	ChainName string

	// VerifyData opens each migrated key database read-only after copying
	// and checks that it walks cleanly.
	VerifyData bool
}

var (
	auxFiles = []string{
		"controller-log4rs.yaml",
		"storage-log4rs.yaml",
		"executor-log4rs.yaml",
		"kms-log4rs.yaml",
	}

	dataDirs = []string{"chain_data", "data", "logs"}
)

const keyDBName = "kms.db"

// Run migrates a whole chain from the old config layout to the new one:
// load + transcode every node dir, resolve network identities, issue the TLS
// credential batch, then write the new tree. Every failure aborts the run;
// there is no partial-success mode.
func Run(ctx context.Context, opts Options) error {
	metadataDir := filepath.Join(opts.ChainDir, opts.ChainName)
	if err := ensureDir(opts.ChainDir); err != nil {
		return errors.Wrap(err, "chain data dir")
	}
	if err := ensureDir(metadataDir); err != nil {
		return errors.Wrap(err, "chain metadata dir")
	}

	nodeDirs, err := listNodeDirs(opts.ChainDir, opts.ChainName)
	if err != nil {
		return err
	}
	if len(nodeDirs) == 0 {
		return errors.Wrapf(core.ErrEmptyChain, "no %s-* node dirs in %s", opts.ChainName, opts.ChainDir)
	}

	logger.InfoKV(ctx, "found node dirs", "count", len(nodeDirs))

	// Load and transcode every node (TLS fields still unset).
	var (
		cfgs    = make([]*config.NodeConfig, 0, len(nodeDirs))
		records = make([]core.NodeRecord, 0, len(nodeDirs))
	)
	for _, dir := range nodeDirs {
		old, err := config.LoadOldNode(dir)
		if err != nil {
			return errors.Wrapf(err, "load old node config in %s", dir)
		}

		cfgs = append(cfgs, config.NewNodeConfig(old))
		records = append(records, core.NodeRecord{
			LogicalAddress: old.NodeAddress,
			DeclaredPeers:  old.DeclaredPeers(),
		})
	}

	// Reconcile network identities and issue the credential batch.
	resolved, addrByEndpoint, err := identity.Resolve(records)
	if err != nil {
		return errors.Wrap(err, "resolve network identities")
	}

	authority, leaves, err := certs.IssueAll(resolved)
	if err != nil {
		return errors.Wrap(err, "issue certificates")
	}

	secured, err := certs.BindPeers(resolved, addrByEndpoint, authority.CertAndKey(), leaves)
	if err != nil {
		return errors.Wrap(err, "bind peer identities")
	}

	for i := range cfgs {
		if err := applyTLS(cfgs[i], secured[i]); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "issued credential batch", "nodes", len(secured))

	// Chain-wide metadata.
	newMetadataDir := filepath.Join(opts.OutDir, opts.ChainName)
	if err := os.MkdirAll(newMetadataDir, 0o755); err != nil {
		return errors.Wrap(err, "create new metadata dir")
	}

	adminKeyID, err := loadAdminKeyID(metadataDir, cfgs[0].SystemConfig.Admin)
	if err != nil {
		return err
	}

	meta := buildMetaConfig(cfgs, secured, authority.CertAndKey(), adminKeyID)
	if err := writeTOML(filepath.Join(newMetadataDir, "config.toml"), meta); err != nil {
		return errors.Wrap(err, "write meta config")
	}

	// The metadata dir carries one sample of the aux files and key database.
	if err := migrateAux(nodeDirs[0], newMetadataDir); err != nil {
		return errors.Wrap(err, "migrate aux files to metadata dir")
	}

	// Per-node output trees.
	for i, dir := range nodeDirs {
		address, ok := strings.CutPrefix(cfgs[i].Controller.NodeAddress, "0x")
		if !ok {
			return errors.Wrapf(core.ErrInvalidNodeAddress,
				"%s: must be a hex string with 0x prefix", cfgs[i].Controller.NodeAddress)
		}

		newDir := filepath.Join(opts.OutDir, opts.ChainName+"-"+address)
		if err := os.MkdirAll(newDir, 0o755); err != nil {
			return errors.Wrapf(err, "create new node dir %s", newDir)
		}

		if err := writeTOML(filepath.Join(newDir, "config.toml"), cfgs[i]); err != nil {
			return errors.Wrapf(err, "write node config for %s", dir)
		}

		if err := migrateAux(dir, newDir); err != nil {
			return errors.Wrapf(err, "migrate aux files for %s", dir)
		}

		if err := migrateData(dir, newDir); err != nil {
			return errors.Wrapf(err, "migrate data dirs for %s", dir)
		}

		if opts.VerifyData {
			count, err := store.Verify(filepath.Join(newDir, keyDBName))
			if err != nil {
				return errors.Wrapf(err, "verify key database for %s", dir)
			}
			logger.InfoKV(ctx, "key database verified", "dir", newDir, "keys", count)
		}

		logger.InfoKV(ctx, "node migrated",
			"old_dir", dir,
			"new_dir", newDir,
			"address", cfgs[i].Controller.NodeAddress,
			"endpoint", secured[i].SelfEndpoint.String(),
		)
	}

	return nil
}

// applyTLS moves one node's issued credentials and peer bindings onto its new
// config record.
func applyTLS(cfg *config.NodeConfig, node core.SecuredNode) error {
	cfg.Network.CACert = node.CACertPEM
	cfg.Network.Cert = node.CertPEM

	for i := range cfg.Network.Peers {
		p := &cfg.Network.Peers[i]

		addr, ok := node.PeerAddresses[core.Endpoint{Host: p.Host, Port: p.Port}]
		if !ok {
			return errors.Wrapf(core.ErrUnknownPeerEndpoint, "%s:%d", p.Host, p.Port)
		}
		p.Domain = addr
	}

	return nil
}

func loadAdminKeyID(metadataDir, admin string) (uint64, error) {
	raw, err := config.ReadText(filepath.Join(metadataDir, admin), "key_id")
	if err != nil {
		return 0, errors.Wrap(err, "load admin key_id")
	}

	keyID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid admin key_id")
	}

	return keyID, nil
}

// listNodeDirs returns the chain's node dirs sorted by their numeric node id.
func listNodeDirs(chainDir, chainName string) ([]string, error) {
	entries, err := os.ReadDir(chainDir)
	if err != nil {
		return nil, errors.Wrapf(err, "read chain dir %s", chainDir)
	}

	prefix := chainName + "-"

	type nodeDir struct {
		id   uint64
		path string
	}

	var dirs []nodeDir
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		id, err := strconv.ParseUint(strings.TrimPrefix(entry.Name(), prefix), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid node id in dir name %s", entry.Name())
		}

		dirs = append(dirs, nodeDir{id: id, path: filepath.Join(chainDir, entry.Name())})
	}

	slices.SortFunc(dirs, func(a, b nodeDir) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		default:
			return 0
		}
	})

	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		paths = append(paths, d.path)
	}

	return paths, nil
}

// migrateAux copies the logging configs and the key database from one node's
// old dir into its new dir.
func migrateAux(oldDir, newDir string) error {
	for _, name := range auxFiles {
		if err := copyFile(filepath.Join(oldDir, name), filepath.Join(newDir, name)); err != nil {
			return err
		}
	}

	return copyDir(filepath.Join(oldDir, keyDBName), filepath.Join(newDir, keyDBName))
}

// migrateData copies the ledger, storage and log dirs between node layouts.
func migrateData(oldDir, newDir string) error {
	for _, name := range dataDirs {
		if err := copyDir(filepath.Join(oldDir, name), filepath.Join(newDir, name)); err != nil {
			return err
		}
	}

	return nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.Wrapf(core.ErrNotDirectory, "%s", path)
	}
	return nil
}

func writeTOML(path string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", path)
	}
	return os.WriteFile(path, data, 0o644)
}
