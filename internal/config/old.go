package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/escalopa/chain-migrate/internal/core"
)

// Old-schema record shapes, one per file of a node's data dir.

type (
	OldControllerConfig struct {
		NetworkPort   uint16 `mapstructure:"network_port"`
		ConsensusPort uint16 `mapstructure:"consensus_port"`
		StoragePort   uint16 `mapstructure:"storage_port"`
		KmsPort       uint16 `mapstructure:"kms_port"`
		ExecutorPort  uint16 `mapstructure:"executor_port"`
	}

	OldConsensusConfig struct {
		ControllerPort uint16 `mapstructure:"controller_port"`
	}

	OldPeerConfig struct {
		IP   string `mapstructure:"ip"`
		Port uint16 `mapstructure:"port"`
	}

	OldNetworkConfig struct {
		Port  uint16          `mapstructure:"port"`
		Peers []OldPeerConfig `mapstructure:"peers"`
	}

	OldSystemConfig struct {
		Version       uint64   `mapstructure:"version"`
		Admin         string   `mapstructure:"admin"`
		BlockInterval uint64   `mapstructure:"block_interval"`
		ChainID       string   `mapstructure:"chain_id"`
		Validators    []string `mapstructure:"validators"`
	}

	OldGenesis struct {
		Timestamp uint64 `mapstructure:"timestamp"`
		Prevhash  string `mapstructure:"prevhash"`
	}

	// OldNode aggregates everything loaded from one node's old data dir.
	OldNode struct {
		ControllerPort uint16
		ConsensusPort  uint16
		ExecutorPort   uint16
		NetworkPort    uint16
		KmsPort        uint16
		StoragePort    uint16

		NodeAddress string
		Genesis     OldGenesis
		System      OldSystemConfig

		KmsPassword string
		KeyID       uint64

		Network OldNetworkConfig
	}
)

// DeclaredPeers returns the node's peer view as endpoints, in config order.
func (n *OldNode) DeclaredPeers() []core.Endpoint {
	peers := make([]core.Endpoint, 0, len(n.Network.Peers))
	for _, p := range n.Network.Peers {
		peers = append(peers, core.Endpoint{Host: p.IP, Port: p.Port})
	}
	return peers
}

// LoadOldNode reads and parses one node's old-schema files from dataDir.
func LoadOldNode(dataDir string) (*OldNode, error) {
	var controller OldControllerConfig
	if err := loadTOML(dataDir, "controller-config.toml", &controller); err != nil {
		return nil, err
	}

	var consensus OldConsensusConfig
	if err := loadTOML(dataDir, "consensus-config.toml", &consensus); err != nil {
		return nil, err
	}

	var network OldNetworkConfig
	if err := loadTOML(dataDir, "network-config.toml", &network); err != nil {
		return nil, err
	}

	var system OldSystemConfig
	if err := loadTOML(dataDir, "init_sys_config.toml", &system); err != nil {
		return nil, err
	}

	var genesis OldGenesis
	if err := loadTOML(dataDir, "genesis.toml", &genesis); err != nil {
		return nil, err
	}

	nodeAddress, err := ReadText(dataDir, "node_address")
	if err != nil {
		return nil, err
	}

	keyIDStr, err := ReadText(dataDir, "key_id")
	if err != nil {
		return nil, err
	}

	keyID, err := strconv.ParseUint(keyIDStr, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid key_id in %s", dataDir)
	}

	kmsPassword, err := ReadText(dataDir, "key_file")
	if err != nil {
		return nil, err
	}

	return &OldNode{
		ControllerPort: consensus.ControllerPort,
		ConsensusPort:  controller.ConsensusPort,
		ExecutorPort:   controller.ExecutorPort,
		NetworkPort:    controller.NetworkPort,
		KmsPort:        controller.KmsPort,
		StoragePort:    controller.StoragePort,

		NodeAddress: nodeAddress,
		Genesis:     genesis,
		System:      system,

		KmsPassword: kmsPassword,
		KeyID:       keyID,

		Network: network,
	}, nil
}

func loadTOML(dataDir, fileName string, out any) error {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dataDir, fileName))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read %s in %s", fileName, dataDir)
	}

	if err := v.Unmarshal(out); err != nil {
		return errors.Wrapf(err, "parse %s in %s", fileName, dataDir)
	}

	return nil
}

// ReadText reads a small text file and trims surrounding whitespace.
func ReadText(dataDir, fileName string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, fileName))
	if err != nil {
		return "", errors.Wrapf(err, "read %s in %s", fileName, dataDir)
	}
	return strings.TrimSpace(string(data)), nil
}
