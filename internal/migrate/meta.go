package migrate

import (
	"github.com/escalopa/chain-migrate/internal/certs"
	"github.com/escalopa/chain-migrate/internal/config"
	"github.com/escalopa/chain-migrate/internal/core"
)

// buildMetaConfig assembles the chain-wide config from the first node's view.
// All nodes of a consistent deployment share system config and genesis, so the
// first node (lowest node id) serves as the sample.
func buildMetaConfig(
	cfgs []*config.NodeConfig,
	secured []core.SecuredNode,
	authority certs.CertAndKey,
	adminKeyID uint64,
) *config.MetaConfig {
	first, firstNode := cfgs[0], secured[0]

	// The meta peer list covers the full deployment: the sample node itself
	// first, then the peers it declares.
	self := config.NetworkPeerConfig{
		Domain: first.Controller.NodeAddress,
		Host:   firstNode.SelfEndpoint.Host,
		Port:   firstNode.SelfEndpoint.Port,
	}
	peers := append([]config.NetworkPeerConfig{self}, first.Network.Peers...)
	network := config.MetaNetworkConfig{Peers: peers}

	var (
		ips      = make([]string, 0, len(peers))
		p2pPorts = make([]uint16, 0, len(peers))
	)
	for _, p := range peers {
		ips = append(ips, p.Host)
		p2pPorts = append(p2pPorts, p.Port)
	}

	var (
		addresses = make([]string, 0, len(cfgs))
		rpcPorts  = make([]uint16, 0, len(cfgs))
	)
	for _, cfg := range cfgs {
		addresses = append(addresses, cfg.Controller.NodeAddress)
		rpcPorts = append(rpcPorts, cfg.Controller.ControllerPort)
	}

	return &config.MetaConfig{
		Network:      network,
		GenesisBlock: first.GenesisBlock,
		SystemConfig: first.SystemConfig,
		Admin: config.MetaAdminConfig{
			AdminAddress: first.SystemConfig.Admin,
			KeyID:        adminKeyID,
		},
		Current: config.MetaCurrentConfig{
			Addresses: addresses,

			CACertPEM: authority.CertPEM,
			CAKeyPEM:  authority.KeyPEM,

			Count: uint64(len(cfgs)),

			IPs:      ips,
			P2PPorts: p2pPorts,
			RPCPorts: rpcPorts,

			UseNum: false,

			TLSPeers: network,
		},
	}
}
