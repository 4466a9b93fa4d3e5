package core

import "fmt"

type (
	// Endpoint is a (host, port) pair where a node listens for peer connections.
	// Comparable, so it can be used directly as a map or set key.
	Endpoint struct {
		Host string
		Port uint16
	}

	// NodeRecord is a node's view of the deployment before identity resolution.
	// DeclaredPeers holds the endpoints of every other node, never the node's own.
	NodeRecord struct {
		// LogicalAddress is the node's on-chain identity, distinct from any
		// network address.
		LogicalAddress string

		DeclaredPeers []Endpoint
	}

	// ResolvedNode is a NodeRecord whose own endpoint has been inferred.
	// Only identity.Resolve produces these.
	ResolvedNode struct {
		NodeRecord

		SelfEndpoint Endpoint
	}

	// SecuredNode is a ResolvedNode with its TLS material and per-peer identity
	// bindings attached. Only certs.BindPeers produces these.
	SecuredNode struct {
		ResolvedNode

		// CertPEM is the node's own leaf certificate.
		CertPEM string

		// CACertPEM is the common trust anchor shared by all nodes of the run.
		CACertPEM string

		// PeerAddresses maps each declared peer's endpoint to the logical
		// address its presented certificate must carry.
		PeerAddresses map[Endpoint]string
	}
)

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}
