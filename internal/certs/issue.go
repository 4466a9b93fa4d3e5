package certs

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/escalopa/chain-migrate/internal/core"
)

// IssueAll creates the run's authority and one leaf per resolved node. Leaves
// are issued concurrently since key generation is CPU-bound and independent;
// per-node results are collected first and merged only after all complete, so
// a failed node never races a partially built result.
func IssueAll(resolved []core.ResolvedNode) (*Authority, map[string]CertAndKey, error) {
	authority, err := NewAuthority()
	if err != nil {
		return nil, nil, err
	}

	var (
		leaves = make([]CertAndKey, len(resolved))

		g errgroup.Group
	)

	for i, node := range resolved {
		g.Go(func() error {
			leaf, err := authority.IssueLeaf(node.LogicalAddress)
			if err != nil {
				return err
			}
			leaves[i] = leaf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	leafByAddress := make(map[string]CertAndKey, len(resolved))
	for i, node := range resolved {
		leafByAddress[node.LogicalAddress] = leaves[i]
	}

	return authority, leafByAddress, nil
}

// BindPeers attaches the authority certificate and each node's own leaf to its
// record and maps every declared peer endpoint to the logical address its
// certificate must present. An endpoint absent from the resolved map means the
// peer lists reference something outside the full endpoint set; that is fatal
// for the run.
func BindPeers(
	resolved []core.ResolvedNode,
	addrByEndpoint map[core.Endpoint]string,
	authority CertAndKey,
	leaves map[string]CertAndKey,
) ([]core.SecuredNode, error) {
	secured := make([]core.SecuredNode, 0, len(resolved))

	for _, node := range resolved {
		leaf, ok := leaves[node.LogicalAddress]
		if !ok {
			return nil, errors.Errorf("no leaf certificate issued for %s", node.LogicalAddress)
		}

		peers := make(map[core.Endpoint]string, len(node.DeclaredPeers))
		for _, ep := range node.DeclaredPeers {
			addr, ok := addrByEndpoint[ep]
			if !ok {
				return nil, errors.Wrapf(core.ErrUnknownPeerEndpoint, "%s", ep)
			}
			peers[ep] = addr
		}

		secured = append(secured, core.SecuredNode{
			ResolvedNode:  node,
			CertPEM:       leaf.CertPEM,
			CACertPEM:     authority.CertPEM,
			PeerAddresses: peers,
		})
	}

	return secured, nil
}
