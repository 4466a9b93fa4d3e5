package identity

import (
	goset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/escalopa/chain-migrate/internal/core"
)

// Resolve infers each node's own endpoint from the partial ("everyone but me")
// peer views and builds the global endpoint to logical-address map.
//
// Each node declares every endpoint of the deployment except its own, and any
// two nodes exclude different endpoints, so the union of the first two views is
// already the full endpoint set. A node's own endpoint is then the single
// element missing from its view.
//
// Resolve is all-or-nothing: if any node's view does not yield exactly one
// candidate, it fails with core.ErrInconsistentTopology naming the node and no
// mapping is returned.
//
// Limitation: a view with one real endpoint replaced by a spurious one still
// yields a single (wrong) candidate and cannot be detected here.
func Resolve(nodes []core.NodeRecord) ([]core.ResolvedNode, map[core.Endpoint]string, error) {
	if len(nodes) < 2 {
		return nil, nil, errors.Wrapf(core.ErrNotEnoughNodes, "want at least 2, got %d", len(nodes))
	}

	full := goset.NewSet[core.Endpoint]()
	for _, node := range nodes[:2] {
		for _, ep := range node.DeclaredPeers {
			full.Add(ep)
		}
	}

	var (
		resolved   = make([]core.ResolvedNode, len(nodes))
		byEndpoint = xsync.NewMapOf[core.Endpoint, string]()

		g errgroup.Group
	)

	for i, node := range nodes {
		g.Go(func() error {
			diff := full.Difference(goset.NewSet(node.DeclaredPeers...))
			if diff.Cardinality() != 1 {
				return errors.Wrapf(core.ErrInconsistentTopology,
					"node %d (%s): %d self endpoint candidates", i, node.LogicalAddress, diff.Cardinality())
			}

			self, _ := diff.Pop()
			resolved[i] = core.ResolvedNode{NodeRecord: node, SelfEndpoint: self}
			byEndpoint.Store(self, node.LogicalAddress)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	addrByEndpoint := make(map[core.Endpoint]string, byEndpoint.Size())
	byEndpoint.Range(func(ep core.Endpoint, addr string) bool {
		addrByEndpoint[ep] = addr
		return true
	})

	return resolved, addrByEndpoint, nil
}
