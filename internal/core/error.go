package core

import "fmt"

var (
	ErrNotEnoughNodes       = fmt.Errorf("not enough nodes")
	ErrInconsistentTopology = fmt.Errorf("inconsistent topology")
	ErrUnknownPeerEndpoint  = fmt.Errorf("unknown peer endpoint")

	ErrNotDirectory       = fmt.Errorf("not a directory")
	ErrEmptyChain         = fmt.Errorf("empty chain")
	ErrInvalidNodeAddress = fmt.Errorf("invalid node address")
)
