package state

import (
	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
)

// RetrieveNodeID returns the identity this node mines under.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of the chain and its length.
func (s *State) RetrieveChain() ([]database.Block, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := make([]database.Block, len(s.chain))
	copy(chain, s.chain)

	return chain, len(chain)
}

// IsChainValid validates the chain currently held by this node.
func (s *State) IsChainValid() bool {
	chain, _ := s.RetrieveChain()
	return s.IsValid(chain)
}

// RetrieveSnapshot returns a copy of the chain and the pending transactions
// taken together. A transaction is never in both.
func (s *State) RetrieveSnapshot() ([]database.Block, []database.Transaction) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := make([]database.Block, len(s.chain))
	copy(chain, s.chain)

	return chain, s.mempool.Copy()
}

// RetrievePending returns a copy of the pending transactions.
func (s *State) RetrievePending() []database.Transaction {
	return s.mempool.Copy()
}

// QueryPendingLength returns the current number of pending transactions.
func (s *State) QueryPendingLength() int {
	return s.mempool.Count()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}
