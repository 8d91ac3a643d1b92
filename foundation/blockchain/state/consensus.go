package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
)

// ErrPeerUnreachable is reported when a peer's chain can't be retrieved.
var ErrPeerUnreachable = errors.New("peer unreachable")

// peerChain is the outcome of asking one peer for its chain.
type peerChain struct {
	peer peer.Peer
	resp database.ChainResponse
	err  error
}

// Resolve asks every known peer for its chain and replaces the local chain
// with the longest one that is strictly longer than the local chain and
// passes validation. A peer that can't be reached or returns garbage
// contributes nothing. Equal length chains are never adopted. The returned
// error is only set when the parent context is done.
//
// This is the naive longest chain rule. A peer can fabricate a
// longer chain that is valid on its own and this node will adopt it.
func (s *State) Resolve(ctx context.Context) (bool, error) {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	_, localLength := s.RetrieveChain()

	results := s.fetchPeerChains(ctx)
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	maxLength := localLength
	var longest []database.Block

	for _, result := range results {
		if result.err != nil {
			s.evHandler("state: Resolve: %s: WARNING: %s", result.peer, result.err)
			continue
		}

		length := result.resp.Length
		if length <= maxLength {
			s.evHandler("state: Resolve: %s: length[%d] not longer than [%d]", result.peer, length, maxLength)
			continue
		}

		if length != len(result.resp.Chain) {
			s.evHandler("state: Resolve: %s: WARNING: reported length[%d] doesn't match blocks[%d]", result.peer, length, len(result.resp.Chain))
			continue
		}

		if err := s.ValidateChain(result.resp.Chain); err != nil {
			s.evHandler("state: Resolve: %s: WARNING: chain discarded: %s", result.peer, err)
			continue
		}

		maxLength = length
		longest = result.resp.Chain
	}

	if longest == nil {
		return false, nil
	}

	if !s.replaceChain(longest) {
		s.evHandler("state: Resolve: local chain grew past the candidate, keeping local chain")
		return false, nil
	}

	// If a mining operation is running it is working on a stale block.
	s.Worker.SignalCancelMining()

	return true, nil
}

// =============================================================================

// fetchPeerChains requests the chain from all known peers at the same time.
// Each request is bounded by the peer timeout.
func (s *State) fetchPeerChains(ctx context.Context) []peerChain {
	peers := s.RetrieveKnownPeers()
	results := make([]peerChain, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func(i int, pr peer.Peer) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			resp, err := s.fetcher(ctx, pr)
			if err != nil {
				err = fmt.Errorf("%w: %s: %s", ErrPeerUnreachable, pr, err)
			}

			results[i] = peerChain{peer: pr, resp: resp, err: err}
		}(i, pr)
	}

	wg.Wait()

	return results
}

// replaceChain swaps in the candidate chain if it is still longer than the
// local chain. Pending transactions are left untouched.
func (s *State) replaceChain(candidate []database.Block) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidate) <= len(s.chain) {
		return false
	}

	chain := make([]database.Block, len(candidate))
	copy(chain, candidate)
	s.chain = chain

	latest := chain[len(chain)-1]
	s.evHandler("state: replaceChain: adopted chain: blocks[%d]: latestBlk[%s]", len(chain), latest.Hash())

	return true
}
