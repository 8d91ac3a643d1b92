package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
)

// CreateBlock appends a new block holding every pending transaction to the
// chain. The pool is emptied in the same critical section, so no reader ever
// sees the block without the pool cleared or the other way around.
func (s *State) CreateBlock(proof int64, previousHash string) database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createBlock(proof, previousHash)
}

// PreviousBlock returns the last block in the chain.
func (s *State) PreviousBlock() (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.previousBlock()
}

// IsValid reports whether the specified chain follows the consensus rules.
func (s *State) IsValid(chain []database.Block) bool {
	return s.ValidateChain(chain) == nil
}

// ValidateChain checks the specified chain against the consensus rules and
// returns the first violation found.
func (s *State) ValidateChain(chain []database.Block) error {
	return database.ValidateChain(chain, s.genesis.Difficulty, s.evHandler)
}

// =============================================================================

// createBlock must be called with the lock held for writing.
func (s *State) createBlock(proof int64, previousHash string) database.Block {
	trans := s.mempool.Drain()
	block := database.NewBlock(int64(len(s.chain))+1, time.Now(), proof, previousHash, trans)

	// Readers may be holding the current slice, so the chain is never
	// modified in place.
	chain := make([]database.Block, len(s.chain), len(s.chain)+1)
	copy(chain, s.chain)
	s.chain = append(chain, block)

	s.evHandler("state: createBlock: blk[%d]: proof[%d]: numTrans[%d]", block.Index, block.Proof, len(block.Transactions))
	s.blockEvent(block)

	return block
}

// previousBlock must be called with the lock held.
func (s *State) previousBlock() (database.Block, error) {
	if len(s.chain) == 0 {
		return database.Block{}, database.ErrEmptyChain
	}

	return s.chain[len(s.chain)-1], nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash(), string(blockJSON))
}
