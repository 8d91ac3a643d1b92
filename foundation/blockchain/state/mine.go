package state

import (
	"context"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/pow"
)

// MineNewBlock solves the puzzle against the latest block and adds a new
// block with the pending transactions and the mining reward. The search runs
// without holding the lock so transactions can keep arriving. If the chain
// changed while searching, the solution is stale and the search starts again
// against the new latest block. This can be cancelled.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	for {
		prevBlock, err := s.PreviousBlock()
		if err != nil {
			return database.Block{}, err
		}

		s.evHandler("state: MineNewBlock: MINING: perform POW: prevBlk[%d]", prevBlock.Index)

		proof, err := pow.Solve(ctx, prevBlock.Proof, s.genesis.Difficulty, s.evHandler)
		if err != nil {
			return database.Block{}, err
		}

		previousHash := prevBlock.Hash()

		block, ok, err := s.commitMinedBlock(proof, previousHash)
		if err != nil {
			return database.Block{}, err
		}

		if ok {
			return block, nil
		}

		s.evHandler("state: MineNewBlock: MINING: chain changed while mining, starting over")
	}
}

// commitMinedBlock creates the block if the latest block is still the one
// the proof was solved against.
func (s *State) commitMinedBlock(proof int64, previousHash string) (database.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.previousBlock()
	if err != nil {
		return database.Block{}, false, err
	}

	if latest.Hash() != previousHash {
		return database.Block{}, false, nil
	}

	s.evHandler("state: MineNewBlock: MINING: apply mining reward: receiver[%s]", s.genesis.RewardReceiver)

	s.mempool.Add(database.NewTransaction(s.nodeID, s.genesis.RewardReceiver, s.genesis.MiningReward))

	return s.createBlock(proof, previousHash), true, nil
}
