package state

import "github.com/ardanlabs/kcoin/foundation/blockchain/database"

// AddTransaction adds the transaction to the pending pool and returns the
// index of the block it will be included in. No validation of the values is
// performed.
func (s *State) AddTransaction(tx database.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevBlock, err := s.previousBlock()
	if err != nil {
		return 0, err
	}

	n := s.mempool.Add(tx)
	s.evHandler("state: AddTransaction: tx[%s]: pending[%d]", tx, n)

	return prevBlock.Index + 1, nil
}
