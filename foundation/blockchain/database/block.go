package database

import (
	"encoding/json"
	"time"

	"github.com/ardanlabs/kcoin/foundation/blockchain/digest"
)

// TimeLayout is the layout used to render a block timestamp. It matches the
// rendering used by reference nodes so block digests interoperate.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Block represents a group of transactions batched together. The timestamp
// is carried as the rendered string so a block received from a peer hashes
// to exactly the value the peer computed.
type Block struct {
	Index        int64         `json:"index"`
	Timestamp    string        `json:"timestamp"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
}

// NewBlock constructs a block for the specified position in the chain.
func NewBlock(index int64, now time.Time, proof int64, previousHash string, trans []Transaction) Block {
	txs := make([]Transaction, len(trans))
	copy(txs, trans)

	return Block{
		Index:        index,
		Timestamp:    now.Format(TimeLayout),
		Proof:        proof,
		PreviousHash: previousHash,
		Transactions: txs,
	}
}

// Hash returns the unique hash for the Block. Every field takes part.
func (b Block) Hash() string {
	return digest.Hash(b)
}

// MarshalJSON makes sure an empty transaction list is written as [] and
// not null, since the list is part of the hashed content.
func (b Block) MarshalJSON() ([]byte, error) {
	type block Block

	cpy := block(b)
	if cpy.Transactions == nil {
		cpy.Transactions = []Transaction{}
	}

	return json.Marshal(cpy)
}
