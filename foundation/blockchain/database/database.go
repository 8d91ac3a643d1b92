// Package database maintains the data types that make up the blockchain and
// the rules a chain of blocks must satisfy.
package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/kcoin/foundation/blockchain/pow"
)

// Set of error variables for chain validation.
var (
	ErrEmptyChain      = errors.New("chain is empty")
	ErrChainValidation = errors.New("chain validation failure")
)

// ChainResponse is the document a node returns when asked for its chain.
type ChainResponse struct {
	Chain  []Block `json:"chain"`
	Length int     `json:"length"`
}

// =============================================================================

// ValidateBlock takes a block and validates it can follow the previous block
// in the chain.
func (b Block) ValidateBlock(previousBlock Block, difficulty int, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Index)

	nextIndex := previousBlock.Index + 1
	if b.Index != nextIndex {
		return fmt.Errorf("%w: block is not the next number, got %d, exp %d", ErrChainValidation, b.Index, nextIndex)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: previous hash does match previous block", b.Index)

	if hash := previousBlock.Hash(); b.PreviousHash != hash {
		return fmt.Errorf("%w: blk[%d]: previous block hash doesn't match, got %s, exp %s", ErrChainValidation, b.Index, b.PreviousHash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: proof solves the puzzle", b.Index)

	if !pow.IsSolved(b.Proof, previousBlock.Proof, difficulty) {
		return fmt.Errorf("%w: blk[%d]: proof %d does not solve against previous proof %d", ErrChainValidation, b.Index, b.Proof, previousBlock.Proof)
	}

	return nil
}

// ValidateChain walks the chain from the first block and checks every block
// is linked to and solves the puzzle against the block before it. The first
// block is not checked against anything, so a single block chain is valid.
func ValidateChain(chain []Block, difficulty int, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	if len(chain) == 0 {
		return ErrEmptyChain
	}

	evHandler("database: ValidateChain: started: blocks[%d]", len(chain))
	defer evHandler("database: ValidateChain: completed: blocks[%d]", len(chain))

	previousBlock := chain[0]
	for _, block := range chain[1:] {
		if err := block.ValidateBlock(previousBlock, difficulty, evHandler); err != nil {
			return err
		}
		previousBlock = block
	}

	return nil
}

// IsValid reports whether the chain passes validation.
func IsValid(chain []Block, difficulty int) bool {
	return ValidateChain(chain, difficulty, nil) == nil
}
