// Package pow implements the proof of work puzzle used to rate limit the
// creation of new blocks.
package pow

import (
	"context"
	"math/big"
	"strings"

	"github.com/ardanlabs/kcoin/foundation/blockchain/digest"
)

// Difficulty is the default number of leading zero hex digits a solution
// must produce.
const Difficulty = 4

// reportInterval is how often the search reports its progress.
const reportInterval = 100_000

// Solve finds the smallest positive proof that solves the puzzle against the
// previous proof. Candidates are tried in increasing order starting at 1, so
// the answer is the same every time for the same previous proof. The search
// checks the context on every attempt and returns its error when cancelled.
func Solve(ctx context.Context, previous int64, difficulty int, ev func(v string, args ...any)) (int64, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("pow: Solve: MINING: started: prevProof[%d]", previous)
	defer ev("pow: Solve: MINING: completed: prevProof[%d]", previous)

	prev := big.NewInt(previous)
	prevSq := new(big.Int).Mul(prev, prev)

	var cand, work big.Int
	for candidate := int64(1); ; candidate++ {
		if ctx.Err() != nil {
			ev("pow: Solve: MINING: CANCELLED: attempts[%d]", candidate-1)
			return 0, ctx.Err()
		}

		if candidate%reportInterval == 0 {
			ev("pow: Solve: MINING: attempts[%d]", candidate)
		}

		cand.SetInt64(candidate)
		work.Mul(&cand, &cand)
		work.Sub(&work, prevSq)

		if isHashSolved(difficulty, digest.Sum(work.String())) {
			ev("pow: Solve: MINING: SOLVED: proof[%d]: attempts[%d]", candidate, candidate)
			return candidate, nil
		}
	}
}

// IsSolved reports whether the candidate proof solves the puzzle against
// the previous proof.
func IsSolved(candidate int64, previous int64, difficulty int) bool {
	cand := big.NewInt(candidate)
	prev := big.NewInt(previous)

	work := new(big.Int).Mul(cand, cand)
	work.Sub(work, new(big.Int).Mul(prev, prev))

	return isHashSolved(difficulty, digest.Sum(work.String()))
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty int, hash string) bool {
	if difficulty < 0 || difficulty > len(hash) {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", difficulty)
}
