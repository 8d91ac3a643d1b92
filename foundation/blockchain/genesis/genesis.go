// Package genesis maintains access to the genesis settings.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
)

// Genesis represents the genesis settings.
type Genesis struct {
	Proof          int64           `json:"proof"`           // Proof carried by the first block, it is never verified.
	PreviousHash   string          `json:"previous_hash"`   // Previous hash carried by the first block.
	Difficulty     int             `json:"difficulty"`      // Number of leading zero hex digits a proof must produce.
	MiningReward   database.Amount `json:"mining_reward"`   // Amount credited to the miner for each block.
	RewardReceiver string          `json:"reward_receiver"` // Receiver named on the reward transaction.
}

// Default returns the settings used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Proof:          1,
		PreviousHash:   "0",
		Difficulty:     4,
		MiningReward:   "1",
		RewardReceiver: "you",
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Fields not present in the file
// keep their default value.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if genesis.Difficulty < 1 || genesis.Difficulty > 64 {
		return Genesis{}, fmt.Errorf("difficulty %d out of range", genesis.Difficulty)
	}

	return genesis, nil
}
