package public

import (
	"github.com/ardanlabs/kcoin/business/sys/validate"
	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
)

// The payload fields are pointers so a missing key can be told apart from
// a zero value.
type transactionRequest struct {
	Sender   *string          `json:"sender" validate:"required"`
	Receiver *string          `json:"receiver" validate:"required"`
	Amount   *database.Amount `json:"amount" validate:"required"`
}

// Validate checks the request carries every transaction field.
func (tr transactionRequest) Validate() error {
	return validate.Check(tr)
}

func (tr transactionRequest) toTransaction() database.Transaction {
	return database.NewTransaction(*tr.Sender, *tr.Receiver, *tr.Amount)
}

type connectRequest struct {
	Nodes []string `json:"nodes" validate:"required,min=1"`
}

// Validate checks the request names at least one node.
func (cr connectRequest) Validate() error {
	return validate.Check(cr)
}

type mineResponse struct {
	Message      string                 `json:"message"`
	Index        int64                  `json:"index"`
	Timestamp    string                 `json:"timestamp"`
	Proof        int64                  `json:"proof"`
	PreviousHash string                 `json:"previous_hash"`
	Transactions []database.Transaction `json:"transactions"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type connectResponse struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

type replaceResponse struct {
	Message     string           `json:"message"`
	NewChain    []database.Block `json:"new_chain,omitempty"`
	ActualChain []database.Block `json:"actual_chain,omitempty"`
}
