package database

import "fmt"

// Transaction is the transactional information between two parties. There is
// no signature, any caller can construct one.
type Transaction struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   Amount `json:"amount"`
}

// NewTransaction constructs a new transaction.
func NewTransaction(sender string, receiver string, amount Amount) Transaction {
	return Transaction{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s:%s:%s", tx.Sender, tx.Receiver, tx.Amount)
}
