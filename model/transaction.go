package model

import "fmt"

// A ValidationError rejects transaction fields that cannot form a
// well-formed record. The pool is never touched when one is returned.
type ValidationError struct {
	// Which field was rejected.
	Field string
	// Why it was rejected.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction %s: %s", e.Field, e.Reason)
}

// Transaction is an immutable transfer record. Blocks store value copies
// of these, never references, so a committed transaction cannot be changed
// through the pool afterwards.
type Transaction struct {
	// Address of the sender. Mining rewards use the "network" sender.
	Sender string `json:"sender"`
	// Address of the receiver.
	Recipient string `json:"recipient"`
	// How much value to transfer. Always positive.
	Amount float64 `json:"amount"`
}

// NewTransaction validates the fields and builds the record. All checks
// run before anything is constructed, so a failure is never partially
// applied.
func NewTransaction(sender, recipient string, amount float64) (Transaction, error) {
	if sender == "" {
		return Transaction{}, &ValidationError{Field: "sender", Reason: "must be a non-empty string"}
	}
	if recipient == "" {
		return Transaction{}, &ValidationError{Field: "recipient", Reason: "must be a non-empty string"}
	}
	if amount <= 0 {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	return Transaction{Sender: sender, Recipient: recipient, Amount: amount}, nil
}
