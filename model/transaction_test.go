package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransaction(t *testing.T) {
	tx, err := NewTransaction("Alice", "Bob", 50)
	assert.Nil(t, err)
	assert.Equal(t, Transaction{Sender: "Alice", Recipient: "Bob", Amount: 50}, tx)
}

func TestNewTransactionRejectsEmptySender(t *testing.T) {
	_, err := NewTransaction("", "Bob", 50)
	assert.Error(t, err)
	verr, ok := err.(*ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "sender", verr.Field)
}

func TestNewTransactionRejectsEmptyRecipient(t *testing.T) {
	_, err := NewTransaction("Alice", "", 50)
	assert.Error(t, err)
	verr, ok := err.(*ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "recipient", verr.Field)
}

func TestNewTransactionRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewTransaction("Alice", "Bob", 0)
	assert.Error(t, err)

	_, err = NewTransaction("Alice", "Bob", -3.5)
	assert.Error(t, err)
	verr, ok := err.(*ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "amount", verr.Field)
}
