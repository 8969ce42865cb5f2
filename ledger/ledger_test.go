package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/commands"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/model"
)

func newTestLedger(t *testing.T, difficulty int) *Ledger {
	l := New(difficulty, 100)
	_, err := l.CreateGenesis()
	require.Nil(t, err)
	return l
}

func TestCreateGenesis(t *testing.T) {
	l := New(2, 100)
	genesis, err := l.CreateGenesis()
	assert.Nil(t, err)
	assert.Equal(t, 0, genesis.Index)
	assert.Equal(t, model.GenesisPreviousHash, genesis.PreviousHash)
	assert.Empty(t, genesis.Transactions)
	assert.Equal(t, uint64(0), genesis.Nonce)
	// Hashed but never searched: no difficulty requirement on genesis.
	assert.NotEmpty(t, genesis.Hash)
	assert.Equal(t, 1, l.Height())

	_, err = l.CreateGenesis()
	assert.Error(t, err)
	assert.Equal(t, 1, l.Height())
}

func TestAddTransactionGrowsPool(t *testing.T) {
	l := newTestLedger(t, 1)

	index, err := l.AddTransaction("Alice", "Bob", 50)
	assert.Nil(t, err)
	assert.Equal(t, 1, index)
	assert.Len(t, l.Pending(), 1)

	index, err = l.AddTransaction("Bob", "Charlie", 20)
	assert.Nil(t, err)
	assert.Equal(t, 1, index)
	assert.Len(t, l.Pending(), 2)

	// Insertion order is preserved.
	pending := l.Pending()
	assert.Equal(t, "Alice", pending[0].Sender)
	assert.Equal(t, "Bob", pending[1].Sender)
}

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	l := newTestLedger(t, 1)

	_, err := l.AddTransaction("", "Bob", 50)
	assert.Error(t, err)
	_, err = l.AddTransaction("Alice", "", 50)
	assert.Error(t, err)
	_, err = l.AddTransaction("Alice", "Bob", -1)
	assert.Error(t, err)

	// The pool is untouched by rejected input.
	assert.Empty(t, l.Pending())
}

// Scenario: one transaction, difficulty 1, reward 100.
func TestMinePendingEndToEnd(t *testing.T) {
	l := newTestLedger(t, 1)

	index, err := l.AddTransaction("Alice", "Bob", 50)
	require.Nil(t, err)
	assert.Equal(t, 1, index)
	assert.Len(t, l.Pending(), 1)

	block, elapsed, interrupt, err := l.MinePending("Miner1", nil)
	require.Nil(t, err)
	require.NotNil(t, block)
	assert.True(t, interrupt.IsDefault())
	assert.True(t, elapsed >= 0)

	assert.Equal(t, 2, l.Height())
	assert.Equal(t, 1, block.Index)
	// Reward first, then the pool snapshot in order.
	require.Len(t, block.Transactions, 2)
	assert.Equal(t, model.Transaction{Sender: RewardSender, Recipient: "Miner1", Amount: 100}, block.Transactions[0])
	assert.Equal(t, model.Transaction{Sender: "Alice", Recipient: "Bob", Amount: 50}, block.Transactions[1])
	assert.True(t, strings.HasPrefix(block.Hash, "0"))
	assert.Empty(t, l.Pending())

	chain := l.Blocks()
	assert.Equal(t, chain[0].Hash, chain[1].PreviousHash)
	assert.True(t, l.IsValid())
}

func TestMinePendingEmptyPool(t *testing.T) {
	l := newTestLedger(t, 1)

	block, _, _, err := l.MinePending("Miner1", nil)
	assert.Nil(t, block)
	assert.True(t, errors.Is(err, ErrNothingToMine))
	assert.Equal(t, 1, l.Height())
}

func TestMinePendingZeroDifficultyAllowsEmptyBlock(t *testing.T) {
	l := newTestLedger(t, 0)

	block, _, _, err := l.MinePending("Miner1", nil)
	require.Nil(t, err)
	require.NotNil(t, block)
	// Only the reward is in there.
	require.Len(t, block.Transactions, 1)
	assert.Equal(t, RewardSender, block.Transactions[0].Sender)
	assert.Equal(t, 2, l.Height())
}

func TestMinePendingWithoutGenesis(t *testing.T) {
	l := New(0, 100)
	block, _, _, err := l.MinePending("Miner1", nil)
	assert.Nil(t, block)
	assert.Error(t, err)
}

func TestMinePendingRejectsEmptyRewardAddress(t *testing.T) {
	l := newTestLedger(t, 0)
	block, _, _, err := l.MinePending("", nil)
	assert.Nil(t, block)
	assert.Error(t, err)
	assert.Equal(t, 1, l.Height())
}

func TestMinePendingInterruptLeavesPoolIntact(t *testing.T) {
	l := newTestLedger(t, 1)
	_, err := l.AddTransaction("Alice", "Bob", 50)
	require.Nil(t, err)

	// Queue the stop before the search starts, it must win immediately.
	ctl := make(chan commands.Command, 1)
	ctl <- commands.Command{Op: commands.STOP}

	block, _, interrupt, err := l.MinePending("Miner1", ctl)
	assert.Nil(t, err)
	assert.Nil(t, block)
	assert.Equal(t, commands.Command{Op: commands.STOP}, interrupt)

	// Nothing dropped: the transaction is still pending, no block added.
	assert.Len(t, l.Pending(), 1)
	assert.Equal(t, 1, l.Height())
}

func TestTransactionsAreCapturedExactlyOnce(t *testing.T) {
	l := newTestLedger(t, 1)

	_, err := l.AddTransaction("Alice", "Bob", 50)
	require.Nil(t, err)
	_, _, _, err = l.MinePending("Miner1", nil)
	require.Nil(t, err)

	_, err = l.AddTransaction("Charlie", "Alice", 10)
	require.Nil(t, err)
	_, _, _, err = l.MinePending("Miner1", nil)
	require.Nil(t, err)

	// Each user transaction appears in exactly one block.
	seen := map[string]int{}
	for _, block := range l.Blocks() {
		for _, tx := range block.Transactions {
			if tx.Sender == RewardSender {
				continue
			}
			seen[tx.Sender+"->"+tx.Recipient]++
		}
	}
	assert.Equal(t, map[string]int{"Alice->Bob": 1, "Charlie->Alice": 1}, seen)
	assert.Empty(t, l.Pending())
}

func TestBlocksReturnsACopy(t *testing.T) {
	l := newTestLedger(t, 0)
	_, _, _, err := l.MinePending("Miner1", nil)
	require.Nil(t, err)

	view := l.Blocks()
	view[1].Transactions[0].Amount = 9999
	view[1].PreviousHash = "tampered"

	// The ledger's own state is unaffected by mutating the view.
	assert.True(t, l.IsValid())
}
