package ledger

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	uuid "github.com/satori/go.uuid"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/commands"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/config"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/model"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/utils"
)

// RewardSender is the sender recorded on every mining reward. It marks the
// value as created by the system rather than transferred from a user.
const RewardSender = "network"

// ErrNothingToMine signals a mining request against an empty pool at a
// non-zero difficulty. Not fatal: the caller simply has nothing to do yet.
var ErrNothingToMine = errors.New("no pending transactions to mine")

// A Ledger owns the committed chain and the pending pool and should be the
// only path to either. A single mutex covers every mutation and snapshot,
// so a transaction added while a search is running is captured exactly
// once: either in the snapshot the search started from, or in the pool
// kept for the next block.
type Ledger struct {
	// Committed blocks. Append-only once a block is mined.
	chain []model.Block
	// Accepted transactions waiting for the next mining pass, in
	// insertion order.
	pending []model.Transaction
	// Required count of leading hex zeros in a valid block hash.
	difficulty int
	// Paid to the miner of each block as its first transaction.
	miningReward float64
	// A single mutex for changing internal state.
	m sync.RWMutex
	// A unique identifier of this session. It never affects the chain,
	// only correlates log lines.
	uuid string
}

// New creates an empty ledger with the given settings. The caller decides
// whether to seed it with CreateGenesis or from a persisted document.
func New(difficulty int, miningReward float64) *Ledger {
	return &Ledger{
		chain:        []model.Block{},
		pending:      []model.Transaction{},
		difficulty:   difficulty,
		miningReward: miningReward,
		uuid:         uuid.NewV4().String(),
	}
}

// NewFromConfig creates an empty ledger from the app config.
func NewFromConfig(c config.AppConfig) *Ledger {
	return New(c.DIFFICULTY, c.MINING_REWARD)
}

// Restore rebuilds a ledger from persisted state. The chain is installed
// as-is; callers that care about integrity run CheckIntegrity afterwards,
// restoring alone proves nothing.
func Restore(chain []model.Block, pending []model.Transaction, difficulty int, miningReward float64) *Ledger {
	l := New(difficulty, miningReward)
	l.chain = chain
	l.pending = pending
	return l
}

// CreateGenesis appends the first block to an empty chain. Genesis is
// hashed but never searched: it is exempt from the difficulty target here
// and stays exempt in validation.
func (l *Ledger) CreateGenesis() (model.Block, error) {
	l.m.Lock()
	defer l.m.Unlock()

	if len(l.chain) != 0 {
		return model.Block{}, errors.New("genesis block already exists")
	}
	genesis := model.Block{
		Index:        0,
		Transactions: []model.Transaction{},
		Timestamp:    model.Now(),
		PreviousHash: model.GenesisPreviousHash,
		Nonce:        0,
	}
	digest, err := utils.CalculateBlockHash(&genesis)
	if err != nil {
		return model.Block{}, err
	}
	genesis.Hash = digest
	l.chain = append(l.chain, genesis)
	log.Printf("ledger %s: genesis block created, hash %s", l.uuid, genesis.Hash)
	return genesis, nil
}

// AddTransaction validates the fields, appends the record to the end of
// the pool and returns the index of the block expected to contain it. On a
// validation error the pool is left unchanged.
func (l *Ledger) AddTransaction(sender, recipient string, amount float64) (int, error) {
	tx, err := model.NewTransaction(sender, recipient, amount)
	if err != nil {
		return 0, err
	}

	l.m.Lock()
	defer l.m.Unlock()
	l.pending = append(l.pending, tx)
	if len(l.chain) == 0 {
		return 0, nil
	}
	return l.chain[len(l.chain)-1].Index + 1, nil
}

// MinePending mines one block holding the miner's reward followed by a
// snapshot of the current pool, in that order. The search runs outside the
// lock so the pool stays responsive, and ctl can interrupt it at any
// iteration; when a command wins, the command is returned, no block is
// produced and the pool is untouched. A nil ctl mines to completion.
//
// On success the block is appended, exactly the snapshotted transactions
// leave the pool, and the block is returned with the search duration.
func (l *Ledger) MinePending(rewardAddress string, ctl chan commands.Command) (*model.Block, time.Duration, commands.Command, error) {
	none := commands.NewDefaultCommand()

	l.m.RLock()
	if len(l.chain) == 0 {
		l.m.RUnlock()
		return nil, 0, none, errors.New("cannot mine: no block to link to, create genesis first")
	}
	if len(l.pending) == 0 && l.difficulty > 0 {
		l.m.RUnlock()
		return nil, 0, none, ErrNothingToMine
	}
	tail := l.chain[len(l.chain)-1]
	snapshot := make([]model.Transaction, len(l.pending))
	copy(snapshot, l.pending)
	difficulty := l.difficulty
	rewardAmount := l.miningReward
	l.m.RUnlock()

	reward, err := model.NewTransaction(RewardSender, rewardAddress, rewardAmount)
	if err != nil {
		return nil, 0, none, err
	}

	txs := make([]model.Transaction, 0, len(snapshot)+1)
	txs = append(txs, reward)
	txs = append(txs, snapshot...)

	block := model.Block{
		Index:        tail.Index + 1,
		Transactions: txs,
		Timestamp:    model.Now(),
		PreviousHash: tail.Hash,
	}

	interrupt, elapsed, err := utils.Mine(&block, difficulty, ctl)
	if err != nil {
		return nil, elapsed, none, err
	}
	if !interrupt.IsDefault() {
		return nil, elapsed, interrupt, nil
	}

	l.m.Lock()
	defer l.m.Unlock()
	if l.chain[len(l.chain)-1].Hash != tail.Hash {
		return nil, elapsed, none, errors.New("chain advanced during the search, block discarded")
	}
	l.chain = append(l.chain, block)
	// Only the snapshotted prefix leaves the pool. Transactions that
	// arrived during the search stay pending for the next block.
	l.pending = l.pending[len(snapshot):]
	log.Printf("ledger %s: block #%d mined in %s, nonce %d, hash %s", l.uuid, block.Index, elapsed, block.Nonce, block.Hash)
	return &block, elapsed, interrupt, nil
}

// Blocks returns a deep copy of the committed chain in order.
func (l *Ledger) Blocks() []model.Block {
	l.m.RLock()
	defer l.m.RUnlock()
	chain := []model.Block{}
	copier.CopyWithOption(&chain, &l.chain, copier.Option{DeepCopy: true})
	return chain
}

// Pending returns a deep copy of the pool in insertion order.
func (l *Ledger) Pending() []model.Transaction {
	l.m.RLock()
	defer l.m.RUnlock()
	pending := []model.Transaction{}
	copier.CopyWithOption(&pending, &l.pending, copier.Option{DeepCopy: true})
	return pending
}

// Height returns the number of committed blocks.
func (l *Ledger) Height() int {
	l.m.RLock()
	defer l.m.RUnlock()
	return len(l.chain)
}

func (l *Ledger) Difficulty() int {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.difficulty
}

func (l *Ledger) MiningReward() float64 {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.miningReward
}

// UUID returns the session identifier of this ledger instance.
func (l *Ledger) UUID() string {
	return l.uuid
}
