// Package storage persists a ledger as one self-describing JSON document
// and rebuilds it again. Loading trusts the persisted block hashes instead
// of recomputing them, so history mined under an older codec revision
// stays accepted; in exchange a load is not an integrity check, and
// callers run CheckIntegrity themselves when that matters.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/ledger"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/model"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/utils"
)

// ErrNoState reports that no document exists at the given path. Expected
// on first run: the caller initializes a fresh ledger instead.
var ErrNoState = errors.New("no saved ledger state")

// A CorruptError reports a document that exists but cannot be turned into
// a ledger. Kept distinct from ErrNoState so callers can fail loudly
// instead of silently reinitializing.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("ledger state at %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Settings applied when a document omits them.
const (
	DefaultDifficulty   = 2
	DefaultMiningReward = 100.0
)

type transactionRecord struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
}

type blockRecord struct {
	Index        int                 `json:"index"`
	Transactions []transactionRecord `json:"transactions"`
	Timestamp    float64             `json:"timestamp"`
	PreviousHash string              `json:"previous_hash"`
	Nonce        uint64              `json:"nonce"`
	Hash         string              `json:"hash"`
}

// Document is the persisted ledger shape. Field names and nesting are the
// wire format; changing them orphans every existing save file. Settings
// are pointers so an absent key can be told apart from a zero.
type Document struct {
	Chain               []blockRecord       `json:"chain"`
	PendingTransactions []transactionRecord `json:"pending_transactions"`
	Difficulty          *int                `json:"difficulty"`
	MiningReward        *float64            `json:"mining_reward"`
}

// ToDocument projects the ledger into its persisted shape.
func ToDocument(l *ledger.Ledger) Document {
	chain := l.Blocks()
	pending := l.Pending()

	blockRecords := make([]blockRecord, 0, len(chain))
	for _, b := range chain {
		blockRecords = append(blockRecords, blockRecord{
			Index:        b.Index,
			Transactions: toTransactionRecords(b.Transactions),
			Timestamp:    b.Timestamp,
			PreviousHash: b.PreviousHash,
			Nonce:        b.Nonce,
			Hash:         b.Hash,
		})
	}

	difficulty := l.Difficulty()
	miningReward := l.MiningReward()
	return Document{
		Chain:               blockRecords,
		PendingTransactions: toTransactionRecords(pending),
		Difficulty:          &difficulty,
		MiningReward:        &miningReward,
	}
}

func toTransactionRecords(txs []model.Transaction) []transactionRecord {
	records := make([]transactionRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, transactionRecord{
			Sender:    tx.Sender,
			Recipient: tx.Recipient,
			Amount:    tx.Amount,
		})
	}
	return records
}

// FromDocument rebuilds a ledger from its persisted shape. Missing
// settings fall back to the defaults. Pending entries go back through the
// transaction constructor, so one malformed record fails the whole load.
// Chain blocks keep their persisted hash over a recomputation; a record
// saved without one gets the recomputed digest instead. A document with an
// empty or missing chain yields a ledger with a freshly synthesized
// genesis block, never a chain-less one.
func FromDocument(doc Document) (*ledger.Ledger, error) {
	difficulty := DefaultDifficulty
	if doc.Difficulty != nil {
		difficulty = *doc.Difficulty
	}
	miningReward := DefaultMiningReward
	if doc.MiningReward != nil {
		miningReward = *doc.MiningReward
	}

	pending := make([]model.Transaction, 0, len(doc.PendingTransactions))
	for _, rec := range doc.PendingTransactions {
		tx, err := model.NewTransaction(rec.Sender, rec.Recipient, rec.Amount)
		if err != nil {
			return nil, fmt.Errorf("pending transaction rejected: %w", err)
		}
		pending = append(pending, tx)
	}

	chain := make([]model.Block, 0, len(doc.Chain))
	for _, rec := range doc.Chain {
		txs := make([]model.Transaction, 0, len(rec.Transactions))
		for _, t := range rec.Transactions {
			txs = append(txs, model.Transaction{
				Sender:    t.Sender,
				Recipient: t.Recipient,
				Amount:    t.Amount,
			})
		}
		block := model.Block{
			Index:        rec.Index,
			Transactions: txs,
			Timestamp:    rec.Timestamp,
			PreviousHash: rec.PreviousHash,
			Nonce:        rec.Nonce,
			Hash:         rec.Hash,
		}
		if block.Hash == "" {
			digest, err := utils.CalculateBlockHash(&block)
			if err != nil {
				return nil, err
			}
			block.Hash = digest
		}
		chain = append(chain, block)
	}

	l := ledger.Restore(chain, pending, difficulty, miningReward)
	if len(chain) == 0 {
		if _, err := l.CreateGenesis(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Save writes the whole document to path, overwriting any previous file.
// The write is a plain whole-file overwrite with no partial-write
// atomicity guarantee.
func Save(l *ledger.Ledger, path string) error {
	data, err := json.MarshalIndent(ToDocument(l), "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads the document at path. Three outcomes: ErrNoState when the
// file is absent, a *CorruptError when it exists but will not decode into
// a ledger, or the rebuilt ledger.
func Load(path string) (*ledger.Ledger, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	l, err := FromDocument(doc)
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return l, nil
}
