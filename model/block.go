package model

import "time"

// GenesisPreviousHash is the sentinel linkage of the first block in a
// chain. No other block may carry it.
const GenesisPreviousHash = "0"

// Block is an indexed batch of transaction snapshots bound to its
// predecessor by hash. The nonce and hash only move during the
// proof-of-work search; once a block is appended to the chain every field
// is frozen.
type Block struct {
	// Position in the chain, 0 for genesis.
	Index int `json:"index"`
	// Value snapshots of the transactions committed by this block. The
	// first one is the miner's reward.
	Transactions []Transaction `json:"transactions"`
	// Creation time in seconds since epoch.
	Timestamp float64 `json:"timestamp"`
	// Hex hash of the previous block, "0" only for genesis.
	PreviousHash string `json:"previous_hash"`
	// The miner's answer to the difficulty challenge.
	Nonce uint64 `json:"nonce"`
	// Hex hash of this block's content, derived from the other fields.
	Hash string `json:"hash"`
}

// Now returns the current wall clock as the fractional epoch seconds
// stored in block timestamps.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
