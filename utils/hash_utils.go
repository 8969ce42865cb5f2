package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/model"
)

// blockContent is the hashed projection of a block: the five content
// fields and nothing else. Fields are declared in sorted key order so two
// logically identical blocks always serialize to identical bytes, no
// matter how they were constructed.
type blockContent struct {
	Index        int                  `json:"index"`
	Nonce        uint64               `json:"nonce"`
	PreviousHash string               `json:"previous_hash"`
	Timestamp    float64              `json:"timestamp"`
	Transactions []transactionContent `json:"transactions"`
}

type transactionContent struct {
	Amount    float64 `json:"amount"`
	Recipient string  `json:"recipient"`
	Sender    string  `json:"sender"`
}

// GetBlockContentBytes serializes a block's content fields into their
// canonical byte form. The stored hash is never part of the digest input.
func GetBlockContentBytes(block *model.Block) ([]byte, error) {
	txs := make([]transactionContent, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		txs = append(txs, transactionContent{
			Amount:    tx.Amount,
			Recipient: tx.Recipient,
			Sender:    tx.Sender,
		})
	}
	content := blockContent{
		Index:        block.Index,
		Nonce:        block.Nonce,
		PreviousHash: block.PreviousHash,
		Timestamp:    block.Timestamp,
		Transactions: txs,
	}
	return json.Marshal(content)
}

// SHA256 digests raw bytes.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// BytesToHex converts raw bytes to a lowercase hex string.
func BytesToHex(data []byte) string {
	return hex.EncodeToString(data)
}

// CalculateBlockHash computes the lowercase hex SHA-256 digest of the
// block's canonical content. Pure: identical fields yield an identical
// digest on every call, and both the mining search and validation rely on
// that.
func CalculateBlockHash(block *model.Block) (string, error) {
	raw, err := GetBlockContentBytes(block)
	if err != nil {
		return "", err
	}
	return BytesToHex(SHA256(raw)), nil
}
