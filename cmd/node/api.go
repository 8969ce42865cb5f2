package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/config"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/ledger"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/storage"
)

// Node wires the HTTP front end to one ledger instance. The create
// endpoint swaps the instance wholesale, so access to the pointer goes
// through its own lock; everything else is the ledger's own business.
type Node struct {
	mu    sync.RWMutex
	l     *ledger.Ledger
	cfg   config.AppConfig
	miner string
}

func NewNode(l *ledger.Ledger, cfg config.AppConfig, miner string) *Node {
	return &Node{l: l, cfg: cfg, miner: miner}
}

func (n *Node) Ledger() *ledger.Ledger {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.l
}

func (n *Node) Miner() string {
	return n.miner
}

func (n *Node) DataPath() string {
	return n.cfg.DATA_PATH
}

// Persist writes the current ledger to the configured document path.
func (n *Node) Persist() error {
	return storage.Save(n.Ledger(), n.cfg.DATA_PATH)
}

func (n *Node) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/blockchain/create", n.handleCreate)
	mux.HandleFunc("/api/blockchain/status", n.handleStatus)
	mux.HandleFunc("/api/blockchain/chain", n.handleChain)
	mux.HandleFunc("/api/blockchain/validate", n.handleValidate)
	mux.HandleFunc("/api/blockchain/save", n.handleSave)
	mux.HandleFunc("/api/transactions/new", n.handleNewTransaction)
	mux.HandleFunc("/api/transactions/pending", n.handlePending)
	mux.HandleFunc("/api/mine", n.handleMine)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": err.Error()})
}

// POST {difficulty, mining_reward}: discard the current ledger and start a
// fresh one with the given settings.
func (n *Node) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Difficulty   int     `json:"difficulty"`
		MiningReward float64 `json:"mining_reward"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if req.Difficulty < 0 || req.MiningReward <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "difficulty must be non-negative and mining reward positive",
		})
		return
	}

	l := ledger.New(req.Difficulty, req.MiningReward)
	if _, err := l.CreateGenesis(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	n.mu.Lock()
	n.l = l
	n.mu.Unlock()
	if err := n.Persist(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (n *Node) handleStatus(w http.ResponseWriter, r *http.Request) {
	l := n.Ledger()
	report, valid := l.CheckIntegrity()
	status := map[string]interface{}{
		"success":       true,
		"height":        l.Height(),
		"pending":       len(l.Pending()),
		"difficulty":    l.Difficulty(),
		"mining_reward": l.MiningReward(),
		"valid":         valid,
	}
	if !valid {
		status["invalid_block"] = report.BlockIndex
		status["invalid_reason"] = report.Reason
	}
	writeJSON(w, http.StatusOK, status)
}

func (n *Node) handleChain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"chain":   n.Ledger().Blocks(),
	})
}

func (n *Node) handleValidate(w http.ResponseWriter, r *http.Request) {
	report, valid := n.Ledger().CheckIntegrity()
	body := map[string]interface{}{"success": true, "valid": valid}
	if !valid {
		body["invalid_block"] = report.BlockIndex
		body["invalid_reason"] = report.Reason
	}
	writeJSON(w, http.StatusOK, body)
}

func (n *Node) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := n.Persist(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "path": n.cfg.DATA_PATH})
}

// POST {sender, recipient, amount}: append to the pending pool.
func (n *Node) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Sender    string  `json:"sender"`
		Recipient string  `json:"recipient"`
		Amount    float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	index, err := n.Ledger().AddTransaction(req.Sender, req.Recipient, req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "block_index": index})
}

func (n *Node) handlePending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"pending_transactions": n.Ledger().Pending(),
	})
}

// POST {miner_address}: mine one block synchronously and persist. The
// console mining loop is the non-blocking alternative.
func (n *Node) handleMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		MinerAddress string `json:"miner_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if req.MinerAddress == "" {
		req.MinerAddress = n.miner
	}
	block, elapsed, _, err := n.Ledger().MinePending(req.MinerAddress, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := n.Persist(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"block":          block,
		"mining_seconds": elapsed.Seconds(),
	})
}
