package ledger

import (
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/model"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/utils"
)

// Conditions surfaced by CheckIntegrity.
const (
	ReasonMalformedGenesis = "genesis block malformed"
	ReasonHashMismatch     = "stored hash does not match recomputed hash"
	ReasonBrokenLink       = "previous_hash does not match the previous block"
	ReasonWeakProof        = "hash does not satisfy the current difficulty"
)

// IntegrityReport points to the first failed check of a chain walk.
// Tampering is a first-class query result here, never an error value.
type IntegrityReport struct {
	// Index of the offending block, -1 when the chain is intact.
	BlockIndex int
	// Which check failed, empty when the chain is intact.
	Reason string
}

// IsValid walks the whole chain and reports whether it is intact. An empty
// chain is valid.
func (l *Ledger) IsValid() bool {
	_, ok := l.CheckIntegrity()
	return ok
}

// CheckIntegrity walks the whole chain and reports the first violation it
// finds. For every block the stored hash is recomputed from the stored
// fields (content tampering), the linkage to the predecessor is checked
// (re-linking and reordering), and non-genesis hashes must satisfy the
// ledger's current difficulty, not the difficulty in force when the block
// was mined. Raising the difficulty therefore invalidates older history;
// that trade-off is inherited from the wire format, which has no per-block
// difficulty slot.
func (l *Ledger) CheckIntegrity() (IntegrityReport, bool) {
	l.m.RLock()
	defer l.m.RUnlock()
	return checkChain(l.chain, l.difficulty)
}

func checkChain(chain []model.Block, difficulty int) (IntegrityReport, bool) {
	if len(chain) == 0 {
		return IntegrityReport{BlockIndex: -1}, true
	}

	genesis := &chain[0]
	if genesis.Index != 0 || genesis.PreviousHash != model.GenesisPreviousHash {
		return IntegrityReport{BlockIndex: 0, Reason: ReasonMalformedGenesis}, false
	}
	digest, err := utils.CalculateBlockHash(genesis)
	if err != nil || digest != genesis.Hash {
		return IntegrityReport{BlockIndex: 0, Reason: ReasonHashMismatch}, false
	}
	// Genesis is permanently exempt from the difficulty target.

	for i := 1; i < len(chain); i++ {
		current := &chain[i]
		previous := &chain[i-1]

		digest, err := utils.CalculateBlockHash(current)
		if err != nil || digest != current.Hash {
			return IntegrityReport{BlockIndex: current.Index, Reason: ReasonHashMismatch}, false
		}
		if current.PreviousHash != previous.Hash {
			return IntegrityReport{BlockIndex: current.Index, Reason: ReasonBrokenLink}, false
		}
		if difficulty > 0 && !utils.HasLeadingZeros(current.Hash, difficulty) {
			return IntegrityReport{BlockIndex: current.Index, Reason: ReasonWeakProof}, false
		}
	}
	return IntegrityReport{BlockIndex: -1}, true
}
