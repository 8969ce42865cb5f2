package utils

import (
	"errors"
	"math"
	"time"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/commands"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/model"
)

// HasLeadingZeros reports whether a hex digest starts with the required
// number of '0' characters. Difficulty zero accepts everything.
func HasLeadingZeros(digest string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > len(digest) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}

// MatchDifficulty recomputes the block's digest and reports whether it
// satisfies the difficulty target, returning the digest either way.
func MatchDifficulty(block *model.Block, difficulty int) (bool, string) {
	digest, err := CalculateBlockHash(block)
	if err != nil {
		return false, ""
	}
	return HasLeadingZeros(digest, difficulty), digest
}

// Mine runs the brute-force nonce search against the difficulty target.
// The nonce starts at 0 and is incremented until the digest carries the
// required leading zeros; the winning nonce and hash are written back into
// the block. The cost of the search is the proof, there is no shortcut, so
// a large difficulty can block for a very long time.
//
// Every iteration polls ctl, and the command that interrupts the search is
// returned with the block left unsolved; a nil ctl mines to completion.
// The second return value is the wall-clock duration of the search.
func Mine(block *model.Block, difficulty int, ctl chan commands.Command) (commands.Command, time.Duration, error) {
	start := time.Now()
	for nonce := uint64(0); nonce < math.MaxUint64; nonce++ {
		select {
		case c := <-ctl:
			return c, time.Since(start), nil
		default:
		}
		block.Nonce = nonce
		matched, digest := MatchDifficulty(block, difficulty)
		if matched {
			block.Hash = digest
			return commands.NewDefaultCommand(), time.Since(start), nil
		}
	}
	return commands.NewDefaultCommand(), time.Since(start), errors.New("exhausted the nonce space without matching difficulty")
}
