package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/commands"
)

func TestHasLeadingZeros(t *testing.T) {
	assert.True(t, HasLeadingZeros("00ab", 0))
	assert.True(t, HasLeadingZeros("00ab", 2))
	assert.False(t, HasLeadingZeros("00ab", 3))
	assert.False(t, HasLeadingZeros("00", 3))
}

func TestMine(t *testing.T) {
	testDifficulty := 1
	testBlock := createTestBlock()

	interrupt, elapsed, err := Mine(&testBlock, testDifficulty, nil)
	assert.Nil(t, err)
	assert.True(t, interrupt.IsDefault())
	assert.True(t, elapsed >= 0)

	matched, digest := MatchDifficulty(&testBlock, testDifficulty)
	assert.True(t, matched)
	assert.Equal(t, digest, testBlock.Hash)
	assert.True(t, strings.HasPrefix(testBlock.Hash, "0"))
}

func TestMineWritesBackNonceAndHash(t *testing.T) {
	testBlock := createTestBlock()
	_, _, err := Mine(&testBlock, 1, nil)
	assert.Nil(t, err)

	recomputed, err := CalculateBlockHash(&testBlock)
	assert.Nil(t, err)
	assert.Equal(t, testBlock.Hash, recomputed)
}

func TestMineZeroDifficultyAcceptsFirstNonce(t *testing.T) {
	testBlock := createTestBlock()
	_, _, err := Mine(&testBlock, 0, nil)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), testBlock.Nonce)
}

func TestMineInterruption(t *testing.T) {
	// Make a really difficult target that's impossible to solve.
	testDifficulty := 64
	testBlock := createTestBlock()
	testChan := make(chan commands.Command)

	go func() {
		testChan <- commands.Command{Op: commands.STOP}
	}()

	interrupt, _, err := Mine(&testBlock, testDifficulty, testChan)
	assert.Nil(t, err)
	assert.Equal(t, commands.Command{Op: commands.STOP}, interrupt)
	// An interrupted search never writes a hash back.
	assert.Equal(t, "", testBlock.Hash)
}
