package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugobogaart/schaakmachine/internal/board"
)

func TestWriterAbortOrDropLeavesTableUnchanged(t *testing.T) {
	tt := NewTransTable(1)
	hash := uint64(12345)

	w := tt.Reserve(hash)
	w.WriteEval(42, board.NewMove(board.E2, board.E4), 5, BoundExact)
	w.Abort()

	_, ok := tt.Lookup(hash)
	assert.False(t, ok, "an aborted writer must not publish to the table")

	dropped := tt.Reserve(hash + 1)
	dropped.WriteEval(42, board.NewMove(board.E2, board.E4), 5, BoundExact)

	_, ok = tt.Lookup(hash + 1)
	assert.False(t, ok, "a writer dropped without Flush must not publish to the table")
}

func TestWriterFlushPublishes(t *testing.T) {
	tt := NewTransTable(1)
	hash := uint64(12345)

	w := tt.Reserve(hash)
	move := board.NewMove(board.E2, board.E4)
	w.WriteStaticEval(10)
	w.WriteEval(42, move, 5, BoundExact)
	w.Flush()

	n, ok := tt.Lookup(hash)
	require.True(t, ok)
	assert.Equal(t, int32(42), n.eval)
	assert.Equal(t, move, n.move)
	assert.Equal(t, int8(5), n.depth)
	assert.Equal(t, BoundExact, n.bound)
}

func TestReserveHitReturnsOriginalValues(t *testing.T) {
	tt := NewTransTable(1)
	hash := uint64(99)
	move := board.NewMove(board.D2, board.D4)

	w := tt.Reserve(hash)
	w.WriteEval(7, move, 3, BoundLower)
	w.Flush()

	w2 := tt.Reserve(hash)
	assert.True(t, w2.IsHit())
	assert.Equal(t, int32(7), w2.OriginalEval())
	assert.Equal(t, move, w2.OriginalMove())
	assert.Equal(t, 3, w2.OriginalDepth())
	assert.Equal(t, BoundLower, w2.OriginalBound())
	w2.Abort()
}

func TestResizePreservesCountFullInvariant(t *testing.T) {
	tt := NewTransTable(1)
	for i := uint64(0); i < 8; i++ {
		w := tt.Reserve(i * 97)
		w.WriteEval(0, board.NoMove, 1, BoundExact)
		w.Flush()
	}
	before := tt.CountFull()
	require.Greater(t, before, 0)

	tt.Resize(20)
	assert.Equal(t, before, tt.CountFull(), "growing the table must rehash every stored node, not discard it")

	for i := uint64(0); i < 8; i++ {
		n, ok := tt.Lookup(i * 97)
		require.Truef(t, ok, "node %d should survive the resize", i)
		assert.Equal(t, int8(1), n.depth)
	}
}

func TestReplacementPrefersOlderGenerationOverDeeperEntry(t *testing.T) {
	tt := NewTransTable(1)

	// Fill one bucket to capacity: one deep entry from the previous
	// generation, the rest shallow entries from the current one.
	var hashes [bucketSize]uint64
	for i := range hashes {
		hashes[i] = uint64(i) * uint64(len(tt.buckets))
	}

	w := tt.Reserve(hashes[0])
	w.WriteEval(0, board.NoMove, 20, BoundExact)
	w.Flush()

	tt.NewSearch()

	for i := 1; i < bucketSize; i++ {
		w := tt.Reserve(hashes[i])
		w.WriteEval(0, board.NoMove, 1, BoundExact)
		w.Flush()
	}

	// The bucket is now full; reserving one more hash must evict the
	// previous-generation entry even though it searched deeper.
	w = tt.Reserve(hashes[0] + uint64(len(tt.buckets))*1000)
	w.WriteEval(0, board.NoMove, 1, BoundExact)
	w.Flush()

	_, stillThere := tt.Lookup(hashes[0])
	assert.False(t, stillThere, "a stale entry from an earlier generation must be the replacement candidate regardless of its depth")
}
