package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate: White Ka1, Ra8; Black Kh8 boxed in by its own pawns.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)

	assert.True(t, pos.InCheck())
	assert.Equal(t, 0, pos.GenerateLegalMoves().Len())
	assert.True(t, pos.IsCheckmate())
	assert.False(t, pos.IsStalemate())
}

func TestNotCheckmate(t *testing.T) {
	// King can simply capture the checking rook.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)

	assert.True(t, pos.InCheck())
	assert.False(t, pos.IsCheckmate())
	assert.Greater(t, pos.GenerateLegalMoves().Len(), 0)
}

func TestStalemate(t *testing.T) {
	// Classic stalemate: Black king on a8 has no legal move (a7/b7/b8 are
	// all covered by the white king and queen) and is not itself in check.
	pos, err := ParseFEN("k7/2K5/1Q6/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)

	assert.False(t, pos.InCheck())
	assert.Equal(t, 0, pos.GenerateLegalMoves().Len())
	assert.True(t, pos.IsStalemate())
	assert.False(t, pos.IsCheckmate())
}
