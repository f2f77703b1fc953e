package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkAndCheckHash plays every legal move at each ply up to maxPly, asserting
// at every node that the position's incrementally maintained Hash matches a
// from-scratch ComputeHash. It recurses depth-first so promotions and en
// passant captures reachable from pos are exercised.
func walkAndCheckHash(t *testing.T, pos *Position, depth, maxPly int) {
	t.Helper()
	require.Equalf(t, pos.ComputeHash(), pos.Hash, "hash mismatch at depth %d", depth)

	if depth >= maxPly {
		return
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		if !undo.Valid {
			continue
		}
		walkAndCheckHash(t, pos, depth+1, maxPly)
		pos.UnmakeMove(move, undo)
		assert.Equalf(t, pos.ComputeHash(), pos.Hash, "hash mismatch after unmake of %v at depth %d", move, depth)
	}
}

func TestZobristIncrementalMatchesFromScratch(t *testing.T) {
	positions := []string{
		StartFEN,
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq -",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, fen := range positions {
		pos, err := ParseFEN(fen)
		require.NoError(t, err)
		walkAndCheckHash(t, pos, 0, 3)
	}
}
