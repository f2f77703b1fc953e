package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugobogaart/schaakmachine/internal/board"
)

// syncSearch runs a blocking search through the async Go/OnBestMove API and
// returns the move it settles on.
func syncSearch(t *testing.T, eng *Engine, opts GoOptions) board.Move {
	t.Helper()

	done := make(chan board.Move, 1)
	eng.OnBestMove = func(m board.Move, _ board.Color) {
		done <- m
	}

	eng.Go(opts)

	select {
	case move := <-done:
		return move
	case <-time.After(5 * time.Second):
		t.Fatal("search did not report a best move in time")
		return board.NoMove
	}
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 16, nil, nil)

	move := syncSearch(t, eng, GoOptions{Depth: 4})
	assert.NotEqual(t, board.NoMove, move, "search should find a move from the starting position")
}

func TestSearchReportsInfo(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 16, nil, nil)

	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
	}

	syncSearch(t, eng, GoOptions{Depth: 3})

	require.NotEmpty(t, depths, "OnInfo should fire at least once")
	for i, d := range depths {
		assert.Equal(t, i+1, d, "depths should be reported in increasing order starting at 1")
	}
}

func TestSearchRestrictedMoves(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 16, nil, nil)

	restricted := []board.Move{board.NewMove(board.E2, board.E4)}

	move := syncSearch(t, eng, GoOptions{Depth: 3, RestrictedMoves: restricted})
	assert.Equal(t, restricted[0], move, "search should be confined to the restricted root move")
}

func TestSetPositionReplaysMoves(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 16, nil, nil)

	moves := []board.Move{
		board.NewMove(board.E2, board.E4),
		board.NewMove(board.E7, board.E5),
	}
	err := eng.SetPosition(*pos, moves)
	require.NoError(t, err)

	move := syncSearch(t, eng, GoOptions{Depth: 3})
	assert.NotEqual(t, board.NoMove, move)
}

func TestSetPositionRejectsIllegalMove(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 16, nil, nil)

	illegal := board.NewMove(board.E2, board.E5)
	err := eng.SetPosition(*pos, []board.Move{illegal})
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestStopHaltsSearch(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 16, nil, nil)

	done := make(chan board.Move, 1)
	eng.OnBestMove = func(m board.Move, _ board.Color) {
		done <- m
	}

	eng.Go(GoOptions{Infinite: true})
	time.Sleep(20 * time.Millisecond)
	eng.Stop()

	select {
	case move := <-done:
		assert.NotEqual(t, board.NoMove, move)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cause the search to report a best move")
	}
	assert.False(t, eng.Running())
}

func TestResizePreservesFilledNodes(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 1, nil, nil)

	syncSearch(t, eng, GoOptions{Depth: 4})
	before := eng.tt.CountFull()
	assert.Greater(t, before, 0)

	eng.Resize(20)
	assert.Equal(t, before, eng.tt.CountFull(), "growing the table must rehash every filled node rather than discard it")
}

func TestPerftStartPosition(t *testing.T) {
	pos := board.NewPosition()
	eng := New(*pos, 1, nil, nil)

	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, c := range cases {
		got := eng.Perft(pos.Copy(), c.depth)
		assert.Equalf(t, c.nodes, got, "perft(%d)", c.depth)
	}
}

func TestScoreToString(t *testing.T) {
	assert.Equal(t, "1.50", ScoreToString(150))
	assert.Equal(t, "-1.50", ScoreToString(-150))
	assert.Contains(t, ScoreToString(MateScore-5), "Mate in")
	assert.Contains(t, ScoreToString(-MateScore+5), "Mated in")
}
