package engine

import (
	"sync/atomic"

	"github.com/hugobogaart/schaakmachine/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation produced by the last completed
// iteration of iterative deepening.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Worker owns one search: a position, a transposition table reference, move
// ordering state, and the undo/repetition bookkeeping a single goroutine
// needs to walk the tree. There is exactly one Worker per running search in
// this engine; it is not shared across goroutines.
type Worker struct {
	pos     *board.Position
	tt      *TransTable
	orderer *MoveOrderer

	nodes    uint64
	stopFlag *atomic.Bool

	pv PVTable

	undoStack [MaxPly]board.UndoInfo

	// played holds the Zobrist hashes of every position reached earlier in
	// the game (set by the caller before a search starts); a hash appearing
	// here twice already makes a third repetition a claimable draw, so a
	// single further repetition inside the search tree is a forced draw.
	played []uint64

	// line holds the Zobrist hash reached after each ply searched so far in
	// the current search tree. A hash recurring in line represents a draw
	// reachable through play but not yet forced, so it scores as a draw
	// without the permanent (depth-127, unconditionally exact) marking that
	// a played repetition gets in the transposition table.
	line [MaxPly]uint64

	// restrictedMoves, when non-empty, limits the root move list to this
	// set (the GoOptions "searchmoves" restriction). Ignored below the
	// root.
	restrictedMoves []board.Move
}

// SetRestrictedMoves limits the next Search call's root move list to moves.
// An empty slice clears the restriction.
func (w *Worker) SetRestrictedMoves(moves []board.Move) {
	w.restrictedMoves = moves
}

func (w *Worker) rootAllowed(m board.Move) bool {
	if len(w.restrictedMoves) == 0 {
		return true
	}
	for _, rm := range w.restrictedMoves {
		if rm == m {
			return true
		}
	}
	return false
}

// NewWorker creates a search worker bound to tt. stopFlag is shared with the
// engine facade so Stop can be observed without locking.
func NewWorker(tt *TransTable, stopFlag *atomic.Bool) *Worker {
	return &Worker{
		tt:       tt,
		orderer:  NewMoveOrderer(),
		stopFlag: stopFlag,
	}
}

// Reset clears per-search state, ready for a new root position.
func (w *Worker) Reset(pos *board.Position, played []uint64) {
	w.pos = pos.Copy()
	w.nodes = 0
	w.orderer.Clear()
	w.played = played
}

// Nodes returns the number of nodes visited since the last Reset.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// Search runs alpha-beta to depth from the current root and returns the best
// move found along with its score. Depth 0 simply returns the static
// evaluation with no move.
func (w *Worker) Search(depth int) (board.Move, int) {
	w.pv = PVTable{}
	score := w.alphabeta(depth, 0, -Infinity, Infinity)

	var best board.Move
	if w.pv.length[0] > 0 {
		best = w.pv.moves[0][0]
	}
	return best, score
}

// repetitionScore reports whether the position at ply (whose hash is
// w.line[ply]) is a draw by repetition, and whether that draw is permanent
// (seen twice already in game history) or provisional (seen once so far in
// this search tree only).
func (w *Worker) repetitionScore(ply int) (score int, permanent bool, isDraw bool) {
	hash := w.line[ply]

	count := 0
	for _, h := range w.played {
		if h == hash {
			count++
		}
	}
	if count >= 2 {
		return 0, true, true
	}

	for p := 0; p < ply; p++ {
		if w.line[p] == hash {
			return 0, false, true
		}
	}

	return 0, false, false
}

// alphabeta implements negamax alpha-beta search with transposition-table
// assisted cutoffs. It does not implement quiescence search, null-move
// pruning, or any selectivity extension: every node is searched to the
// requested depth and leaves are scored by the static evaluator alone.
func (w *Worker) alphabeta(depth, ply, alpha, beta int) int {
	if w.nodes&4095 == 0 && w.stopFlag.Load() {
		return 0
	}
	w.nodes++
	w.pv.length[ply] = ply
	w.line[ply] = w.pos.Hash

	writer := w.tt.Reserve(w.pos.Hash)
	defer writer.Abort()

	if ply > 0 {
		if score, permanent, draw := w.repetitionScore(ply); draw {
			if permanent {
				writer.WriteEval(int32(score), board.NoMove, 127, BoundExact)
				writer.Flush()
			}
			return score
		}
		if w.pos.HalfMoveClock >= 100 || w.pos.IsInsufficientMaterial() {
			return 0
		}
	}

	var ttMove board.Move
	if writer.IsHit() {
		ttMove = writer.OriginalMove()
		if writer.OriginalDepth() >= depth {
			score := AdjustScoreFromTT(int(writer.OriginalEval()), ply)
			switch writer.OriginalBound() {
			case BoundExact:
				return score
			case BoundLower:
				if score > alpha {
					alpha = score
				}
			case BoundUpper:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		eval := Evaluate(w.pos)
		writer.WriteStaticEval(int32(eval))
		writer.WriteEval(int32(eval), board.NoMove, 0, BoundExact)
		writer.Flush()
		return eval
	}

	inCheck := w.pos.InCheck()
	moves := w.pos.GenerateLegalMoves()

	if moves.Len() == 0 {
		var score int
		if inCheck {
			score = -MateScore + ply
		} else {
			score = 0
		}
		writer.WriteEval(int32(AdjustScoreToTT(score, ply)), board.NoMove, depth, BoundExact)
		writer.Flush()
		return score
	}

	scores := w.orderer.ScoreMoves(w.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	bound := BoundUpper

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if ply == 0 && !w.rootAllowed(move) {
			continue
		}

		w.undoStack[ply] = w.pos.MakeMove(move)
		if !w.undoStack[ply].Valid {
			continue
		}

		score := -w.alphabeta(depth-1, ply+1, -beta, -alpha)

		w.pos.UnmakeMove(move, w.undoStack[ply])

		if w.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				bound = BoundExact

				w.pv.moves[ply][ply] = move
				for j := ply + 1; j < w.pv.length[ply+1]; j++ {
					w.pv.moves[ply][j] = w.pv.moves[ply+1][j]
				}
				w.pv.length[ply] = w.pv.length[ply+1]
			}
		}

		if score >= beta {
			writer.WriteEval(int32(AdjustScoreToTT(score, ply)), bestMove, depth, BoundLower)
			writer.Flush()

			if !move.IsCapture(w.pos) {
				w.orderer.UpdateKillers(move, ply)
				w.orderer.UpdateHistory(move, depth, true)
			}
			return score
		}
	}

	writer.WriteEval(int32(AdjustScoreToTT(bestScore, ply)), bestMove, depth, bound)
	writer.Flush()

	return bestScore
}

// GetPV returns the principal variation from the most recent Search call.
func (w *Worker) GetPV() []board.Move {
	pv := make([]board.Move, w.pv.length[0])
	for i := 0; i < w.pv.length[0]; i++ {
		pv[i] = w.pv.moves[0][i]
	}
	return pv
}
