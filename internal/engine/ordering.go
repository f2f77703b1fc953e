package engine

import (
	"github.com/hugobogaart/schaakmachine/internal/board"
)

// TTMoveScore is the ordering score given to every move other than the one
// the transposition table remembers as best for this position; the TT move
// scores 0, lower than this, and PickMove takes the lowest score first, so
// the TT move is always tried first.
const TTMoveScore = 1

// MoveOrderer reorders a move list generated by movegen.go so that the
// transposition table's remembered best move, if present, is searched
// first. movegen.go already partitions moves into captures, check blocks,
// and quiets; MoveOrderer adds nothing beyond the single TT-move promotion
// on top of that partition.
type MoveOrderer struct{}

// NewMoveOrderer creates a move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear exists so callers can reset a MoveOrderer between searches; this
// orderer keeps no search-lifetime state, so it is a no-op.
func (mo *MoveOrderer) Clear() {}

// ScoreMoves returns one score per move: 0 for the TT move (tried first via
// PickMove), 1 for everything else, preserving movegen's own partition
// order among non-TT moves.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i) == ttMove && ttMove != board.NoMove {
			scores[i] = 0
		} else {
			scores[i] = TTMoveScore
		}
	}
	return scores
}

// UpdateKillers is kept as a no-op hook: this engine does not maintain a
// killer-move table.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {}

// UpdateHistory is kept as a no-op hook: this engine does not maintain a
// history heuristic table.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int, isGood bool) {}

// PickMove selects the move at index with the lowest score among
// moves[index:] (ties broken by original order) and swaps it into index.
// With ScoreMoves above, this surfaces the TT move first and otherwise
// leaves movegen's capture/block/quiet partition intact.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] < scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
