// Package engine implements the chess search engine.
package engine

import "github.com/hugobogaart/schaakmachine/internal/board"

// Material values in centipawns.
const (
	pawnValue   = 100
	knightValue = 300
	bishopValue = 350
	rookValue   = 500
	queenValue  = 900
)

// Mobility: bonus per square a side's pieces attack.
const squareAttackBonus = 4

// Bonus per enemy piece type a side's attack map touches.
const (
	pawnAttackBonus   = 5
	knightAttackBonus = 25
	bishopAttackBonus = 20
	rookAttackBonus   = 30
	queenAttackBonus  = 40
)

// Pawns attacking a heavier piece are worth more the heavier the target.
const pawnDeltaAttackBonus = 10

const (
	bishopPairBonus      = 40
	unblockedRookBonus   = 10
	doubledPawnPenalty   = 20
	pawnChainBonus       = 10
	centralPawnBonus     = 15
	edgeFilePawnPenalty  = 10
	sixthRankPawnBonus   = 100
	seventhRankPawnBonus = 150
	attackOtherKingBonus = 40
)

// Knight placement relative to the center: the outer ring is weak, the
// second ring is mildly weak, the innermost four squares are strong.
const (
	knightOuterRingPenalty  = 40
	knightMiddleRingPenalty = 20
	knightCenterBonus       = 20
)

// Knights gain value and bishops lose value as pawns pile up on the board.
const (
	knightPawnScaling = 6
	bishopPawnScaling = 3
)

const (
	kingBackRankBonus   = 40
	kingSecondRankBonus = 15
	kingAreaPenalty     = 15
)

// truncated clamps a raw evaluation to stay well clear of mate scores, so an
// evaluation can never be mistaken for, or overflow into, a forced mate.
func truncated(v int) int {
	const bound = MateScore - MaxPly - 1
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}

// Evaluate returns the static evaluation of pos in centipawns from White's
// perspective: positive favors White, negative favors Black.
func Evaluate(pos *board.Position) int {
	return truncated(evalSide(pos, board.White) - evalSide(pos, board.Black))
}

func evalSide(pos *board.Position, us board.Color) int {
	them := us.Other()
	score := 0

	pawns := pos.Pieces[us][board.Pawn]
	knights := pos.Pieces[us][board.Knight]
	bishops := pos.Pieces[us][board.Bishop]
	rooks := pos.Pieces[us][board.Rook]
	queens := pos.Pieces[us][board.Queen]

	allPawns := pos.Pieces[board.White][board.Pawn] | pos.Pieces[board.Black][board.Pawn]
	numPawns := allPawns.PopCount()

	score += pawns.PopCount() * pawnValue
	score += knights.PopCount() * knightValue
	score += bishops.PopCount() * bishopValue
	score += rooks.PopCount() * rookValue
	score += queens.PopCount() * queenValue

	if bishops.PopCount() >= 2 && bishops&lightSquares != 0 && bishops&darkSquares != 0 {
		score += bishopPairBonus
	}

	occupied := pos.AllOccupied
	enemy := [6]board.Bitboard{
		pos.Pieces[them][board.Pawn], pos.Pieces[them][board.Knight], pos.Pieces[them][board.Bishop],
		pos.Pieces[them][board.Rook], pos.Pieces[them][board.Queen], pos.Pieces[them][board.King],
	}

	var attackMap board.Bitboard
	knights.ForEach(func(sq board.Square) { attackMap |= board.KnightAttacks(sq) })
	bishops.ForEach(func(sq board.Square) { attackMap |= board.BishopAttacks(sq, occupied) })
	rooks.ForEach(func(sq board.Square) { attackMap |= board.RookAttacks(sq, occupied) })
	queens.ForEach(func(sq board.Square) { attackMap |= board.QueenAttacks(sq, occupied) })

	score += attackMap.PopCount() * squareAttackBonus
	score += (attackMap & enemy[board.Pawn]).PopCount() * pawnAttackBonus
	score += (attackMap & enemy[board.Knight]).PopCount() * knightAttackBonus
	score += (attackMap & enemy[board.Bishop]).PopCount() * bishopAttackBonus
	score += (attackMap & enemy[board.Rook]).PopCount() * rookAttackBonus
	score += (attackMap & enemy[board.Queen]).PopCount() * queenAttackBonus
	if attackMap&enemy[board.King] != 0 {
		score += attackOtherKingBonus
	}

	var pawnAttacksLeft, pawnAttacksRight board.Bitboard
	if us == board.White {
		pawnAttacksLeft = pawns.NorthWest()
		pawnAttacksRight = pawns.NorthEast()
	} else {
		pawnAttacksLeft = pawns.SouthWest()
		pawnAttacksRight = pawns.SouthEast()
	}

	for _, dir := range [2]board.Bitboard{pawnAttacksLeft, pawnAttacksRight} {
		score += pawnDeltaAttackBonus * ((knightValue - pawnValue) / 100) * (dir & enemy[board.Knight]).PopCount()
		score += pawnDeltaAttackBonus * ((bishopValue - pawnValue) / 100) * (dir & enemy[board.Bishop]).PopCount()
		score += pawnDeltaAttackBonus * ((rookValue - pawnValue) / 100) * (dir & enemy[board.Rook]).PopCount()
		score += pawnDeltaAttackBonus * ((queenValue - pawnValue) / 100) * (dir & enemy[board.Queen]).PopCount()
	}

	pawns.ForEach(func(sq board.Square) {
		file := sq.File()
		if file == 0 || file == 7 {
			score -= edgeFilePawnPenalty
		} else if file >= 2 && file <= 5 {
			score += centralPawnBonus
		}

		switch sq.RelativeRank(us) {
		case 5:
			score += sixthRankPawnBonus
		case 6:
			score += seventhRankPawnBonus
		}
	})

	numKnights := knights.PopCount()
	knights.ForEach(func(sq board.Square) {
		switch knightRing(sq) {
		case 0:
			score += knightCenterBonus
		case 2:
			score -= knightMiddleRingPenalty
		case 3:
			score -= knightOuterRingPenalty
		}
	})
	score += knightPawnScaling * numKnights * numPawns
	score -= bishopPawnScaling * bishops.PopCount() * numPawns

	for file := 0; file < 8; file++ {
		fileMask := board.FileMask[file]
		if (pawns & fileMask).PopCount() >= 2 {
			score -= doubledPawnPenalty
		}

		(rooks & fileMask).ForEach(func(rsq board.Square) {
			if pawns&fileMask&fileAheadMask(rsq, us) == 0 {
				score += unblockedRookBonus
			}
		})
	}

	score += pawnChainBonus * (pawnAttacksLeft & pawns).PopCount()
	score += pawnChainBonus * (pawnAttacksRight & pawns).PopCount()

	kingSq := pos.KingSquare[us]
	kingRank, kingFile := kingSq.Rank(), kingSq.File()
	if kingRank == 0 || kingRank == 7 {
		score += kingBackRankBonus
	} else if kingRank == 1 || kingRank == 6 {
		score += kingSecondRankBonus
	}
	if kingFile == 0 || kingFile == 7 {
		score += kingBackRankBonus
	} else if kingFile == 1 || kingFile == 6 {
		score += kingSecondRankBonus
	}

	kingArea := board.KingAttacks(kingSq)
	score -= kingAreaPenalty * (kingArea &^ pos.Occupied[us]).PopCount()

	return score
}

var lightSquares, darkSquares board.Bitboard

func init() {
	for sq := board.A1; sq <= board.H8; sq++ {
		if (sq.File()+sq.Rank())%2 == 0 {
			darkSquares |= board.SquareBB(sq)
		} else {
			lightSquares |= board.SquareBB(sq)
		}
	}
}

// knightRing classifies a square by distance from the board center: 0 is the
// innermost 2x2, higher numbers move outward to the edge.
func knightRing(sq board.Square) int {
	df := distFromCenter(sq.File())
	dr := distFromCenter(sq.Rank())
	if dr > df {
		return dr
	}
	return df
}

func distFromCenter(x int) int {
	if x <= 3 {
		return 3 - x
	}
	return x - 4
}

// fileAheadMask returns the squares on sq's file strictly ahead of sq from
// c's perspective, built by shifting one step ahead and filling the rest of
// the file from there.
func fileAheadMask(sq board.Square, c board.Color) board.Bitboard {
	bb := board.SquareBB(sq)
	if c == board.White {
		return bb.North().NorthFill()
	}
	return bb.South().SouthFill()
}
