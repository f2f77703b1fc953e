package board

// GenerateLegalMoves produces exactly the legal moves for the side to move.
//
// The algorithm is pin- and check-aware: pins are computed once per call via
// x-ray sniper detection from the king outward, and the number of checking
// attackers drives which of three generation strategies runs. No move is
// ever generated, applied, and discarded after finding the king attacked —
// illegality is ruled out by construction, via destination bitmasks derived
// from the pin rays and the check geometry.
func (p *Position) GenerateLegalMoves() *MoveList {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	checkers := p.Checkers
	numCheckers := checkers.PopCount()

	ml := NewMoveList()

	pinned, pinRay := p.computePins()

	var allowed Bitboard
	var blockSquares Bitboard
	switch numCheckers {
	case 0:
		allowed = ^p.Occupied[us]
	case 1:
		checkerSq := checkers.LSB()
		if isSlider(p.PieceAt(checkerSq)) {
			blockSquares = Between(checkerSq, ksq)
		}
		allowed = (blockSquares | SquareBB(checkerSq)) &^ p.Occupied[us]
	default:
		// Double check: only the king can move.
		allowed = 0
	}

	if numCheckers < 2 {
		p.generateNonKingMoves(ml, us, them, allowed, pinned, pinRay)
		p.generateEnPassant(ml, us, checkers, blockSquares)
	}

	p.generateKingEvasions(ml, us, them, ksq)

	if numCheckers == 0 {
		p.generateCastlingMoves(ml, us)
	}

	return partitionByOrder(ml, p, checkers, blockSquares)
}

// GeneratePseudoLegalMoves produces all pseudo-legal moves, ignoring pins and
// checks. It exists for callers (tests, perft cross-checks) that need the
// unrestricted move set; the engine's search path never calls it.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	us := p.SideToMove
	them := us.Other()
	ml := NewMoveList()
	p.generateNonKingMoves(ml, us, them, ^p.Occupied[us], 0, [64]Bitboard{})
	p.generateEnPassant(ml, us, 0, 0)
	from := p.KingSquare[us]
	attacks := KingAttacks(from) & ^p.Occupied[us]
	for attacks != 0 {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}
	p.generateCastlingMoves(ml, us)
	return ml
}

// GenerateCaptures produces legal capturing and promoting moves only.
func (p *Position) GenerateCaptures() *MoveList {
	full := p.GenerateLegalMoves()
	ml := NewMoveList()
	for i := 0; i < full.Len(); i++ {
		m := full.Get(i)
		if m.IsCapture(p) || m.IsPromotion() {
			ml.Add(m)
		}
	}
	return ml
}

func isSlider(pc Piece) bool {
	if pc == NoPiece {
		return false
	}
	switch pc.Type() {
	case Bishop, Rook, Queen:
		return true
	default:
		return false
	}
}

// computePins returns the bitboard of friendly pieces pinned to the king and,
// for each pinned square, the ray of destinations that keep the pin honored
// (the squares between king and pinner, plus the pinner's own square).
func (p *Position) computePins() (Bitboard, [64]Bitboard) {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]

	var pinned Bitboard
	var pinRay [64]Bitboard

	scan := func(snipers Bitboard) {
		for snipers != 0 {
			sq := snipers.PopLSB()
			between := Between(sq, ksq)
			blockers := between & p.AllOccupied
			if blockers.PopCount() == 1 && blockers&p.Occupied[us] != 0 {
				pinnedSq := blockers.LSB()
				pinned |= blockers
				pinRay[pinnedSq] = between | SquareBB(sq)
			}
		}
	}

	scan(RookAttacks(ksq, 0) & (p.Pieces[them][Rook] | p.Pieces[them][Queen]))
	scan(BishopAttacks(ksq, 0) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen]))

	return pinned, pinRay
}

// generateNonKingMoves emits pawn/knight/bishop/rook/queen moves (excluding
// en passant, handled separately) whose destination lies in allowed, further
// restricted to the pin ray for any pinned piece.
func (p *Position) generateNonKingMoves(ml *MoveList, us, them Color, allowed Bitboard, pinned Bitboard, pinRay [64]Bitboard) {
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	p.generatePawnMoves(ml, us, enemies, occupied, allowed, pinned, pinRay)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		dest := KnightAttacks(from) & restrictedAllowed(allowed, pinned, pinRay, from)
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		dest := BishopAttacks(from, occupied) & restrictedAllowed(allowed, pinned, pinRay, from)
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		dest := RookAttacks(from, occupied) & restrictedAllowed(allowed, pinned, pinRay, from)
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		dest := QueenAttacks(from, occupied) & restrictedAllowed(allowed, pinned, pinRay, from)
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}
}

// restrictedAllowed narrows allowed to the pin ray when from is pinned.
func restrictedAllowed(allowed, pinned Bitboard, pinRay [64]Bitboard, from Square) Bitboard {
	if pinned&SquareBB(from) == 0 {
		return allowed
	}
	return allowed & pinRay[from]
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied, allowed Bitboard, pinned Bitboard, pinRay [64]Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	emit := func(to Square, from Square) {
		if restrictedAllowed(allowed, pinned, pinRay, from)&SquareBB(to) == 0 {
			return
		}
		ml.Add(NewMove(from, to))
	}
	emitPromo := func(to Square, from Square) {
		if restrictedAllowed(allowed, pinned, pinRay, from)&SquareBB(to) == 0 {
			return
		}
		addPromotions(ml, from, to)
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		emit(to, Square(int(to)-pushDir))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		emit(to, Square(int(to)-2*pushDir))
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		emit(to, Square(int(to)-pushDir+1))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		emit(to, Square(int(to)-pushDir-1))
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		emitPromo(to, Square(int(to)-pushDir))
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		emitPromo(to, Square(int(to)-pushDir+1))
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		emitPromo(to, Square(int(to)-pushDir-1))
	}
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateEnPassant emits the (at most two) legal en passant captures.
//
// En passant is pin-checked by a dedicated occupancy probe rather than the
// ordinary per-piece pin ray: capturing en passant removes two pawns from
// the board in one move (the capturing pawn's origin and the captured
// pawn's square), which can expose the king along a line that neither
// pawn's individual pin ray would catch. The probe recomputes slider
// attacks to the king under the post-capture occupancy directly, which
// covers both of the classically named special cases (a diagonal pin
// through the captured pawn's square, and a horizontal pin running through
// both pawns at once) without pattern-matching either one by name.
func (p *Position) generateEnPassant(ml *MoveList, us Color, checkers, blockSquares Bitboard) {
	if p.EnPassant == NoSquare {
		return
	}
	if checkers.PopCount() >= 2 {
		return
	}

	them := us.Other()
	epBB := SquareBB(p.EnPassant)
	pawns := p.Pieces[us][Pawn]

	var capturedSq Square
	var attackers Bitboard
	if us == White {
		capturedSq = p.EnPassant - 8
		attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
	} else {
		capturedSq = p.EnPassant + 8
		attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
	}

	if checkers != 0 {
		checkerSq := checkers.LSB()
		resolves := checkerSq == capturedSq || blockSquares&SquareBB(p.EnPassant) != 0
		if !resolves {
			return
		}
	}

	ksq := p.KingSquare[us]
	for attackers != 0 {
		from := attackers.PopLSB()
		occ := (p.AllOccupied &^ SquareBB(from) &^ SquareBB(capturedSq)) | epBB
		exposed := (RookAttacks(ksq, occ) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])) |
			(BishopAttacks(ksq, occ) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen]))
		if exposed != 0 {
			continue
		}
		ml.Add(NewEnPassant(from, p.EnPassant))
	}
}

// generateKingEvasions emits king moves (excluding castling) to squares not
// attacked by the enemy, computed with the king itself removed from the
// occupancy so that sliding checkers' rays extend properly through the
// king's current square.
func (p *Position) generateKingEvasions(ml *MoveList, us, them Color, ksq Square) {
	occWithoutKing := p.AllOccupied &^ SquareBB(ksq)
	dest := KingAttacks(ksq) & ^p.Occupied[us]
	for dest != 0 {
		to := dest.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) != 0 {
			continue
		}
		ml.Add(NewMove(ksq, to))
	}
}

// generateCastlingMoves emits castling moves. GenerateLegalMoves calls it
// only when the side to move is not in check; each candidate additionally
// checks that the king's start, transit, and destination squares are all
// unattacked.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&((1<<F1)|(1<<G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewCastling(E1, G1))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewCastling(E1, C1))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&((1<<F8)|(1<<G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewCastling(E8, G8))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewCastling(E8, C8))
				}
			}
		}
	}
}

// partitionByOrder regroups ml into captures, then check-blocking
// interpositions, then quiets, concatenated in that order. This seeds
// alpha-beta with the most promising moves first without requiring any
// heuristic scoring table.
func partitionByOrder(ml *MoveList, p *Position, checkers, blockSquares Bitboard) *MoveList {
	out := NewMoveList()
	var blocks, quiets [256]Move
	nBlocks, nQuiets := 0, 0

	singleCheck := checkers.PopCount() == 1

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		switch {
		case m.IsCapture(p):
			out.Add(m)
		case singleCheck && (blockSquares&SquareBB(m.To()) != 0):
			blocks[nBlocks] = m
			nBlocks++
		default:
			quiets[nQuiets] = m
			nQuiets++
		}
	}
	for i := 0; i < nBlocks; i++ {
		out.Add(blocks[i])
	}
	for i := 0; i < nQuiets; i++ {
		out.Add(quiets[i])
	}
	return out
}

// MakeMove applies a move to the position and returns undo information,
// updating the Zobrist and pawn hashes incrementally via XOR-deltas for
// exactly the squares, side-to-move, castling rights, and en-passant state
// that change. A full snapshot of the piece bitboards is carried in the
// returned UndoInfo so UnmakeMove can restore the position by assignment
// rather than replaying the move's individual effects in reverse.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
		Checkers:       p.Checkers,
		KingSquare:     p.KingSquare,
		Pieces:         p.Pieces,
		Occupied:       p.Occupied,
		AllOccupied:    p.AllOccupied,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}

	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
		p.PawnKey ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
		if captured.Type() == Pawn {
			p.PawnKey ^= zobristPiece[them][Pawn][to]
		}
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]
	if pt == Pawn {
		p.PawnKey ^= zobristPiece[us][Pawn][from]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}

	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}

	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move by restoring the full board snapshot carried in
// undo, rather than replaying the move's effects in reverse. This avoids
// duplicating MakeMove's special-case logic (castling rook transit,
// promotion, en passant removal) in mirror-image form.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	if !undo.Valid {
		return
	}

	them := p.SideToMove
	us := them.Other()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.Checkers = undo.Checkers
	p.KingSquare = undo.KingSquare
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw by stalemate, the 50-move
// rule, or insufficient material. Repetition draws are tracked by the
// search worker's played/line hash lists, not by the position itself.
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
