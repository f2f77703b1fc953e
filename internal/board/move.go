package board

import "fmt"

// Move packs a chess move into 16 bits: bits 0-5 the origin square, bits
// 6-11 the destination square, bits 12-13 the promotion piece (relative to
// Knight), and bits 14-15 a flag distinguishing normal moves from
// promotions, en passant captures, and castling.
type Move uint16

const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove is the zero move, used as a sentinel for "no move available".
const NoMove Move = 0

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a promotion move; promo must be one of
// Knight/Bishop/Rook/Queen.
func NewPromotion(from, to Square, promo PieceType) Move {
	promoIdx := promo - Knight
	return Move(from) | Move(to)<<6 | Move(promoIdx)<<12 | Move(FlagPromotion)
}

func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling builds a castling move expressed as the king's own start and
// end squares (not the rook's).
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagCastling)
}

func (m Move) From() Square {
	return Square(m & 0x3F)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

func (m Move) Flag() uint16 {
	return uint16(m) & 0xC000
}

// Promotion returns the promoted-to piece type; only meaningful when
// IsPromotion reports true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture reports whether m removes an enemy piece from pos, counting en
// passant since its victim square differs from the destination square.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet reports whether m is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String renders m in UCI long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove decodes a UCI long-algebraic move string against pos, which
// supplies the piece-type and en-passant-target context needed to recover
// the castling/en-passant flags a bare from-to pair can't express.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to), nil
	}
	if pt == Pawn && to == pos.EnPassant {
		return NewEnPassant(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-capacity move buffer: move generation and search both
// run hot enough that a slice's heap allocation per call would show up in
// profiles, so moves land in a stack-sized array instead.
type MoveList struct {
	moves [256]Move
	count int
}

func NewMoveList() *MoveList {
	return &MoveList{}
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int {
	return ml.count
}

func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap exchanges two entries in place; move ordering uses this to bubble the
// current best candidate to the front without copying the whole list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

func (ml *MoveList) Clear() {
	ml.count = 0
}

// UndoInfo snapshots everything MakeMove mutates on a Position, so
// UnmakeMove can restore it without recomputing from scratch.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	Valid          bool
}
