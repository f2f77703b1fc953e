package board

// Color is one of the two sides in a game.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opponent's color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is a kind of chess piece, independent of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

var pieceTypeChars = [7]byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}

// Char returns the lowercase FEN letter for pt.
func (pt PieceType) Char() byte {
	if pt > NoPieceType {
		return ' '
	}
	return pieceTypeChars[pt]
}

// materialValue holds the centipawn value of each piece type, used by
// Position.Material for a fast material-only balance independent of the
// engine's full positional evaluator.
var materialValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Piece packs a PieceType and a Color into a single byte: pieceType +
// color*6, so white pieces occupy 0..5 and black pieces 6..11.
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece combines pt and c into a Piece, or NoPiece if either is out of
// range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

const pieceChars = "PNBRQKpnbrqk"

// String renders p as its FEN letter: uppercase for white, lowercase for
// black, a space for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string(pieceChars[p])
}

// PieceFromChar maps a FEN piece letter back to a Piece, or NoPiece if c is
// not one of the twelve recognized letters.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// Value returns p's material value in centipawns.
func (p Piece) Value() int {
	return materialValue[p.Type()]
}
