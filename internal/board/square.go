// Package board is schaakmachine's bitboard-based board representation:
// squares, pieces, occupancy bitboards, move encoding, magic-indexed
// sliding attacks, and the Position type that ties them together.
package board

import "fmt"

// Square identifies one of the 64 board squares under the little-endian
// rank-file mapping: A1 is square 0, H1 is 7, A8 is 56, H8 is 63. Moving up
// a rank adds 8; moving right a file adds 1.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8

	// NoSquare marks the absence of a square, e.g. no en passant target.
	NoSquare Square = 64
)

// NewSquare builds a square from a 0-indexed file (a=0..h=7) and rank
// (1st=0..8th=7).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic coordinates such as "e4" into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}

// File returns the 0-indexed file, a=0 through h=7.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the 0-indexed rank, the 1st rank as 0 through the 8th as 7.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// RelativeRank returns the rank as seen by c: White counts up from its own
// back rank, Black counts up from its own, so both see their starting
// pawns on relative rank 1.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// Mirror flips sq across the board's horizontal midline, the square a pawn
// of the opposite color would occupy on the mirrored rank.
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// IsValid reports whether sq is one of the 64 real board squares.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// String renders sq in algebraic notation, e.g. "e4", or "-" for NoSquare.
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}
