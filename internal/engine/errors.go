package engine

import "errors"

// Sentinel errors surfaced at the engine API boundary. Search itself never
// returns an error: cancellation unwinds through the run flag, not an error
// path.
var (
	// ErrIllegalMove is returned when SetPosition is asked to replay a move
	// that is not legal in the position reached so far.
	ErrIllegalMove = errors.New("engine: illegal move")

	// ErrTableAllocation names a failure to allocate a transposition table of
	// the requested size. No function in this package returns it: New,
	// NewTransTable and Resize do not report allocation failure.
	ErrTableAllocation = errors.New("engine: transposition table allocation failed")
)
