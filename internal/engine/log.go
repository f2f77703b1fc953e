package engine

import (
	"io"
	"log"
)

// engineLog carries the engine's diagnostics (the time budget at search
// start, a current-generation eviction from a full bucket, and the root
// entry refill after a search) and discards by default: a library embedded
// in a UCI frontend must not pollute stdout, since the UCI wire protocol is
// text over stdout. A Writer dropped without Flush is not logged.
var engineLog = log.New(io.Discard, "[engine] ", log.LstdFlags)

// SetLogOutput redirects the engine's diagnostic logger.
func SetLogOutput(w io.Writer) {
	engineLog.SetOutput(w)
}
