// Command schaakmachine-bench exercises the core from the command line
// without a UCI frontend: it runs perft counts to validate move generation
// and a fixed-depth search benchmark to validate the search engine.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/hugobogaart/schaakmachine/internal/board"
	"github.com/hugobogaart/schaakmachine/internal/engine"
)

var (
	fen      = flag.String("fen", board.StartFEN, "FEN of the position to test")
	perftMax = flag.Int("perft", 5, "maximum perft depth")
	benchMS  = flag.Int("benchms", 2000, "search benchmark time budget in milliseconds")
)

func main() {
	flag.Parse()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("invalid FEN %q: %v", *fen, err)
	}

	eng := engine.New(*pos, 64, nil, nil)

	log.Printf("perft from %q", *fen)
	for depth := 1; depth <= *perftMax; depth++ {
		p := pos.Copy()
		start := time.Now()
		nodes := eng.Perft(p, depth)
		elapsed := time.Since(start)
		log.Printf("  depth %d: %d nodes (%s)", depth, nodes, elapsed)
	}

	log.Printf("search benchmark: %dms", *benchMS)
	done := make(chan struct{})
	eng.OnInfo = func(info engine.SearchInfo) {
		log.Printf("  depth %d score %s nodes %d pv %v",
			info.Depth, engine.ScoreToString(info.Score), info.Nodes, info.PV)
	}
	eng.OnBestMove = func(m board.Move, _ board.Color) {
		log.Printf("bestmove %v", m)
		close(done)
	}

	eng.Go(engine.GoOptions{MoveTime: time.Duration(*benchMS) * time.Millisecond})
	<-done
}
