package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hugobogaart/schaakmachine/internal/board"
)

// SearchInfo reports iterative-deepening progress to the caller.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// GoOptions carries the parameters of a single search request, a direct
// rendering of the engine's UCI-style time controls and search limits.
type GoOptions struct {
	RestrictedMoves []board.Move
	Ponder          bool
	WTime, BTime    time.Duration
	WInc, BInc      time.Duration
	MovesToGo       int
	Depth           int // 0 = unlimited
	MoveTime        time.Duration
	Infinite        bool
}

// Engine is the facade a caller drives: construct it over a position, call
// Go to start a search, and read results through the OnInfo/OnBestMove
// callbacks. Exactly one search worker goroutine and, while a time control
// is active, one detached timer goroutine run per search.
type Engine struct {
	mu  sync.Mutex
	pos *board.Position
	tt  *TransTable

	played   []uint64
	worker   *Worker
	stopFlag atomic.Bool
	running  atomic.Bool
	ponder   atomic.Bool

	wg sync.WaitGroup

	OnInfo     func(SearchInfo)
	OnBestMove func(board.Move, board.Color)
}

// New creates an engine over pos with a transposition table sized to
// approximately sizeMB megabytes.
func New(pos board.Position, sizeMB int, onInfo func(SearchInfo), onBestMove func(board.Move, board.Color)) *Engine {
	tt := NewTransTable(sizeMB)
	p := pos.Copy()
	e := &Engine{
		pos:        p,
		tt:         tt,
		worker:     NewWorker(tt, &atomic.Bool{}),
		OnInfo:     onInfo,
		OnBestMove: onBestMove,
	}
	return e
}

// SetPosition replaces the current root with start, replayed forward
// through moves. Replaying (rather than accepting a pre-built Position)
// lets the engine rebuild its own repetition history from the game's move
// sequence.
func (e *Engine) SetPosition(start board.Position, moves []board.Move) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := start.Copy()
	played := make([]uint64, 0, len(moves)+1)
	played = append(played, p.Hash)

	for _, m := range moves {
		legal := p.GenerateLegalMoves()
		found := false
		for i := 0; i < legal.Len(); i++ {
			if legal.Get(i) == m {
				found = true
				break
			}
		}
		if !found {
			return ErrIllegalMove
		}
		undo := p.MakeMove(m)
		if !undo.Valid {
			return ErrIllegalMove
		}
		played = append(played, p.Hash)
	}

	e.pos = p
	e.played = played
	return nil
}

// Go starts a search in its own goroutine and returns immediately. Results
// stream through OnInfo as each depth completes; the final best move is
// delivered through OnBestMove once the search stops.
func (e *Engine) Go(opts GoOptions) {
	e.mu.Lock()
	pos := e.pos.Copy()
	played := append([]uint64(nil), e.played...)
	e.mu.Unlock()

	e.stopFlag.Store(false)
	e.ponder.Store(opts.Ponder)
	e.running.Store(true)

	e.worker = NewWorker(e.tt, &e.stopFlag)
	e.worker.Reset(pos, played)
	e.worker.SetRestrictedMoves(opts.RestrictedMoves)

	tm := NewTimeManager()
	limits := UCILimits{
		Time:      [2]time.Duration{opts.WTime, opts.BTime},
		Inc:       [2]time.Duration{opts.WInc, opts.BInc},
		MovesToGo: opts.MovesToGo,
		MoveTime:  opts.MoveTime,
		Depth:     opts.Depth,
		Infinite:  opts.Infinite,
		Ponder:    opts.Ponder,
	}
	tm.Init(limits, pos.SideToMove, len(played))
	engineLog.Printf("time budget: optimum %s, maximum %s", tm.OptimumTime(), tm.MaximumTime())

	maxDepth := MaxPly
	if opts.Depth > 0 {
		maxDepth = opts.Depth
	}

	e.wg.Add(1)
	go e.runSearch(pos, maxDepth, tm)

	if !opts.Infinite && !opts.Ponder && tm.MaximumTime() < time.Hour {
		e.wg.Add(1)
		go e.runTimer(tm)
	}
}

// runSearch performs iterative deepening, reporting progress through OnInfo
// and delivering the final move through OnBestMove when it stops.
func (e *Engine) runSearch(pos *board.Position, maxDepth int, tm *TimeManager) {
	defer e.wg.Done()

	var bestMove board.Move
	var bestScore int

	for depth := 1; depth <= maxDepth; depth++ {
		if e.stopFlag.Load() {
			break
		}

		e.tt.NewSearch()
		move, score := e.worker.Search(depth)
		if e.stopFlag.Load() {
			break
		}

		if move != board.NoMove {
			bestMove = move
			bestScore = score
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    e.worker.Nodes(),
				Time:     tm.Elapsed(),
				PV:       e.worker.GetPV(),
				HashFull: e.tt.HashFull(),
			})
		}

		if bestScore > MateScore-100 || bestScore < -MateScore+100 {
			break
		}

		if !e.ponder.Load() && tm.PastOptimum() {
			break
		}
	}

	e.stopFlag.Store(true)
	e.running.Store(false)

	if bestMove != board.NoMove {
		e.ensureRootEntry(pos, bestMove, bestScore)
	}

	if e.OnBestMove != nil {
		e.OnBestMove(bestMove, pos.SideToMove)
	}
}

// ensureRootEntry recovers from a root hash that fell out of the
// transposition table between the last completed depth and the point the
// search stopped, for example when a racing write evicted it. It refills the
// entry with the best result found so a subsequent SetPosition/Go sharing the
// table still sees a root move.
func (e *Engine) ensureRootEntry(pos *board.Position, bestMove board.Move, bestScore int) {
	if _, ok := e.tt.Lookup(pos.Hash); ok {
		return
	}
	engineLog.Printf("root entry missing for hash %#x after search, refilling", pos.Hash)
	w := e.tt.Reserve(pos.Hash)
	w.WriteEval(int32(bestScore), bestMove, 1, BoundExact)
	w.Flush()
	if _, ok := e.tt.Lookup(pos.Hash); !ok {
		engineLog.Printf("root entry still missing for hash %#x after refill", pos.Hash)
	}
}

// runTimer trips the stop flag once the search's maximum time budget is
// exhausted. It exits immediately if the search stops first.
func (e *Engine) runTimer(tm *TimeManager) {
	defer e.wg.Done()

	const pollInterval = 500 * time.Microsecond
	for !e.stopFlag.Load() {
		if tm.ShouldStop() {
			e.stopFlag.Store(true)
			return
		}
		time.Sleep(pollInterval)
	}
}

// Stop signals the running search to halt as soon as it next polls the
// cancellation flag.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
	e.wg.Wait()
}

// PonderHit tells an in-progress ponder search that its predicted move was
// actually played, so its normal time budget now applies.
func (e *Engine) PonderHit() {
	e.ponder.Store(false)
}

// Resize reallocates the transposition table to approximately sizeMB
// megabytes, rehashing every stored node into the new table.
func (e *Engine) Resize(sizeMB int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Resize(sizeMB)
}

// Running reports whether a search is currently in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Perft counts the leaf nodes reachable from pos at the given depth, used to
// validate move generator correctness against known perft results.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString renders a centipawn or mate score the way a UCI frontend
// would display it.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
