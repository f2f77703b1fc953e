package engine

import (
	"time"

	"github.com/hugobogaart/schaakmachine/internal/board"
)

// UCILimits is the parsed form of a UCI "go" command's time-control
// parameters, the input TimeManager.Init turns into a concrete time budget.
type UCILimits struct {
	Time      [2]time.Duration // wtime/btime: remaining clock time per side
	Inc       [2]time.Duration // winc/binc: increment awarded per move
	MovesToGo int              // moves left until the next time control, 0 = sudden death
	MoveTime  time.Duration    // fixed per-move time, overrides the clock-based budget
	Depth     int              // depth limit in plies, 0 = unlimited
	Nodes     uint64           // node limit, 0 = unlimited
	Infinite  bool             // search until told to stop
	Ponder    bool             // searching the opponent's predicted reply, clock doesn't apply yet
}

// TimeManager converts a single search's UCILimits into an optimum/maximum
// time pair and tracks how much of it has elapsed.
type TimeManager struct {
	optimumTime time.Duration // target: the iterative-deepening loop stops starting new depths past this
	maximumTime time.Duration // hard cap: the timer goroutine forces a stop at this point
	startTime   time.Time
}

func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init computes the time budget for a search starting at the given ply
// (used to estimate how many moves remain in a sudden-death time control).
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	if limits.Infinite || (limits.Time[us] == 0 && limits.MoveTime == 0) {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		// No explicit moves-to-go: assume a longer game early on, tapering
		// down as the game goes deeper into the middlegame/endgame.
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	baseTime := timeLeft / time.Duration(mtg)
	baseTime += inc * 9 / 10
	tm.optimumTime = baseTime

	if ply < 8 {
		// Hold back a little in the opening, before the moves-to-go estimate
		// has much signal to work with.
		tm.optimumTime = baseTime * 85 / 100
	}

	maxFromOptimum := tm.optimumTime * 5
	maxFromRemaining := timeLeft * 8 / 10
	if maxFromOptimum < maxFromRemaining {
		tm.maximumTime = maxFromOptimum
	} else {
		tm.maximumTime = maxFromRemaining
	}

	safetyMargin := timeLeft * 95 / 100
	if tm.maximumTime > safetyMargin {
		tm.maximumTime = safetyMargin
	}

	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < 50*time.Millisecond {
		tm.maximumTime = 50 * time.Millisecond
	}
}

// Elapsed returns how long the search has been running.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// ShouldStop reports whether the hard time limit has been reached.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum reports whether the soft target has been reached; the
// iterative-deepening loop uses this to decide not to start another depth,
// without aborting the one in progress.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}
