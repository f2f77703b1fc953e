package engine

import (
	"unsafe"

	"github.com/hugobogaart/schaakmachine/internal/board"
)

// Bound records which side of the search window a stored score came from.
type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower
	BoundUpper
)

const bucketSize = 4

// node is one transposition table slot.
type node struct {
	hash       uint64
	move       board.Move
	eval       int32
	staticEval int32
	depth      int8
	bound      Bound
	generation uint8
	inUse      bool
}

func (n *node) isWorseThan(o *node) bool {
	if n.generation != o.generation {
		return n.generation < o.generation
	}
	return n.depth < o.depth
}

type bucket struct {
	entries [bucketSize]node
}

// TransTable is a fixed-capacity transposition table organized as an array
// of fixed-size buckets, indexed by hash modulo the bucket count. Within a
// bucket, reservation prefers an exact-hash hit, then an empty slot, then
// the entry with the worst (generation, depth) ordering.
//
// The table is written and read by exactly one goroutine (the search
// worker) in this engine's concurrency model, so no locking or atomics
// guard the node fields; a Writer buffers its changes locally and only
// publishes them to the shared slot on Flush.
type TransTable struct {
	buckets    []bucket
	generation uint8
}

// megabytesToBuckets returns the number of buckets that fit in mb megabytes.
func megabytesToBuckets(mb int) int {
	if mb <= 0 {
		mb = 1
	}
	bucketBytes := int(unsafe.Sizeof(bucket{}))
	n := (mb * 1024 * 1024) / bucketBytes
	if n < 1 {
		n = 1
	}
	return n
}

// NewTransTable creates a transposition table sized to approximately sizeMB
// megabytes.
func NewTransTable(sizeMB int) *TransTable {
	return &TransTable{
		buckets: make([]bucket, megabytesToBuckets(sizeMB)),
	}
}

func (tt *TransTable) findBucket(hash uint64) *bucket {
	return &tt.buckets[hash%uint64(len(tt.buckets))]
}

// NewSearch advances the replacement generation, making every entry from a
// prior search a weaker replacement candidate than one found in this search.
func (tt *TransTable) NewSearch() {
	tt.generation++
}

// Lookup returns the node for hash and true if one is stored, without
// creating a Writer. Safe to call at any depth.
func (tt *TransTable) Lookup(hash uint64) (node, bool) {
	b := tt.findBucket(hash)
	for i := range b.entries {
		if b.entries[i].inUse && b.entries[i].hash == hash {
			return b.entries[i], true
		}
	}
	return node{}, false
}

// Writer is a scoped handle on a single reservation. The zero value is not
// usable; obtain one from Reserve. A Writer that is aborted, or simply
// dropped without an explicit Flush, never modifies the table.
type Writer struct {
	tt     *TransTable
	slot   *node
	hash   uint64
	buffer node

	wasHit   bool
	wasEmpty bool

	origEval       int32
	origStaticEval int32
	origMove       board.Move
	origDepth      int
	origBound      Bound

	done bool
}

// Reserve selects a slot in the bucket for hash following a three-step
// policy: an existing entry with the same hash (a hit), else an empty slot,
// else the worst entry by (generation, depth), which is logged when it
// belongs to the current generation.
func (tt *TransTable) Reserve(hash uint64) *Writer {
	b := tt.findBucket(hash)

	w := &Writer{tt: tt, hash: hash}

	for i := range b.entries {
		if b.entries[i].inUse && b.entries[i].hash == hash {
			w.slot = &b.entries[i]
			w.wasHit = true
			w.buffer = *w.slot
			w.origEval = w.slot.eval
			w.origStaticEval = w.slot.staticEval
			w.origMove = w.slot.move
			w.origDepth = int(w.slot.depth)
			w.origBound = w.slot.bound
			return w
		}
	}

	for i := range b.entries {
		if !b.entries[i].inUse {
			w.slot = &b.entries[i]
			w.wasEmpty = true
			w.buffer = node{hash: hash, inUse: true, generation: tt.generation}
			return w
		}
	}

	worst := &b.entries[0]
	for i := 1; i < len(b.entries); i++ {
		if b.entries[i].isWorseThan(worst) {
			worst = &b.entries[i]
		}
	}
	if worst.generation == tt.generation {
		engineLog.Printf("bucket exhausted for hash %#x, evicting depth %d from current generation", hash, worst.depth)
	}
	w.slot = worst
	w.buffer = node{hash: hash, inUse: true, generation: tt.generation}
	return w
}

// IsHit returns true if this reservation landed on an entry already storing
// the same position.
func (w *Writer) IsHit() bool { return w.wasHit }

// WasEmpty returns true if this reservation claimed a previously-unused slot.
func (w *Writer) WasEmpty() bool { return w.wasEmpty }

// OriginalEval returns the eval stored under this hash before this
// reservation, valid only when IsHit is true.
func (w *Writer) OriginalEval() int32 { return w.origEval }

// OriginalStaticEval returns the static eval stored before this reservation.
func (w *Writer) OriginalStaticEval() int32 { return w.origStaticEval }

// OriginalMove returns the move stored before this reservation.
func (w *Writer) OriginalMove() board.Move { return w.origMove }

// OriginalDepth returns the search depth stored before this reservation.
func (w *Writer) OriginalDepth() int { return w.origDepth }

// OriginalBound returns the bound type stored before this reservation.
func (w *Writer) OriginalBound() Bound { return w.origBound }

// WriteStaticEval records the leaf static evaluation for this position.
func (w *Writer) WriteStaticEval(eval int32) {
	w.buffer.staticEval = eval
}

// WriteEval records a search result: its score, best move, searched depth,
// and which side of the window the score came from.
func (w *Writer) WriteEval(eval int32, move board.Move, depth int, bound Bound) {
	w.buffer.eval = eval
	w.buffer.move = move
	w.buffer.depth = int8(depth)
	w.buffer.bound = bound
}

// Flush publishes the buffered writes to the shared slot. After Flush,
// further calls to Flush or Abort are no-ops.
func (w *Writer) Flush() {
	if w.done {
		return
	}
	w.buffer.hash = w.hash
	w.buffer.inUse = true
	w.buffer.generation = w.tt.generation
	*w.slot = w.buffer
	w.done = true
}

// Abort discards the reservation. Since Reserve never mutates the shared
// slot directly (only the Writer's local buffer), Abort needs no repair
// work of its own; it just prevents a later Flush from doing anything.
func (w *Writer) Abort() {
	w.done = true
}

// Clear empties the table and resets the replacement generation.
func (tt *TransTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i] = bucket{}
	}
	tt.generation = 0
}

// Resize reallocates the table to approximately sizeMB megabytes and
// rehashes every in-use node into the new table; no stored entry is
// evicted by the reallocation itself; a node only falls out if its new
// bucket fills before it is placed.
func (tt *TransTable) Resize(sizeMB int) {
	old := tt.buckets
	tt.buckets = make([]bucket, megabytesToBuckets(sizeMB))

	for i := range old {
		for j := range old[i].entries {
			n := old[i].entries[j]
			if n.inUse {
				tt.rehash(n)
			}
		}
	}
}

// rehash places a previously-stored node into its bucket in the current
// table, preferring an empty slot and otherwise displacing the weakest
// entry by the same (generation, depth) ordering Reserve uses.
func (tt *TransTable) rehash(n node) {
	b := tt.findBucket(n.hash)

	for i := range b.entries {
		if !b.entries[i].inUse {
			b.entries[i] = n
			return
		}
	}

	worst := &b.entries[0]
	for i := 1; i < len(b.entries); i++ {
		if b.entries[i].isWorseThan(worst) {
			worst = &b.entries[i]
		}
	}
	*worst = n
}

// CountFull returns the number of in-use slots.
func (tt *TransTable) CountFull() int {
	n := 0
	for i := range tt.buckets {
		for j := range tt.buckets[i].entries {
			if tt.buckets[i].entries[j].inUse {
				n++
			}
		}
	}
	return n
}

// CountEmpty returns the number of unused slots.
func (tt *TransTable) CountEmpty() int {
	return len(tt.buckets)*bucketSize - tt.CountFull()
}

// HashFull returns the permille of the table currently in use, sampling the
// first 1000 slots (or fewer if the table is smaller).
func (tt *TransTable) HashFull() int {
	total := len(tt.buckets) * bucketSize
	sample := 250
	if sample > len(tt.buckets) {
		sample = len(tt.buckets)
	}
	if sample == 0 {
		return 0
	}
	used := 0
	checked := 0
	for i := 0; i < sample; i++ {
		for j := range tt.buckets[i].entries {
			checked++
			if tt.buckets[i].entries[j].inUse {
				used++
			}
		}
	}
	if checked == 0 || total == 0 {
		return 0
	}
	return (used * 1000) / checked
}

// AdjustScoreFromTT converts a mate score stored relative to the table root
// into one relative to the current ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a mate score relative to the current ply into one
// relative to the table root, so it remains meaningful when retrieved at a
// different ply later.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
