package synpatico

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// CollisionCounter backs the optional §4.B "newIdOnCollision" mode: a
// per-signature integer that increments on every call, so repeated
// encounters of a structurally distinct-but-colliding shape get 0,1,2,…
// in call order instead of sharing one hash (§8.1.10). Off by default
// (§3.6) — an Engine only allocates one when Options.NewIDOnCollision is set.
type CollisionCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCollisionCounter() *CollisionCounter {
	return &CollisionCounter{counts: make(map[string]int)}
}

func (c *CollisionCounter) next(signature string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counts[signature]
	c.counts[signature] = n + 1
	return n
}

// Options configures an Engine — edb's db.go Options{Logf,Verbose,...}
// pattern, generalized: a plain struct passed to a constructor, never a
// package-level global or an init()-registered singleton.
type Options struct {
	// Logger receives a Debug-level trace of every shape learned, mirroring
	// edb's db.logf/slog.Debug split (db.go, table.go). The Engine logs
	// nothing else; StateConflict warnings come from negotiation.Agent's
	// own logger. Nil disables logging, same as a nil edb Options.Logf.
	Logger *slog.Logger

	// NewIDOnCollision enables the collision-counter StructureId variant
	// (§4.B, §9). Off by default.
	NewIDOnCollision bool

	// MaxRecursionDepth bounds the shape extraction Learn runs (§7). Zero
	// means defaultMaxShapeDepth. The package-level ExtractShape always
	// uses defaultMaxShapeDepth.
	MaxRecursionDepth int
}

// engineState is one immutable snapshot of everything an Engine has
// learned: the ShapeCache and EndpointToStructureId maps §3.6 defines,
// plus the KeyBit cache (the CollisionCounter lives outside it, behind its
// own mutex). Swapped in as a whole via atomic.Pointer, the way storage_mem.go
// snapshots an entire bucket set per transaction rather than locking
// individual keys — here generalized from "snapshot per write
// transaction" to "snapshot per learned shape", since there is no
// transaction boundary in an HTTP agent's request lifecycle.
type engineState struct {
	shapes    map[StructureId]Shape
	endpoints map[string]StructureId // "METHOD path" -> last-learned StructureId
	keyBits   map[string]uint64      // KeyBit cache, a pure speedup per §9 ("eliminable entirely")
}

func newEngineState() *engineState {
	return &engineState{
		shapes:    make(map[StructureId]Shape),
		endpoints: make(map[string]StructureId),
		keyBits:   make(map[string]uint64),
	}
}

// clone returns a shallow copy whose top-level maps are independent, so a
// caller can add entries without racing readers of the previous snapshot.
func (s *engineState) clone() *engineState {
	n := &engineState{
		shapes:    make(map[StructureId]Shape, len(s.shapes)+1),
		endpoints: make(map[string]StructureId, len(s.endpoints)+1),
		keyBits:   make(map[string]uint64, len(s.keyBits)+8),
	}
	for k, v := range s.shapes {
		n.shapes[k] = v
	}
	for k, v := range s.endpoints {
		n.endpoints[k] = v
	}
	for k, v := range s.keyBits {
		n.keyBits[k] = v
	}
	return n
}

// Engine is the agent/client structure state of §3.6: ShapeCache,
// EndpointToStructureId, and (as a pure cache layered over Fingerprint,
// per §9's resolution) KeyBitMap. Reads never block writers and writers
// never block readers — storage_mem.go's per-transaction bucket snapshot
// idiom, simplified here to a single atomic.Pointer swap per learned
// shape, since an HTTP agent never needs the multi-writer-transaction
// machinery a document database does.
type Engine struct {
	opt   Options
	state atomic.Pointer[engineState]

	fp *Fingerprinter

	learnedCount atomic.Int64
	onLearn      atomic.Pointer[func(StructureId, Shape)]

	collisions *CollisionCounter
}

func NewEngine(opt Options) *Engine {
	e := &Engine{opt: opt}
	e.state.Store(newEngineState())

	if opt.NewIDOnCollision {
		e.collisions = NewCollisionCounter()
	}
	e.fp = NewFingerprinter(FingerprinterOptions{
		KeyBit:           e.cachedKeyBit,
		NewIDOnCollision: opt.NewIDOnCollision,
		Collisions:       e.collisions,
	})
	return e
}

func (e *Engine) maxDepth() int {
	if e.opt.MaxRecursionDepth > 0 {
		return e.opt.MaxRecursionDepth
	}
	return defaultMaxShapeDepth
}

func (e *Engine) logger() *slog.Logger {
	if e.opt.Logger != nil {
		return e.opt.Logger
	}
	return discardLogger
}

// discardLogger is used when Options.Logger is nil — the same "logging is
// always structured, silence is just a no-op sink" stance edb takes with
// a nil Options.Logf.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// cachedKeyBit is the Fingerprinter's KeyBit function for this Engine: it
// consults the current snapshot's keyBits map before falling back to
// Hash32Uint64, and publishes any miss into a new snapshot. Because the
// map is a pure cache (§9), a race that recomputes the same entry twice
// is harmless — both computations agree.
func (e *Engine) cachedKeyBit(key string) uint64 {
	if h, ok := e.state.Load().keyBits[key]; ok {
		return h
	}
	h := Hash32Uint64(key)
	e.publish(func(n *engineState) { n.keyBits[key] = h })
	return h
}

// publish applies mutate to a clone of the current snapshot and installs
// it, retrying on a concurrent writer the way storage_mem.go's writer
// mutex serializes commits — except here via compare-and-swap instead of
// a lock, since publish never blocks.
func (e *Engine) publish(mutate func(*engineState)) {
	for {
		old := e.state.Load()
		n := old.clone()
		mutate(n)
		if e.state.CompareAndSwap(old, n) {
			return
		}
	}
}

// Learn extracts v's shape, fingerprints v, records the shape under its
// StructureId and that id as the current structure for endpoint, and
// returns the FingerprintResult and Shape (§4.B/§4.E "LEARN" step of the
// agent state machine). With NewIDOnCollision off, calling Learn twice for
// the same endpoint with a structurally identical value returns the same
// StructureId both times and rewrites the same ShapeCache entry with an
// equal shape; with it on, every call yields a new StructureId.
func (e *Engine) Learn(endpoint string, v Value) (FingerprintResult, Shape, error) {
	shape, err := extractShape(v, make(map[any]bool), 0, e.maxDepth())
	if err != nil {
		return FingerprintResult{}, Shape{}, err
	}
	fp := e.fp.Fingerprint(v)
	id := fp.Id

	e.publish(func(n *engineState) {
		n.shapes[id] = shape
		n.endpoints[endpoint] = id
	})
	e.learnedCount.Add(1)

	e.logger().Debug("synpatico: learned structure", "endpoint", endpoint, "structureId", id)
	if cb := e.onLearn.Load(); cb != nil {
		(*cb)(id, shape)
	}
	return fp, shape, nil
}

// AcceptedStructureId returns the StructureId the agent last taught the
// client for endpoint, and whether one has been learned at all.
func (e *Engine) AcceptedStructureId(endpoint string) (StructureId, bool) {
	id, ok := e.state.Load().endpoints[endpoint]
	return id, ok
}

// Endpoints returns a snapshot copy of EndpointToStructureId, for
// read-only introspection (internal/snapshot's admin/debug export).
func (e *Engine) Endpoints() map[string]StructureId {
	s := e.state.Load()
	out := make(map[string]StructureId, len(s.endpoints))
	for k, v := range s.endpoints {
		out[k] = v
	}
	return out
}

// Shape looks up a previously learned StructureId (§7 UnknownStructure /
// StateConflict both start from this lookup failing).
func (e *Engine) Shape(id StructureId) (Shape, bool) {
	s, ok := e.state.Load().shapes[id]
	return s, ok
}

// Forget discards endpoint's learned StructureId, the client-side §7
// recovery step on drift/409 ("only the specific drifted endpoint loses
// its learned entry"). The StructureId's Shape stays in ShapeCache —
// other endpoints, or a future request to this one, may still reuse it.
func (e *Engine) Forget(endpoint string) {
	e.publish(func(n *engineState) { delete(n.endpoints, endpoint) })
}

// OnLearn registers a callback invoked synchronously from Learn every
// time a (possibly repeated) structure is learned — the supplemented
// observability hook SPEC_FULL.md adds beyond the distilled spec's
// silence on introspection. Replaces any previously registered callback;
// pass nil to unregister.
func (e *Engine) OnLearn(fn func(StructureId, Shape)) {
	if fn == nil {
		e.onLearn.Store(nil)
		return
	}
	e.onLearn.Store(&fn)
}

// ResetState discards every learned shape, endpoint mapping, and cached
// KeyBit — edb's db test helper pattern of starting from a clean slate,
// generalized from "truncate a bolt bucket" to "swap in a fresh snapshot".
func (e *Engine) ResetState() {
	e.state.Store(newEngineState())
}

// EngineStats is the Engine analogue of edb's TableStats (monitoring.go):
// counters a caller can poll or log periodically, never values that must
// be read transactionally.
type EngineStats struct {
	LearnedShapes   int
	KnownEndpoints  int
	KeyBitCacheSize int
	LearnCalls      int64
}

func (e *Engine) Stats() EngineStats {
	s := e.state.Load()
	return EngineStats{
		LearnedShapes:   len(s.shapes),
		KnownEndpoints:  len(s.endpoints),
		KeyBitCacheSize: len(s.keyBits),
		LearnCalls:      e.learnedCount.Load(),
	}
}

// DumpFlags selects what Engine.Dump renders, the same bitmask idiom
// debug.go's DumpFlags uses for table/row/stats/index selection.
type DumpFlags uint64

const (
	DumpEndpoints = DumpFlags(1 << iota)
	DumpShapes
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders a human-readable snapshot of the engine's state, in
// debug.go's Tx.Dump style: a plain strings.Builder report meant for logs
// or an admin endpoint, not a wire format.
func (e *Engine) Dump(f DumpFlags) string {
	s := e.state.Load()
	var w strings.Builder

	if f.Contains(DumpStats) {
		st := e.Stats()
		fmt.Fprintf(&w, "synpatico.stats: shapes=%d endpoints=%d keybits=%d learn_calls=%d\n",
			st.LearnedShapes, st.KnownEndpoints, st.KeyBitCacheSize, st.LearnCalls)
	}

	if f.Contains(DumpEndpoints) {
		endpoints := make([]string, 0, len(s.endpoints))
		for ep := range s.endpoints {
			endpoints = append(endpoints, ep)
		}
		sort.Strings(endpoints)
		for _, ep := range endpoints {
			w.WriteString(ep)
			w.WriteString(" => ")
			w.WriteString(string(s.endpoints[ep]))
			w.WriteByte('\n')
		}
	}

	if f.Contains(DumpShapes) {
		ids := make([]StructureId, 0, len(s.shapes))
		for id := range s.shapes {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			w.WriteString(string(id))
			w.WriteString(": ")
			w.WriteString(describeShape(s.shapes[id]))
			w.WriteByte('\n')
		}
	}

	return w.String()
}

func describeShape(s Shape) string {
	switch {
	case s.IsLeaf():
		return s.LeafKind().String()
	case s.IsArray():
		items := s.ArrayItems()
		var b strings.Builder
		b.WriteByte('[')
		for i, is := range items {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(describeShape(is))
		}
		b.WriteByte(']')
		return b.String()
	case s.IsObject():
		var b strings.Builder
		b.WriteByte('{')
		for i, fl := range s.Fields() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(fl.Key)
			b.WriteByte(':')
			b.WriteString(describeShape(fl.Shape))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return "?"
	}
}
