package synpatico

import (
	"strconv"
	"strings"
)

// StructureId is the textual, per-level-hash identifier §3.4 defines.
type StructureId string

func (id StructureId) String() string { return string(id) }

// FingerprintResult is everything the Structural Fingerprinter (4.B)
// produces for one value.
type FingerprintResult struct {
	Id             StructureId
	Levels         int
	CollisionCount int
}

// FingerprinterOptions configures a Fingerprinter — an edb-style Options
// struct (db.go's Options{Logf,...}), not a functional-options builder.
type FingerprinterOptions struct {
	// KeyBit overrides how a key string is turned into its 32-bit
	// contribution (§4.B.5). Defaults to Hash32Uint64, which is itself
	// stateless — set this only to plug in a caching layer (state.go's
	// Engine does, via its KeyBitMap) or a test double.
	KeyBit func(key string) uint64

	// NewIDOnCollision enables §4.B's collision-counter mode: off by
	// default per §3.6 ("optional, off by default").
	NewIDOnCollision bool

	// Collisions backs NewIDOnCollision. Required (non-nil) when
	// NewIDOnCollision is true.
	Collisions *CollisionCounter
}

// Fingerprinter is the Structural Fingerprinter (4.B), bound to a
// particular KeyBit strategy and collision-mode configuration.
type Fingerprinter struct {
	keyBit           func(string) uint64
	newIDOnCollision bool
	collisions       *CollisionCounter
}

func NewFingerprinter(opt FingerprinterOptions) *Fingerprinter {
	kb := opt.KeyBit
	if kb == nil {
		kb = Hash32Uint64
	}
	if opt.NewIDOnCollision && opt.Collisions == nil {
		opt.Collisions = NewCollisionCounter()
	}
	return &Fingerprinter{
		keyBit:           kb,
		newIDOnCollision: opt.NewIDOnCollision,
		collisions:       opt.Collisions,
	}
}

// Hash32Uint64 is Hash32Uint widened to uint64, the default KeyBit
// strategy: stateless, so two Fingerprinters on two machines that have
// never communicated agree on every KeyBit without coordination (§4.B.5).
func Hash32Uint64(key string) uint64 {
	return uint64(Hash32Uint([]byte(key)))
}

var defaultFingerprinter = NewFingerprinter(FingerprinterOptions{})

// Fingerprint computes the StructureId of v using the default, stateless,
// collision-free Fingerprinter. Most callers want this; use
// NewFingerprinter directly only to enable collision mode or a cached
// KeyBit function.
func Fingerprint(v Value) StructureId {
	return defaultFingerprinter.Fingerprint(v).Id
}

const (
	arrayIndexSigil = "\x00[" // reserved sigil (§9 open question) so an array's positional
	// key bits never collide with an object field literally named "[0]", "[1]", etc.
)

func arrayIndexKey(i int) string {
	return arrayIndexSigil + strconv.Itoa(i) + "]"
}

// Fingerprint runs the 4.B algorithm against v.
func (f *Fingerprinter) Fingerprint(v Value) FingerprintResult {
	switch v.Kind {
	case KindObject:
		if v.Len() == 0 {
			return FingerprintResult{Id: "{}", Levels: 0}
		}
	case KindArray:
		if v.Len() == 0 {
			return FingerprintResult{Id: "[]", Levels: 0}
		}
	default:
		// "primitive non-object" — includes rich scalars, which carry
		// their own type bit per §4.B.3's "objects, arrays, and rich
		// scalars each have their own bit".
		t := hexU64(v.Kind.typeBit())
		return FingerprintResult{Id: StructureId("L0:" + t + "-L1:" + t), Levels: 1}
	}

	t := &fingerprintTraversal{
		keyBit:  f.keyBit,
		visited: make(map[any]string),
		levels:  make(map[int]uint64),
	}
	t.visit(v, 0, nil)

	n := t.maxDepth
	h0 := t.levelOrInit(0)

	var sig strings.Builder
	for d := 1; d <= n; d++ {
		if d > 1 {
			sig.WriteByte('-')
		}
		sig.WriteString("L")
		sig.WriteString(strconv.Itoa(d))
		sig.WriteByte(':')
		sig.WriteString(hexU64(t.levelOrInit(d)))
	}
	signature := sig.String()

	collisionCount := 0
	if f.newIDOnCollision {
		collisionCount = f.collisions.next(signature)
		h0 = uint64(collisionCount)
	}

	var id strings.Builder
	id.WriteString("L0:")
	id.WriteString(hexU64(h0))
	if signature != "" {
		id.WriteByte('-')
		id.WriteString(signature)
	}

	return FingerprintResult{
		Id:             StructureId(id.String()),
		Levels:         n + 1,
		CollisionCount: collisionCount,
	}
}

func hexU64(v uint64) string {
	return strconv.FormatUint(v, 16)
}

// fingerprintTraversal holds the per-call mutable state of one 4.B run:
// the per-level accumulators and the cycle-visited map. It is discarded
// after one Fingerprint call — nothing here is shared across calls, which
// is what makes two independent Fingerprinters (client and agent,
// §4.B's "computable independently on two machines") agree.
type fingerprintTraversal struct {
	keyBit   func(string) uint64
	visited  map[any]string // node identity -> path-signature (§4.B.4)
	levels   map[int]uint64
	maxDepth int
}

func (t *fingerprintTraversal) levelOrInit(d int) uint64 {
	if h, ok := t.levels[d]; ok {
		return h
	}
	h := uint64(1) << uint(d%64)
	t.levels[d] = h
	return h
}

func (t *fingerprintTraversal) add(d int, delta uint64) {
	t.levels[d] = t.levelOrInit(d) + delta
	if d > t.maxDepth {
		t.maxDepth = d
	}
}

func (t *fingerprintTraversal) visit(v Value, depth int, path []string) {
	switch v.Kind {
	case KindObject:
		identity := v.objectIdentity()
		if identity != nil {
			if sig, seen := t.visited[identity]; seen {
				t.add(depth, t.keyBit("circular:"+sig))
				return
			}
			fields := sortedFields(v)
			keys := make([]string, len(fields))
			for i, fl := range fields {
				keys[i] = fl.Key
			}
			t.visited[identity] = pathSignature(path, strings.Join(keys, ","))
		}
		t.add(depth, v.Kind.typeBit())
		for i, fl := range sortedFields(v) {
			m := uint64(i + 1)
			t.add(depth, t.keyBit(fl.Key)*m+fl.Value.Kind.typeBit()*m)
			t.visit(fl.Value, depth+1, append(path, fl.Key))
		}

	case KindArray:
		items := v.Items()
		identity := v.arrayIdentity()
		if identity != nil {
			if sig, seen := t.visited[identity]; seen {
				t.add(depth, t.keyBit("circular:"+sig))
				return
			}
			t.visited[identity] = pathSignature(path, "length:"+strconv.Itoa(len(items)))
		}
		t.add(depth, v.Kind.typeBit())
		t.add(depth, t.keyBit("length:"+strconv.Itoa(len(items))))
		for i, item := range items {
			m := uint64(i + 1)
			t.add(depth, t.keyBit(arrayIndexKey(i))*m+item.Kind.typeBit()*m)
			t.visit(item, depth+1, append(path, "["+strconv.Itoa(i)+"]"))
		}

	default:
		// Leaves (including rich scalars) contribute only through the
		// parent's KeyBit(key)*m + T[child_kind]*m term added above; they
		// have no accumulator of their own (§4.B.3).
	}
}

func pathSignature(path []string, tail string) string {
	return strings.Join(path, ".") + "." + tail
}

// sortedFields returns v's object fields in the canonical lexicographic
// order §3.2/§4.B.3 require ("iterate keys in lexicographic order").
func sortedFields(v Value) []Field {
	fields := append([]Field(nil), v.Fields()...)
	sortFieldsByKey(fields)
	return fields
}
