// Package snapshot renders an Engine's learned structure state to
// msgpack for an admin/debug endpoint — the adapted descendant of edb's
// encoding.go, which used msgpack.GetEncoder().SetSortMapKeys(true) to
// serialize a row struct into a Bolt value. That machinery had nowhere
// left to serialize *to* once the Bolt storage layer was dropped (the
// wire format is JSON/Packet, never msgpack — see DESIGN.md), so this
// package repoints it at a read-only debugging export instead: nothing
// here is ever read back in, which keeps it outside the "cross-session
// persistence of structure state" area the core package's Non-goals
// exclude.
package snapshot

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/synpatico-dev/synpatico"
)

// Engine is the msgpack-serializable mirror of an *synpatico.Engine's
// EngineStats plus every learned {endpoint, StructureId, Shape} triple.
type Engine struct {
	TakenAt   time.Time        `msgpack:"taken_at"`
	Stats     synpatico.EngineStats `msgpack:"stats"`
	Endpoints map[string]string `msgpack:"endpoints"` // endpoint -> StructureId
	Shapes    map[string]Shape  `msgpack:"shapes"`     // StructureId -> Shape
}

// Shape is the msgpack-serializable mirror of synpatico.Shape: that type
// keeps its fields private (callers walk it through IsLeaf/IsArray/
// IsObject/Fields/ArrayItems), so this package flattens it into plain
// exported fields msgpack can encode directly.
type Shape struct {
	Kind  string  `msgpack:"kind"` // "leaf" | "array" | "object"
	Leaf  string  `msgpack:"leaf,omitempty"`
	Items []Shape `msgpack:"items,omitempty"`
	Fields []ShapeField `msgpack:"fields,omitempty"`
}

type ShapeField struct {
	Key   string `msgpack:"key"`
	Shape Shape  `msgpack:"shape"`
}

func fromShape(s synpatico.Shape) Shape {
	switch {
	case s.IsLeaf():
		return Shape{Kind: "leaf", Leaf: s.LeafKind().String()}
	case s.IsArray():
		items := s.ArrayItems()
		out := make([]Shape, len(items))
		for i, it := range items {
			out[i] = fromShape(it)
		}
		return Shape{Kind: "array", Items: out}
	case s.IsObject():
		fields := s.Fields()
		out := make([]ShapeField, len(fields))
		for i, fl := range fields {
			out[i] = ShapeField{Key: fl.Key, Shape: fromShape(fl.Shape)}
		}
		return Shape{Kind: "object", Fields: out}
	default:
		return Shape{Kind: "leaf", Leaf: "unknown"}
	}
}

// Take exports engine's current stats and every {endpoint, id, shape} it
// has learned, via the accessor methods state.go exposes — it never
// reaches into Engine's private snapshot maps directly.
func Take(engine *synpatico.Engine) Engine {
	endpoints := engine.Endpoints()
	out := Engine{
		TakenAt:   time.Now(),
		Stats:     engine.Stats(),
		Endpoints: make(map[string]string, len(endpoints)),
		Shapes:    make(map[string]Shape),
	}
	for ep, id := range endpoints {
		out.Endpoints[ep] = string(id)
		if _, done := out.Shapes[string(id)]; done {
			continue
		}
		if shape, ok := engine.Shape(id); ok {
			out.Shapes[string(id)] = fromShape(shape)
		}
	}
	return out
}

// Encode marshals a snapshot to msgpack with sorted map keys, matching
// encoding.go's SetSortMapKeys(true) — deterministic byte-for-byte output
// for two snapshots of equal content, useful when diffing dumps in tests
// or tooling.
func Encode(snap Engine) ([]byte, error) {
	w := &byteSink{}
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.ResetDict(w, nil)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return w.buf, nil
}

type byteSink struct{ buf []byte }

func (w *byteSink) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
