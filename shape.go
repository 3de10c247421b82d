package synpatico

import "sort"

// Shape is the structure-only description of a value §3.2 defines: no
// leaf carries a value, only its kind. It is the thing a StructureId
// names and a Packet's values slice is replayed against.
type Shape struct {
	kindTag shapeKind

	leafKind Kind // valid iff kindTag == shapeLeaf

	// arrayItems is positional, one Shape per index (§3.2: "Array { items:
	// [Shape] } # positional; length is part of the shape") — an array's
	// length and each slot's shape are exactly this slice's length and
	// contents, not a single shared element shape.
	arrayItems []Shape // valid iff kindTag == shapeArray

	objectFields []ShapeField // valid iff kindTag == shapeObject, canonical key order
}

type shapeKind int

const (
	shapeLeaf shapeKind = iota
	shapeArray
	shapeObject
)

// ShapeField is one canonically-ordered field of an object Shape.
type ShapeField struct {
	Key   string
	Shape Shape
}

func leafShape(k Kind) Shape { return Shape{kindTag: shapeLeaf, leafKind: k} }

// IsLeaf, IsArray, IsObject classify a Shape the way Value's IsArray/IsObject do.
func (s Shape) IsLeaf() bool   { return s.kindTag == shapeLeaf }
func (s Shape) IsArray() bool  { return s.kindTag == shapeArray }
func (s Shape) IsObject() bool { return s.kindTag == shapeObject }

// LeafKind returns the leaf's kind. Only meaningful when IsLeaf is true.
func (s Shape) LeafKind() Kind { return s.leafKind }

// ArrayItems returns the per-position shapes of an array Shape, in index
// order. Its length is the array's length (§3.2).
func (s Shape) ArrayItems() []Shape { return s.arrayItems }

// Fields returns an object Shape's fields in canonical lexicographic order.
func (s Shape) Fields() []ShapeField { return s.objectFields }

// ExtractShape walks v and produces its Shape (§4.C), guarding against the
// cycles §4.C treats as "not expected" by bounding recursion with an
// identity-visited set and a depth cap, per §7's policy for this
// component: a violation is a ShapeMismatchError, not a graceful circular
// marker (that graceful handling is the Fingerprinter's job, not this
// one's).
func ExtractShape(v Value) (Shape, error) {
	return extractShape(v, make(map[any]bool), 0, defaultMaxShapeDepth)
}

const defaultMaxShapeDepth = 256

func extractShape(v Value, visiting map[any]bool, depth, maxDepth int) (Shape, error) {
	if depth > maxDepth {
		return Shape{}, shapeMismatchf("", 0, 0, nil, "recursion exceeded max depth %d", maxDepth)
	}

	switch v.Kind {
	case KindArray:
		identity := v.arrayIdentity()
		if identity != nil {
			if visiting[identity] {
				return Shape{}, shapeMismatchf("", 0, 0, nil, "cyclic array value at depth %d", depth)
			}
			visiting[identity] = true
			defer delete(visiting, identity)
		}
		items := v.Items()
		out := make([]Shape, len(items))
		for i, item := range items {
			is, err := extractShape(item, visiting, depth+1, maxDepth)
			if err != nil {
				return Shape{}, err
			}
			out[i] = is
		}
		return Shape{kindTag: shapeArray, arrayItems: out}, nil

	case KindObject:
		identity := v.objectIdentity()
		if identity != nil {
			if visiting[identity] {
				return Shape{}, shapeMismatchf("", 0, 0, nil, "cyclic object value at depth %d", depth)
			}
			visiting[identity] = true
			defer delete(visiting, identity)
		}
		fields := sortedFields(v)
		out := make([]ShapeField, len(fields))
		for i, fl := range fields {
			fs, err := extractShape(fl.Value, visiting, depth+1, maxDepth)
			if err != nil {
				return Shape{}, err
			}
			out[i] = ShapeField{Key: fl.Key, Shape: fs}
		}
		return Shape{kindTag: shapeObject, objectFields: out}, nil

	default:
		return leafShape(v.Kind), nil
	}
}

// sortFieldsByKey orders fields lexicographically by key in place, the
// canonical ordering §3.2/§4.B.3 both rely on.
func sortFieldsByKey(fields []Field) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
}
