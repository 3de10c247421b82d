package synpatico

// Linearize walks v in the same canonical order the Fingerprinter and
// Shape Extractor use — sorted keys for a record, index order for an
// array — and emits its leaves as a flat sequence (§4.E). A rich scalar
// occupies exactly one slot: its internals are never recursed into here,
// only wrapped whole by the envelope (richtype.go) at encode time.
func Linearize(v Value) []Value {
	out := getValueSlice()
	linearizeInto(v, &out)
	result := append([]Value(nil), out...)
	putValueSlice(out)
	return result
}

func linearizeInto(v Value, out *[]Value) {
	switch v.Kind {
	case KindArray:
		for _, item := range v.Items() {
			linearizeInto(item, out)
		}
	case KindObject:
		for _, fl := range sortedFields(v) {
			linearizeInto(fl.Value, out)
		}
	default:
		*out = append(*out, v)
	}
}

// Reconstruct is Linearize's inverse given the Shape that produced the
// original traversal order (§4.E): it walks shape, consuming one value
// per Leaf and recursing into Array/Object in the same canonical order.
// It returns a ShapeMismatchError (§7) if values is shorter than shape
// requires; trailing unconsumed values are not an error — the decoder
// performs no size validation beyond index bounds, per §4.F.
func Reconstruct(values []Value, shape Shape) (Value, error) {
	r := &reconstructor{values: values}
	v, err := r.walk(shape)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

type reconstructor struct {
	values []Value
	pos    int
}

func (r *reconstructor) walk(shape Shape) (Value, error) {
	switch {
	case shape.IsLeaf():
		if r.pos >= len(r.values) {
			return Value{}, shapeMismatchf("", len(r.values)+1, len(r.values), nil,
				"ran out of values at position %d", r.pos)
		}
		v := r.values[r.pos]
		r.pos++
		return v, nil

	case shape.IsArray():
		itemShapes := shape.ArrayItems()
		items := make([]Value, len(itemShapes))
		for i, is := range itemShapes {
			v, err := r.walk(is)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Array(items...), nil

	case shape.IsObject():
		fields := shape.Fields()
		out := make([]Field, len(fields))
		for i, fl := range fields {
			v, err := r.walk(fl.Shape)
			if err != nil {
				return Value{}, err
			}
			out[i] = Field{Key: fl.Key, Value: v}
		}
		return Object(out...), nil

	default:
		return Value{}, shapeMismatchf("", 0, 0, nil, "unrecognized shape tag")
	}
}
