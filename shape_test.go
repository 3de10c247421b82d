package synpatico

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractShape_Leaf(t *testing.T) {
	s, err := ExtractShape(Number(42))
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	if !s.IsLeaf() || s.LeafKind() != KindNumber {
		t.Fatalf("ExtractShape(Number(42)) = %+v, want leaf KindNumber", s)
	}
}

func TestExtractShape_EmptyArray(t *testing.T) {
	s, err := ExtractShape(Array())
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	if !s.IsArray() || len(s.ArrayItems()) != 0 {
		t.Fatalf("ExtractShape(Array()) = %+v, want empty array shape", s)
	}
}

func TestExtractShape_ArrayIsPositional(t *testing.T) {
	// §3.2: items is positional, one Shape per index — a string followed by
	// a number must produce two distinct per-slot leaf shapes, not one
	// shared shape.
	v := Array(String("a"), Number(1))
	s, err := ExtractShape(v)
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	items := s.ArrayItems()
	if len(items) != 2 {
		t.Fatalf("ArrayItems() len = %d, want 2", len(items))
	}
	if items[0].LeafKind() != KindString {
		t.Fatalf("ArrayItems()[0].LeafKind() = %v, want KindString", items[0].LeafKind())
	}
	if items[1].LeafKind() != KindNumber {
		t.Fatalf("ArrayItems()[1].LeafKind() = %v, want KindNumber", items[1].LeafKind())
	}
}

func TestExtractShape_ArrayLengthIsPartOfShape(t *testing.T) {
	short, err := ExtractShape(Array(Number(1)))
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	long, err := ExtractShape(Array(Number(1), Number(2)))
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	if len(short.ArrayItems()) == len(long.ArrayItems()) {
		t.Fatalf("arrays of different length produced ArrayItems() of the same length")
	}
}

func TestExtractShape_ObjectFieldsAreLexicographic(t *testing.T) {
	v := Object(
		Field{Key: "zebra", Value: Number(1)},
		Field{Key: "apple", Value: String("x")},
		Field{Key: "mango", Value: Bool(true)},
	)
	s, err := ExtractShape(v)
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	fields := s.Fields()
	if len(fields) != 3 {
		t.Fatalf("Fields() len = %d, want 3", len(fields))
	}
	gotKeys := []string{fields[0].Key, fields[1].Key, fields[2].Key}
	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(gotKeys, want) {
		t.Fatalf("Fields() key order = %v, want %v", gotKeys, want)
	}
}

func TestExtractShape_KeyOrderInsensitive(t *testing.T) {
	a := Object(Field{Key: "a", Value: Number(1)}, Field{Key: "b", Value: Number(2)})
	b := Object(Field{Key: "b", Value: Number(2)}, Field{Key: "a", Value: Number(1)})

	sa, err := ExtractShape(a)
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	sb, err := ExtractShape(b)
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	if !reflect.DeepEqual(sa.Fields(), sb.Fields()) {
		t.Fatalf("object field order affected the extracted Shape: %+v vs %+v", sa.Fields(), sb.Fields())
	}
}

func TestExtractShape_Nested(t *testing.T) {
	v := Object(Field{Key: "items", Value: Array(
		Object(Field{Key: "id", Value: Number(1)}),
	)})
	s, err := ExtractShape(v)
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	fields := s.Fields()
	if len(fields) != 1 || fields[0].Key != "items" {
		t.Fatalf("Fields() = %+v", fields)
	}
	itemsShape := fields[0].Shape
	if !itemsShape.IsArray() || len(itemsShape.ArrayItems()) != 1 {
		t.Fatalf("items field shape = %+v, want single-element array", itemsShape)
	}
	elemShape := itemsShape.ArrayItems()[0]
	if !elemShape.IsObject() || len(elemShape.Fields()) != 1 || elemShape.Fields()[0].Key != "id" {
		t.Fatalf("array element shape = %+v", elemShape)
	}
}

func TestExtractShape_CyclicArrayIsShapeMismatchError(t *testing.T) {
	a := Array(Null())
	a.SetItem(0, a)

	_, err := ExtractShape(a)
	if err == nil {
		t.Fatalf("ExtractShape on a self-referencing array returned nil error, want ShapeMismatchError")
	}
	var smErr *ShapeMismatchError
	if !errors.As(err, &smErr) {
		t.Fatalf("ExtractShape error = %v (%T), want *ShapeMismatchError", err, err)
	}
}

func TestExtractShape_CyclicObjectIsShapeMismatchError(t *testing.T) {
	o := Object(Field{Key: "self", Value: Null()})
	o.SetField(0, Field{Key: "self", Value: o})

	_, err := ExtractShape(o)
	if err == nil {
		t.Fatalf("ExtractShape on a self-referencing object returned nil error, want ShapeMismatchError")
	}
	var smErr *ShapeMismatchError
	if !errors.As(err, &smErr) {
		t.Fatalf("ExtractShape error = %v (%T), want *ShapeMismatchError", err, err)
	}
}

func TestExtractShape_SpecialValueIsOpaqueLeaf(t *testing.T) {
	v := MapValue(MapEntry{Key: String("k"), Value: Number(1)})
	s, err := ExtractShape(v)
	if err != nil {
		t.Fatalf("ExtractShape: %v", err)
	}
	if !s.IsLeaf() || s.LeafKind() != KindSpecialValue {
		t.Fatalf("ExtractShape(rich map) = %+v, want opaque leaf KindSpecialValue", s)
	}
}

func TestSortFieldsByKey(t *testing.T) {
	fields := []Field{
		{Key: "c", Value: Null()},
		{Key: "a", Value: Null()},
		{Key: "b", Value: Null()},
	}
	sortFieldsByKey(fields)
	got := []string{fields[0].Key, fields[1].Key, fields[2].Key}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sortFieldsByKey order = %v, want %v", got, want)
	}
}
