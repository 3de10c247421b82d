package synpatico

import "testing"

func TestFingerprint_EmptyObject(t *testing.T) {
	if got := Fingerprint(Object()); got != "{}" {
		t.Fatalf("Fingerprint(Object()) = %q, want \"{}\"", got)
	}
}

func TestFingerprint_EmptyArray(t *testing.T) {
	if got := Fingerprint(Array()); got != "[]" {
		t.Fatalf("Fingerprint(Array()) = %q, want \"[]\"", got)
	}
}

func TestFingerprint_PrimitiveRoot(t *testing.T) {
	got := Fingerprint(Number(1))
	want := StructureId("L0:" + hexU64(KindNumber.typeBit()) + "-L1:" + hexU64(KindNumber.typeBit()))
	if got != want {
		t.Fatalf("Fingerprint(Number(1)) = %q, want %q", got, want)
	}
}

func TestFingerprint_PrimitiveRootVariesByKind(t *testing.T) {
	if Fingerprint(Number(1)) == Fingerprint(String("x")) {
		t.Fatalf("Fingerprint gave the same StructureId for a number root and a string root")
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	v := Object(
		Field{Key: "name", Value: String("a")},
		Field{Key: "age", Value: Number(1)},
	)
	a := Fingerprint(v)
	b := Fingerprint(v)
	if a != b {
		t.Fatalf("Fingerprint not deterministic across calls: %q != %q", a, b)
	}
}

func TestFingerprint_StructuralEquivalenceAcrossValues(t *testing.T) {
	a := Object(Field{Key: "name", Value: String("alice")}, Field{Key: "age", Value: Number(30)})
	b := Object(Field{Key: "name", Value: String("bob")}, Field{Key: "age", Value: Number(99)})
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("two objects with the same field names/kinds produced different StructureIds: %q != %q", Fingerprint(a), Fingerprint(b))
	}
}

func TestFingerprint_KeyOrderInsensitive(t *testing.T) {
	a := Object(Field{Key: "name", Value: String("x")}, Field{Key: "age", Value: Number(1)})
	b := Object(Field{Key: "age", Value: Number(1)}, Field{Key: "name", Value: String("x")})
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("insertion order affected StructureId: %q != %q", Fingerprint(a), Fingerprint(b))
	}
}

func TestFingerprint_FieldSetAffectsId(t *testing.T) {
	a := Object(Field{Key: "name", Value: String("x")})
	b := Object(Field{Key: "name", Value: String("x")}, Field{Key: "age", Value: Number(1)})
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("adding a field did not change the StructureId")
	}
}

func TestFingerprint_FieldKindAffectsId(t *testing.T) {
	a := Object(Field{Key: "v", Value: String("x")})
	b := Object(Field{Key: "v", Value: Number(1)})
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("changing a field's kind did not change the StructureId")
	}
}

func TestFingerprint_ArrayOrderSensitive(t *testing.T) {
	a := Array(String("x"), Number(1))
	b := Array(Number(1), String("x"))
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("reordering array elements of different kinds did not change the StructureId")
	}
}

func TestFingerprint_ArrayLengthAffectsId(t *testing.T) {
	a := Array(Number(1))
	b := Array(Number(1), Number(2))
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("array length did not affect the StructureId")
	}
}

func TestFingerprint_NestedStructuresDistinguished(t *testing.T) {
	a := Object(Field{Key: "items", Value: Array(Number(1))})
	b := Object(Field{Key: "items", Value: Array(String("x"))})
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("nested array element kind did not affect the StructureId")
	}
}

func TestFingerprint_CyclicArrayDoesNotPanicOrHang(t *testing.T) {
	a := Array(Null())
	a.SetItem(0, a)
	// Just must return without panicking or looping forever; §4.B.4 defines
	// cycle handling as part of the algorithm, so this is a correctness
	// requirement, not merely a safety one.
	_ = Fingerprint(a)
}

func TestFingerprint_CyclicObjectSameTopologyMatches(t *testing.T) {
	a := Object(Field{Key: "self", Value: Null()})
	a.SetField(0, Field{Key: "self", Value: a})

	b := Object(Field{Key: "self", Value: Null()})
	b.SetField(0, Field{Key: "self", Value: b})

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("two self-referencing objects of the same topology produced different StructureIds: %q != %q", Fingerprint(a), Fingerprint(b))
	}
}

func TestFingerprint_CyclicVsAcyclicDiffer(t *testing.T) {
	cyclic := Object(Field{Key: "self", Value: Null()})
	cyclic.SetField(0, Field{Key: "self", Value: cyclic})

	acyclic := Object(Field{Key: "self", Value: Null()})

	if Fingerprint(cyclic) == Fingerprint(acyclic) {
		t.Fatalf("a cyclic object and its acyclic counterpart produced the same StructureId")
	}
}

func TestFingerprinter_NewIDOnCollision(t *testing.T) {
	counter := NewCollisionCounter()
	fp := NewFingerprinter(FingerprinterOptions{NewIDOnCollision: true, Collisions: counter})

	v := Object(Field{Key: "name", Value: String("x")})

	first := fp.Fingerprint(v)
	if first.CollisionCount != 0 {
		t.Fatalf("first Fingerprint of a never-seen shape had CollisionCount = %d, want 0", first.CollisionCount)
	}

	second := fp.Fingerprint(v)
	if second.CollisionCount != 1 {
		t.Fatalf("second Fingerprint of the same shape had CollisionCount = %d, want 1", second.CollisionCount)
	}

	if first.Id == second.Id {
		t.Fatalf("NewIDOnCollision mode produced the same Id twice for repeated learning of one shape: %q", first.Id)
	}
}

func TestFingerprinter_NewIDOnCollision_DistinctShapesDoNotShareCounter(t *testing.T) {
	counter := NewCollisionCounter()
	fp := NewFingerprinter(FingerprinterOptions{NewIDOnCollision: true, Collisions: counter})

	a := Object(Field{Key: "name", Value: String("x")})
	b := Object(Field{Key: "age", Value: Number(1)})

	ra := fp.Fingerprint(a)
	rb := fp.Fingerprint(b)
	if ra.CollisionCount != 0 || rb.CollisionCount != 0 {
		t.Fatalf("two distinct never-before-seen shapes got nonzero CollisionCount: %d, %d", ra.CollisionCount, rb.CollisionCount)
	}
}

func TestFingerprinter_CustomKeyBit(t *testing.T) {
	calls := 0
	fp := NewFingerprinter(FingerprinterOptions{
		KeyBit: func(key string) uint64 {
			calls++
			return Hash32Uint64(key)
		},
	})
	fp.Fingerprint(Object(Field{Key: "a", Value: Number(1)}))
	if calls == 0 {
		t.Fatalf("custom KeyBit function was never invoked")
	}
}

func TestFingerprint_LevelsReflectsDepth(t *testing.T) {
	shallow := defaultFingerprinter.Fingerprint(Object(Field{Key: "a", Value: Number(1)}))
	deep := defaultFingerprinter.Fingerprint(Object(Field{Key: "a", Value: Object(Field{Key: "b", Value: Number(1)})}))
	if deep.Levels <= shallow.Levels {
		t.Fatalf("nesting did not increase Levels: shallow=%d deep=%d", shallow.Levels, deep.Levels)
	}
}

func TestArrayIndexKey_DoesNotCollideWithLiteralKeys(t *testing.T) {
	if arrayIndexKey(0) == "[0]" {
		t.Fatalf("arrayIndexKey(0) collides with the literal object field key \"[0]\"")
	}
}
