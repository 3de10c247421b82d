package synpatico

// Kind tags the category of a Value or a Shape leaf. It is the Go
// analogue of the donor's kvo.ValueKind (kvo/kind.go) — a small, closed
// enum distinguishing what's stored — generalized from kvo's
// {Word,Map,ScalarData,PIIData} split to the value domain §3.1 defines.
type Kind int

const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindNumber
	KindString
	KindBigInt
	KindSymbol
	KindObject
	KindArray
	// KindSpecialValue marks a rich scalar (Date/Map/Set/Error, §3.1): it
	// is opaque to Shape (always Leaf{special_value}, §3.2) but carries
	// its payload in Value for the envelope (richtype.go) to see.
	KindSpecialValue
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBigInt:
		return "bigint"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindSpecialValue:
		return "special_value"
	default:
		return "unknown"
	}
}

// typeBit is the fixed 32-bit constant §4.B.6 requires for each kind: a
// documented implementation constant mixed into the per-level accumulator
// during fingerprinting. Values are arbitrary but fixed — changing one
// changes every StructureId ever produced, so they are pinned here. The
// tests in fingerprint_test.go compute their expectations from typeBit
// itself rather than from literal hex values.
func (k Kind) typeBit() uint64 {
	switch k {
	case KindNull:
		return 0x9e3779b1
	case KindUndefined:
		return 0x85ebca77
	case KindBool:
		return 0xc2b2ae3d
	case KindNumber:
		return 0x27d4eb2f
	case KindString:
		return 0x165667b1
	case KindBigInt:
		return 0xd3a2646c
	case KindSymbol:
		return 0xfd7046c5
	case KindObject:
		return 0xb55a4f09
	case KindArray:
		return 0x1b873593
	case KindSpecialValue:
		return 0x94d049bb
	default:
		panic("synpatico: unknown kind")
	}
}
