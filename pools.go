package synpatico

import "sync"

// bytesBuilderPool reuses the scratch buffer EncodeToJSON marshals
// through, the same shape as edb's keyBytesPool/valueBytesPool
// sized for Bolt keys/values — here sized for JSON response bodies instead.
var bytesBuilderPool = &sync.Pool{
	New: func() any {
		return &bytesBuilder{Buf: make([]byte, 0, 4096)}
	},
}

func getBytesBuilder() *bytesBuilder {
	bb := bytesBuilderPool.Get().(*bytesBuilder)
	bb.Reset()
	return bb
}

func putBytesBuilder(bb *bytesBuilder) {
	bytesBuilderPool.Put(bb)
}

// valueSlicePool backs Linearize's traversal accumulator: one flat
// []Value per call, its backing array reused across calls instead of
// growing from zero capacity every time a packet is built for a hot
// endpoint.
var valueSlicePool = &sync.Pool{
	New: func() any {
		return make([]Value, 0, 64)
	},
}

func getValueSlice() []Value {
	return valueSlicePool.Get().([]Value)[:0]
}

func putValueSlice(s []Value) {
	valueSlicePool.Put(s)
}
