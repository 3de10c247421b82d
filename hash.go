package synpatico

import (
	"hash/fnv"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash64 is the deterministic 64-bit non-cryptographic digest component A
// requires: pure, stateless, defined on the empty input, and with avalanche
// behavior on a single-bit input change. Backed by xxhash — promoted here
// from an indirect edb dependency (edb/journal pulls it in for segment
// checksums) to synpatico's direct, primary hash primitive. Grounded
// further by other_examples/sevenDatabase-SevenDB's canonical.go, which
// hashes a sorted-key canonical byte line with xxhash.Sum64 — exactly the
// "sort keys, then hash the bytes" shape §4.B's KeyBit needs.
func Hash64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Hash32 folds Hash64 into the lowercase-hex, leading-zeros-omitted string
// §4.A mandates. It is the flavor the fingerprinter (fingerprint.go) uses
// for KeyBit — the "only one is used by the fingerprinter to remain
// reproducible" flavor §4.A calls for.
func Hash32(data []byte) string {
	return hex32(foldTo32(Hash64(data)))
}

// Hash32Uint returns the same 32-bit value Hash32 renders to hex, for
// callers (fingerprint.go) that want the integer to mix into an
// accumulator rather than a string to display.
func Hash32Uint(data []byte) uint32 {
	return foldTo32(Hash64(data))
}

// Hash32Alt is the secondary 32-bit flavor §4.A allows as a
// caller-selectable alternative with a different mixing schedule. It is
// never used internally by the fingerprinter (that would break
// reproducibility across the one canonical flavor, per §4.A) — it exists
// for callers who want a second, independently-seeded digest, e.g. to
// build a Bloom-style filter over known endpoints without correlating
// false-positive rates with the fingerprinter's own hash. Backed by
// FNV-1a (stdlib hash/fnv): unlike the primary flavor, this one is
// required by spec to use a *different* mixing schedule, and no second
// non-cryptographic hash library appears anywhere in the retrieval pack to
// ground a third-party alternative against, so the stdlib's own
// non-cryptographic hash implementation is the idiomatic choice here.
func Hash32Alt(data []byte) string {
	h := fnv.New32a()
	h.Write(data) //nolint:errcheck // hash.Hash.Write never fails
	return hex32(h.Sum32())
}

func foldTo32(v uint64) uint32 {
	return uint32(v) ^ uint32(v>>32)
}

func hex32(v uint32) string {
	return strconv.FormatUint(uint64(v), 16)
}
