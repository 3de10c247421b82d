/*
Package synpatico implements the protocol engine behind a wire-payload
optimizer for JSON-over-HTTP APIs: a reverse-proxy agent and an
HTTP-client transport cooperatively replace repeated JSON response bodies
with a compact values-only packet, keyed by a structural fingerprint both
sides derive independently from the first, unoptimized response.

We implement:

1. A Structural Fingerprinter, mapping any JSON-shaped value — including
circular references and a fixed set of "rich" scalar types — to a stable
StructureId computable on two machines that have never communicated.

2. A Shape Extractor, deriving a structure-only tree from a value, used
to serialize and deserialize values-only packets.

3. A Rich-type Envelope and Value Linearizer, round-tripping Date, Map,
Set, and Error-like values through a flat, canonically-ordered sequence.

4. An Engine holding the per-process structure-state caches — learned
shapes, endpoint-to-structure mappings, and the key-hash cache — that the
negotiation package's agent and client wrap with HTTP.

# Technical details

**StructureId.** A textual concatenation of per-depth-level hash parts,
computed by walking a value depth-first with one 64-bit accumulator per
level. Two structurally equivalent values — same key sets, same array
lengths, same leaf kinds, regardless of key order or leaf content — yield
the same id.

**Shape.** A recursive tree describing structure, not values: a Leaf
names a kind, an Array holds one Shape per index, an Object holds its
fields in lexicographic key order. A Shape never needs to be recomputed
for a given StructureId — it is cached for the id's lifetime.

**Packet.** The wire form of an optimized response: a flat sequence of
leaf values in the same canonical order the Shape implies, plus the
StructureId that tells the receiver which Shape to replay them against.
*/
package synpatico
