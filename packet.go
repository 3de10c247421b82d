package synpatico

import "encoding/json"

// PacketType is the sole value §3.5/§6.2 defines for Packet.Type.
const PacketType = "values-only"

// PacketMetadata carries the Fingerprinter's own diagnostics alongside a
// Packet, per §3.5's `metadata: { collisionCount, levels }`.
type PacketMetadata struct {
	CollisionCount int `json:"collisionCount"`
	Levels         int `json:"levels"`
}

// Packet is the wire form of a values-only response (§3.5, §6.2). Its
// JSON tags are part of the protocol surface, not an implementation
// detail: readers on the other side are other synpatico processes, not
// Go code, so field names and casing are pinned exactly as §6.2 spells
// them.
type Packet struct {
	Type        string         `json:"type"`
	StructureId StructureId    `json:"structureId"`
	Values      []json.RawMessage `json:"values"`
	Metadata    PacketMetadata `json:"metadata"`
}

// Encode runs (4.E)+(4.D) and composes the result into a Packet (§4.F
// step 1–3): linearize v in canonical order, wrap each leaf in its §4.D
// envelope, and attach the Fingerprinter's own level/collision counts.
func Encode(v Value, knownId StructureId, fp FingerprintResult) (*Packet, error) {
	leaves := Linearize(v)
	values := make([]json.RawMessage, len(leaves))
	for i, leaf := range leaves {
		jv, err := valueToJSON(leaf)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(jv)
		if err != nil {
			return nil, dataErrf(nil, err, "packet: marshaling value %d", i)
		}
		values[i] = raw
	}
	return &Packet{
		Type:        PacketType,
		StructureId: knownId,
		Values:      values,
		Metadata: PacketMetadata{
			CollisionCount: fp.CollisionCount,
			Levels:         fp.Levels,
		},
	}, nil
}

// Decode runs (4.F) steps 1–3 in reverse: unwrap each packet value's §4.D
// envelope, then reconstruct the resulting flat sequence against shape.
// ShapeMismatch (§7) surfaces here when the packet's value count is
// inconsistent with shape.
func Decode(p *Packet, shape Shape) (Value, error) {
	leaves := make([]Value, len(p.Values))
	for i, raw := range p.Values {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return Value{}, dataErrf(raw, err, "packet: unmarshaling value %d", i)
		}
		v, err := valueFromJSON(decoded)
		if err != nil {
			return Value{}, err
		}
		leaves[i] = v
	}
	v, err := Reconstruct(leaves, shape)
	if err != nil {
		if sm, ok := err.(*ShapeMismatchError); ok {
			sm.StructureId = p.StructureId
		}
		return Value{}, err
	}
	return v, nil
}

// EncodeIfSmaller is the §4.F "size safety check": it runs Encode, then
// compares the packet's own marshaled length against originalJSON's, and
// returns (nil, false, nil) when the packet would not be strictly
// smaller — signaling the caller to transmit originalJSON unchanged
// instead. This is the one place a byte-level length comparison belongs,
// per §4.F's explicit carve-out ("the only point where a byte-level
// comparison is appropriate").
func EncodeIfSmaller(v Value, knownId StructureId, fp FingerprintResult, originalJSON []byte) (*Packet, bool, error) {
	p, err := Encode(v, knownId, fp)
	if err != nil {
		return nil, false, err
	}
	encoded, err := json.Marshal(p)
	if err != nil {
		return nil, false, dataErrf(nil, err, "packet: marshaling for size check")
	}
	if len(encoded) >= len(originalJSON) {
		return nil, false, nil
	}
	return p, true, nil
}

// EncodeToJSON marshals a Value directly to its standard (unoptimized)
// JSON body, applying the §4.D envelope wherever a rich scalar appears —
// the fallback path used whenever ENCODE? (§4.G) decides not to optimize.
func EncodeToJSON(v Value) ([]byte, error) {
	jv, err := valueToJSON(v)
	if err != nil {
		return nil, err
	}
	bb := getBytesBuilder()
	defer putBytesBuilder(bb)
	if err := json.NewEncoder(bb).Encode(jv); err != nil {
		return nil, dataErrf(nil, err, "packet: marshaling JSON body")
	}
	// json.Encoder.Encode appends a trailing newline; EncodeToJSON promises
	// a plain marshaled value, so trim it before copying out of the pool.
	out := make([]byte, len(bb.Buf)-1)
	copy(out, bb.Buf)
	return out, nil
}

// DecodeFromJSON parses a standard JSON body into a Value, unwrapping any
// §4.D envelope it finds — the inverse of EncodeToJSON, used whenever the
// negotiation layer observes plain `application/json` traffic it still
// wants to learn a Shape from.
func DecodeFromJSON(body []byte) (Value, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Value{}, dataErrf(body, err, "decoding JSON body")
	}
	return valueFromJSON(decoded)
}
