package synpatico

import (
	"fmt"
)

// ShapeMismatchError is returned by Decode when a packet's value count is
// inconsistent with the shape it claims to match (§7 ShapeMismatch).
type ShapeMismatchError struct {
	StructureId StructureId
	Want, Got   int
	Msg         string
	Err         error
}

func shapeMismatchf(id StructureId, want, got int, err error, format string, args ...any) error {
	return &ShapeMismatchError{StructureId: id, Want: want, Got: got, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *ShapeMismatchError) Unwrap() error { return e.Err }

func (e *ShapeMismatchError) Error() string {
	s := fmt.Sprintf("shape mismatch for %s: %s", e.StructureId, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// StructureMismatchError is the agent-side recovery signal: the fresh
// upstream body's fingerprint no longer matches the id the client accepted
// (§7 StructureMismatch). The negotiation agent handles drift locally by
// comparing the two ids and falling back to standard JSON; it does not
// construct this type.
type StructureMismatchError struct {
	Accepted, Fresh StructureId
}

func (e *StructureMismatchError) Error() string {
	return fmt.Sprintf("structure drift: accepted %s, upstream now %s", e.Accepted, e.Fresh)
}

// StateConflictError is the agent-side §7 StateConflict: an optimized
// request body referenced a StructureId absent from ShapeCache. Surfaces as
// HTTP 409.
type StateConflictError struct {
	StructureId StructureId
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("state conflict: unknown structure %s", e.StructureId)
}

// UnknownStructureError is the client-side §7 UnknownStructure: an
// optimized response referenced a StructureId the client never learned.
type UnknownStructureError struct {
	StructureId StructureId
}

func (e *UnknownStructureError) Error() string {
	return fmt.Sprintf("unknown structure %s", e.StructureId)
}

// UpstreamFailureError describes a non-2xx upstream response (§7
// UpstreamFailure) by its status code. The negotiation agent passes such
// responses through with their original status and does not construct
// this type.
type UpstreamFailureError struct {
	StatusCode int
}

func (e *UpstreamFailureError) Error() string {
	return fmt.Sprintf("upstream failure: status %d", e.StatusCode)
}

// InternalProxyError is the agent-side catch-all for an unexpected failure
// while mediating a request (§7 InternalProxyError); surfaces as HTTP 500.
type InternalProxyError struct {
	Err error
}

func (e *InternalProxyError) Unwrap() error { return e.Err }

func (e *InternalProxyError) Error() string {
	return fmt.Sprintf("internal proxy error: %v", e.Err)
}

// DataError reports a malformed byte sequence encountered while decoding a
// rich-type envelope or packet value — the generic "something in the wire
// payload doesn't parse" error, independent of the shape/structure
// taxonomy above.
type DataError struct {
	Data []byte
	Err  error
	Msg  string
}

func dataErrf(data []byte, err error, format string, args ...any) error {
	return &DataError{Data: data, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error { return e.Err }

func (e *DataError) Error() string {
	const prefixLen = 64
	n := len(e.Data)
	data := e.Data
	if n > prefixLen {
		data = e.Data[:prefixLen]
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: (%d bytes) %x", e.Msg, e.Err, n, data)
	}
	return fmt.Sprintf("%s: (%d bytes) %x", e.Msg, n, data)
}
