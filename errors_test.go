package synpatico

import (
	"errors"
	"testing"
)

func TestShapeMismatchError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("underlying cause")
	err := shapeMismatchf("L0:1", 2, 1, cause, "ran out of values at position %d", 1)

	var sm *ShapeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("shapeMismatchf did not produce a *ShapeMismatchError")
	}
	if sm.StructureId != "L0:1" || sm.Want != 2 || sm.Got != 1 {
		t.Fatalf("ShapeMismatchError fields = %+v", sm)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true via Unwrap")
	}
	if sm.Error() == "" {
		t.Fatalf("Error() returned empty string")
	}
}

func TestStructureMismatchError_Message(t *testing.T) {
	err := &StructureMismatchError{Accepted: "L0:a", Fresh: "L0:b"}
	msg := err.Error()
	if msg == "" {
		t.Fatalf("Error() returned empty string")
	}
}

func TestStateConflictError_Message(t *testing.T) {
	err := &StateConflictError{StructureId: "L0:unknown"}
	if err.Error() == "" {
		t.Fatalf("Error() returned empty string")
	}
}

func TestUnknownStructureError_Message(t *testing.T) {
	err := &UnknownStructureError{StructureId: "L0:unknown"}
	if err.Error() == "" {
		t.Fatalf("Error() returned empty string")
	}
}

func TestUpstreamFailureError_Message(t *testing.T) {
	err := &UpstreamFailureError{StatusCode: 503}
	if err.Error() == "" {
		t.Fatalf("Error() returned empty string")
	}
}

func TestInternalProxyError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &InternalProxyError{Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true via Unwrap")
	}
}

func TestDataError_UnwrapAndTruncation(t *testing.T) {
	cause := errors.New("invalid byte")
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i)
	}
	err := dataErrf(data, cause, "decoding failed")

	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("dataErrf did not produce a *DataError")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true via Unwrap")
	}
	msg := de.Error()
	if msg == "" {
		t.Fatalf("Error() returned empty string")
	}
}

func TestDataError_NilCauseStillFormats(t *testing.T) {
	err := dataErrf([]byte("abc"), nil, "bad bytes")
	if err.Error() == "" {
		t.Fatalf("Error() returned empty string for a nil-cause DataError")
	}
}
