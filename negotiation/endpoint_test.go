package negotiation

import (
	"net/http/httptest"
	"testing"
)

func TestEndpointKey_ExcludesQueryString(t *testing.T) {
	r1 := httptest.NewRequest("GET", "http://origin.example/users?page=1", nil)
	r2 := httptest.NewRequest("GET", "http://origin.example/users?page=2", nil)
	if endpointKey(r1) != endpointKey(r2) {
		t.Fatalf("endpointKey differed by query string: %q vs %q", endpointKey(r1), endpointKey(r2))
	}
}

func TestEndpointKey_IncludesMethodAndPath(t *testing.T) {
	get := httptest.NewRequest("GET", "http://origin.example/users", nil)
	post := httptest.NewRequest("POST", "http://origin.example/users", nil)
	if endpointKey(get) == endpointKey(post) {
		t.Fatalf("endpointKey did not distinguish GET from POST on the same path")
	}

	other := httptest.NewRequest("GET", "http://origin.example/orders", nil)
	if endpointKey(get) == endpointKey(other) {
		t.Fatalf("endpointKey did not distinguish /users from /orders")
	}
}

func TestOriginOf(t *testing.T) {
	r := httptest.NewRequest("GET", "http://origin.example/users", nil)
	if got := originOf(r); got != "http://origin.example" {
		t.Fatalf("originOf = %q, want %q", got, "http://origin.example")
	}
}
