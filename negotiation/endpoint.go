package negotiation

import "net/http"

// endpointKey is the "request-identity (URL+method)" §3.6 uses as
// EndpointToStructureId's key. Query strings are deliberately excluded:
// two requests differing only in query parameters are, in practice, the
// same endpoint shape-wise far more often than not, and a cache keyed on
// the full URL would relearn on every distinct query combination.
func endpointKey(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

func originOf(r *http.Request) string {
	if r.URL.Scheme != "" && r.URL.Host != "" {
		return r.URL.Scheme + "://" + r.URL.Host
	}
	return r.Host
}
